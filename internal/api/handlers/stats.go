package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/service"
)

type StatsHandler struct {
	stats  *service.StatsService
	logger *zap.Logger
}

func NewStatsHandler(stats *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func (h *StatsHandler) General(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GeneralStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute general stats", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (h *StatsHandler) ImpostorWins(w http.ResponseWriter, r *http.Request) {
	results, err := h.stats.ImpostorWins(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("failed to list impostor wins", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func (h *StatsHandler) PlayersWins(w http.ResponseWriter, r *http.Request) {
	results, err := h.stats.PlayersWins(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("failed to list players wins", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func (h *StatsHandler) Impostor(w http.ResponseWriter, r *http.Request) {
	impostorID := chi.URLParam(r, "id")

	stats, err := h.stats.ImpostorStats(r.Context(), impostorID)
	if err != nil {
		h.logger.Error("failed to compute impostor stats", zap.String("impostorId", impostorID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (h *StatsHandler) Query(w http.ResponseWriter, r *http.Request) {
	var q domain.GameStatsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results, err := h.stats.Query(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to query game stats", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/service"
	"github.com/nmoreno/impostor-server/internal/websocket"
)

type GamesHandler struct {
	sessions *service.SessionService
	timers   *service.TimerService
	hub      *websocket.Hub
	logger   *zap.Logger
}

func NewGamesHandler(sessions *service.SessionService, timers *service.TimerService, hub *websocket.Hub, logger *zap.Logger) *GamesHandler {
	return &GamesHandler{sessions: sessions, timers: timers, hub: hub, logger: logger}
}

type CreateGameRequest struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
}

func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.HostName == "" {
		http.Error(w, "hostName is required", http.StatusBadRequest)
		return
	}
	if req.HostID == "" {
		req.HostID = uuid.NewString()
	}

	session, err := h.sessions.Create(r.Context(), req.HostID, req.HostName)
	if err != nil {
		h.logger.Error("failed to create game", zap.Error(err))
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	session, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch game", zap.String("code", code), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The secret word only travels over per-player projections.
	view := *session
	view.CurrentWord = ""
	view.CurrentCategory = ""

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&view)
}

func (h *GamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if _, err := h.sessions.Get(r.Context(), code); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch game", zap.String("code", code), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Delete(r.Context(), code); err != nil {
		h.logger.Error("failed to delete game", zap.String("code", code), zap.Error(err))
		http.Error(w, "Failed to delete game", http.StatusInternalServerError)
		return
	}
	h.timers.Stop(code)
	h.hub.BroadcastEvent(code, string(websocket.MessageTypeGameDeleted), websocket.GameDeletedPayload{GameCode: code})

	w.WriteHeader(http.StatusNoContent)
}

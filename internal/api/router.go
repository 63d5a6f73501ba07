package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/api/handlers"
	"github.com/nmoreno/impostor-server/internal/api/middleware"
	"github.com/nmoreno/impostor-server/internal/config"
	"github.com/nmoreno/impostor-server/internal/service"
	"github.com/nmoreno/impostor-server/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, dispatcher *websocket.Dispatcher, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	gamesHandler := handlers.NewGamesHandler(services.Sessions, services.Timers, hub, logger)
	statsHandler := handlers.NewStatsHandler(services.Stats, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, dispatcher, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Post("/", gamesHandler.Create)
			r.Get("/{code}", gamesHandler.Get)
			r.Delete("/{code}", gamesHandler.Delete)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/general", statsHandler.General)
			r.Get("/impostor-wins", statsHandler.ImpostorWins)
			r.Get("/players-wins", statsHandler.PlayersWins)
			r.Get("/impostor/{id}", statsHandler.Impostor)
			r.Post("/query", statsHandler.Query)
		})
	})

	r.Get("/ws", wsHandler.Handle)

	return r
}

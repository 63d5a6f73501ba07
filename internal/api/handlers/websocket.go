package handlers

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub        *websocket.Hub
	dispatcher *websocket.Dispatcher
	logger     *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, dispatcher *websocket.Dispatcher, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, dispatcher: dispatcher, logger: logger}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, h.dispatcher, conn, h.logger)
	go client.WritePump()
	go client.ReadPump()
}

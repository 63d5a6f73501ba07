// Package websocket is the realtime transport: one connection per player,
// rooms keyed by game code, and per-recipient projection of session state on
// the way out.
package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// RoomMember is one connection's footprint in a room. Implemented by Client;
// tests substitute fakes.
type RoomMember interface {
	PlayerID() string
	Send(msg *Message)
}

// Hub tracks which connections belong to which room. It implements
// service.Broadcaster; session broadcasts go through ViewFor so the impostor
// connection never receives the secret word.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[RoomMember]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[RoomMember]bool),
		logger: logger,
	}
}

func (h *Hub) Join(code string, member RoomMember) {
	h.mu.Lock()
	room, ok := h.rooms[code]
	if !ok {
		room = make(map[RoomMember]bool)
		h.rooms[code] = room
	}
	room[member] = true
	h.mu.Unlock()
}

func (h *Hub) Leave(code string, member RoomMember) {
	h.mu.Lock()
	if room, ok := h.rooms[code]; ok {
		delete(room, member)
		if len(room) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()
}

// RoomSize reports how many connections a room currently has.
func (h *Hub) RoomSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

func (h *Hub) members(code string) []RoomMember {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]RoomMember, 0, len(h.rooms[code]))
	for m := range h.rooms[code] {
		members = append(members, m)
	}
	return members
}

// BroadcastSession sends the session to every connection in the room, each
// through its own projection.
func (h *Hub) BroadcastSession(code string, session *domain.Session) {
	for _, m := range h.members(code) {
		msg, err := NewMessage(MessageTypeGameUpdated, session.ViewFor(m.PlayerID()))
		if err != nil {
			h.logger.Warn("failed to encode session broadcast", zap.String("code", code), zap.Error(err))
			return
		}
		m.Send(msg)
	}
}

// BroadcastEvent sends a named event with the same payload to the whole room.
func (h *Hub) BroadcastEvent(code string, event string, payload any) {
	msg, err := NewMessage(MessageType(event), payload)
	if err != nil {
		h.logger.Warn("failed to encode event broadcast",
			zap.String("code", code), zap.String("event", event), zap.Error(err))
		return
	}
	for _, m := range h.members(code) {
		m.Send(msg)
	}
}

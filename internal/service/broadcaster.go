// Package service coordinates sessions, timers and stats on top of the
// stores. It owns the session lifecycle; the websocket layer calls in and
// gets broadcasts back through the Broadcaster.
package service

import "github.com/nmoreno/impostor-server/internal/domain"

// Broadcaster pushes state to every connection in a room. Implemented by the
// websocket hub; defined here so services never import the transport.
type Broadcaster interface {
	// BroadcastSession sends the session to every member of the room, each
	// seeing their own projection of it.
	BroadcastSession(code string, session *domain.Session)

	// BroadcastEvent sends a named event with an arbitrary payload to the room.
	BroadcastEvent(code string, event string, payload any)
}

// NopBroadcaster drops everything. Used before the hub is wired and in tests.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastSession(string, *domain.Session) {}
func (NopBroadcaster) BroadcastEvent(string, string, any)       {}

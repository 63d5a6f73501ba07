// Package store persists session state and historical results. Sessions live
// in a fast ephemeral copy with a TTL, mirrored best-effort into a durable
// snapshot; game results go straight to the durable store.
package store

import (
	"context"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// SessionStore holds session snapshots keyed by join code. Get returns
// domain.ErrSessionNotFound when no session exists for the code.
type SessionStore interface {
	Get(ctx context.Context, code string) (*domain.Session, error)
	Put(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, code string) error
}

// MessageStore keeps the bounded per-session chat history.
type MessageStore interface {
	AppendMessage(ctx context.Context, code string, msg *domain.ChatMessage) error
	Messages(ctx context.Context, code string) ([]*domain.ChatMessage, error)
	DeleteMessages(ctx context.Context, code string) error
}

// ResultStore is the game-result sink and its query surface.
type ResultStore interface {
	Upsert(ctx context.Context, result *domain.GameResult) error
	Query(ctx context.Context, q domain.GameStatsQuery) ([]*domain.GameResult, error)
}

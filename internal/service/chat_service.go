package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/game"
	"github.com/nmoreno/impostor-server/internal/store"
)

// ChatService handles the per-session chat: bounded history plus masking of
// the secret word so nobody can just type it out mid-round.
type ChatService struct {
	sessions store.SessionStore
	messages store.MessageStore
	logger   *zap.Logger
}

func NewChatService(sessions store.SessionStore, messages store.MessageStore, logger *zap.Logger) *ChatService {
	return &ChatService{sessions: sessions, messages: messages, logger: logger}
}

// Send stores and returns a chat message. While a round is in progress any
// occurrence of the secret word in the content is masked before the message
// is persisted, so the history never leaks it either.
func (c *ChatService) Send(ctx context.Context, code, playerID, content string) (*domain.ChatMessage, error) {
	session, err := c.sessions.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	p, ok := session.Participants[playerID]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	if p.Status != domain.StatusAlive {
		return nil, domain.ErrNotAlive
	}

	if session.Phase.Active() && session.CurrentWord != "" {
		content = game.MaskSecretWord(content, session.CurrentWord)
	}

	msg := &domain.ChatMessage{
		PlayerID:   playerID,
		PlayerName: p.Name,
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
	}
	if err := c.messages.AppendMessage(ctx, code, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the stored messages oldest-first.
func (c *ChatService) History(ctx context.Context, code string) ([]*domain.ChatMessage, error) {
	return c.messages.Messages(ctx, code)
}

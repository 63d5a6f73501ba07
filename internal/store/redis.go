package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	"github.com/nmoreno/impostor-server/internal/domain"
)

const (
	// SessionTTL bounds the ephemeral copy; refreshed on every write.
	SessionTTL = 2 * time.Hour

	// maxChatMessages caps the per-session chat history.
	maxChatMessages = 100
)

// RedisStore is the ephemeral session store plus chat lists and the word
// cache, all in one Redis database.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: SessionTTL}
}

func sessionKey(code string) string  { return "game:" + code }
func messagesKey(code string) string { return "game:" + code + ":messages" }

func (s *RedisStore) Get(ctx context.Context, code string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) Put(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Code), raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, code string) error {
	return s.client.Del(ctx, sessionKey(code), messagesKey(code)).Err()
}

func (s *RedisStore) AppendMessage(ctx context.Context, code string, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = "msg-" + uuid.NewString()
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, messagesKey(code), raw)
	pipe.LTrim(ctx, messagesKey(code), 0, maxChatMessages-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Messages returns the chat history oldest-first.
func (s *RedisStore) Messages(ctx context.Context, code string) ([]*domain.ChatMessage, error) {
	raws, err := s.client.LRange(ctx, messagesKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]*domain.ChatMessage, 0, len(raws))
	// LPUSH stores newest-first; walk backwards to restore order.
	for i := len(raws) - 1; i >= 0; i-- {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(raws[i]), &msg); err != nil {
			continue
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

func (s *RedisStore) DeleteMessages(ctx context.Context, code string) error {
	return s.client.Del(ctx, messagesKey(code)).Err()
}

// GetString and SetString expose plain key access for the word cache.
func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

func (s *RedisStore) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

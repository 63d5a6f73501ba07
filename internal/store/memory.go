package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// MemoryStore is a mutex-guarded SessionStore, MessageStore and words.Cache
// in one. Sessions are deep-copied through JSON on the way in and out so
// callers never share mutable state with the store. Used in tests and as the
// ephemeral store when Redis is not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	messages map[string][]*domain.ChatMessage
	strings  map[string]stringEntry
}

type stringEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		messages: make(map[string][]*domain.ChatMessage),
		strings:  make(map[string]stringEntry),
	}
}

func (s *MemoryStore) Get(ctx context.Context, code string) (*domain.Session, error) {
	s.mu.RLock()
	raw, ok := s.sessions[code]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemoryStore) Put(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[session.Code] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	delete(s.sessions, code)
	delete(s.messages, code)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, code string, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = "msg-" + uuid.NewString()
	}
	copied := *msg

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.messages[code], &copied)
	if len(msgs) > maxChatMessages {
		msgs = msgs[len(msgs)-maxChatMessages:]
	}
	s.messages[code] = msgs
	return nil
}

func (s *MemoryStore) Messages(ctx context.Context, code string) ([]*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]*domain.ChatMessage, 0, len(s.messages[code]))
	for _, m := range s.messages[code] {
		copied := *m
		msgs = append(msgs, &copied)
	}
	return msgs, nil
}

func (s *MemoryStore) DeleteMessages(ctx context.Context, code string) error {
	s.mu.Lock()
	delete(s.messages, code)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetString(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.strings[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	s.strings[key] = stringEntry{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// MemoryResultStore keeps game results in memory, for tests and for running
// without a database.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]*domain.GameResult
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string]*domain.GameResult)}
}

func (s *MemoryResultStore) Upsert(ctx context.Context, result *domain.GameResult) error {
	copied := *result
	s.mu.Lock()
	s.results[result.GameID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryResultStore) Query(ctx context.Context, q domain.GameStatsQuery) ([]*domain.GameResult, error) {
	s.mu.RLock()
	all := make([]*domain.GameResult, 0, len(s.results))
	for _, r := range s.results {
		if matchesQuery(r, q) {
			copied := *r
			all = append(all, &copied)
		}
	}
	s.mu.RUnlock()

	// Newest first, matching the database ordering.
	sort.Slice(all, func(i, j int) bool { return all[i].EndedAt > all[j].EndedAt })

	limit := q.Limit
	if limit == 0 {
		limit = 100
	}
	if q.Offset >= len(all) {
		return []*domain.GameResult{}, nil
	}
	all = all[q.Offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func matchesQuery(r *domain.GameResult, q domain.GameStatsQuery) bool {
	if q.Winner != nil && r.Winner != *q.Winner {
		return false
	}
	if q.MinRounds != nil && r.Round < *q.MinRounds {
		return false
	}
	if q.MaxRounds != nil && r.Round > *q.MaxRounds {
		return false
	}
	if q.MinPlayers != nil && r.PlayerCount < *q.MinPlayers {
		return false
	}
	if q.MaxPlayers != nil && r.PlayerCount > *q.MaxPlayers {
		return false
	}
	if q.StartDate != nil && r.CreatedAt < *q.StartDate {
		return false
	}
	if q.EndDate != nil && r.CreatedAt > *q.EndDate {
		return false
	}
	if q.ImpostorID != "" && r.ImpostorID != q.ImpostorID {
		return false
	}
	return true
}

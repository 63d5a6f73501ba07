package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// LayeredStore fronts the ephemeral store with a durable fallback. Reads hit
// the ephemeral copy first and re-populate it after a durable hit. Writes go
// to the ephemeral store synchronously; the durable mirror is best-effort and
// its failure is logged, never returned. Availability over durability.
type LayeredStore struct {
	ephemeral SessionStore
	durable   SessionStore
	logger    *zap.Logger
}

func NewLayeredStore(ephemeral, durable SessionStore, logger *zap.Logger) *LayeredStore {
	return &LayeredStore{ephemeral: ephemeral, durable: durable, logger: logger}
}

func (s *LayeredStore) Get(ctx context.Context, code string) (*domain.Session, error) {
	session, err := s.ephemeral.Get(ctx, code)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn("ephemeral read failed, trying durable store",
			zap.String("code", code), zap.Error(err))
	}

	session, err = s.durable.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	// Re-populate the cache so the next read is fast again.
	if err := s.ephemeral.Put(ctx, session); err != nil {
		s.logger.Warn("failed to re-populate ephemeral store",
			zap.String("code", code), zap.Error(err))
	}
	return session, nil
}

func (s *LayeredStore) Put(ctx context.Context, session *domain.Session) error {
	if err := s.ephemeral.Put(ctx, session); err != nil {
		return err
	}
	if err := s.durable.Put(ctx, session); err != nil {
		s.logger.Warn("durable write failed, session continues from ephemeral copy",
			zap.String("code", session.Code), zap.Error(err))
	}
	return nil
}

func (s *LayeredStore) Delete(ctx context.Context, code string) error {
	err := s.ephemeral.Delete(ctx, code)
	if derr := s.durable.Delete(ctx, code); derr != nil {
		s.logger.Warn("durable delete failed", zap.String("code", code), zap.Error(derr))
	}
	return err
}

package words

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const (
	randomWordCachePrefix = "words:random:"
	randomWordCacheTTL    = time.Hour
)

// Cache is the slice of the ephemeral store the word service needs for
// keeping recently generated words around.
type Cache interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service resolves each round's word: cache, then the generator, then the
// static corpus. It never fails; the corpus is always there.
type Service struct {
	gemini *GeminiClient
	cache  Cache
	static StaticProvider
	logger *zap.Logger
}

func NewService(gemini *GeminiClient, cache Cache, logger *zap.Logger) *Service {
	return &Service{gemini: gemini, cache: cache, logger: logger}
}

func (s *Service) RandomWord(ctx context.Context, category string) Word {
	cacheKey := randomWordCachePrefix + cacheSuffix(category)

	if s.cache != nil {
		if raw, ok, err := s.cache.GetString(ctx, cacheKey); err == nil && ok {
			var w Word
			if json.Unmarshal([]byte(raw), &w) == nil && w.Word != "" {
				return w
			}
		}
	}

	if s.gemini.Available() {
		w, err := s.gemini.GenerateWord(ctx, category)
		if err == nil {
			if s.cache != nil {
				if encoded, err := json.Marshal(w); err == nil {
					if err := s.cache.SetString(ctx, cacheKey, string(encoded), randomWordCacheTTL); err != nil {
						s.logger.Warn("failed to cache generated word", zap.Error(err))
					}
				}
			}
			return w
		}
		s.logger.Warn("word generation failed, using base corpus", zap.Error(err))
	}

	return s.static.RandomWord(ctx, category)
}

func cacheSuffix(category string) string {
	if category == "" {
		return "any"
	}
	return category
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/store"
)

// ExpireFunc handles a phase countdown reaching zero. It returns true when a
// new phase was armed and the countdown should keep running.
type ExpireFunc func(ctx context.Context, code string) bool

// TimerService runs at most one countdown per session. Each tick re-reads the
// session, decrements the remaining time, persists it and broadcasts it; at
// zero the expire handler decides whether the timer continues into the next
// phase. Timers are per-process: a session's countdown lives on the instance
// that started it.
type TimerService struct {
	sessions    store.SessionStore
	broadcaster Broadcaster
	logger      *zap.Logger
	expire      ExpireFunc

	// tick is one second in production; tests shorten it.
	tick time.Duration

	mu     sync.Mutex
	timers map[string]chan struct{}
}

func NewTimerService(sessions store.SessionStore, logger *zap.Logger) *TimerService {
	return &TimerService{
		sessions:    sessions,
		broadcaster: NopBroadcaster{},
		logger:      logger,
		tick:        time.Second,
		timers:      make(map[string]chan struct{}),
	}
}

func (t *TimerService) SetBroadcaster(b Broadcaster) { t.broadcaster = b }
func (t *TimerService) SetExpireHandler(fn ExpireFunc) { t.expire = fn }
func (t *TimerService) SetTick(d time.Duration)      { t.tick = d }

// Start arms the countdown for a session, replacing any countdown already
// running for the same code so a session never has two.
func (t *TimerService) Start(code string) {
	t.mu.Lock()
	if prev, ok := t.timers[code]; ok {
		close(prev)
	}
	stop := make(chan struct{})
	t.timers[code] = stop
	t.mu.Unlock()

	go t.run(code, stop)
}

// Stop cancels the session's countdown if one is running.
func (t *TimerService) Stop(code string) {
	t.mu.Lock()
	if stop, ok := t.timers[code]; ok {
		close(stop)
		delete(t.timers, code)
	}
	t.mu.Unlock()
}

// StopAll cancels every countdown, for shutdown.
func (t *TimerService) StopAll() {
	t.mu.Lock()
	for code, stop := range t.timers {
		close(stop)
		delete(t.timers, code)
	}
	t.mu.Unlock()
}

func (t *TimerService) run(code string, stop chan struct{}) {
	defer t.release(code, stop)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.step(code) {
				return
			}
		}
	}
}

// step advances the countdown by one tick and reports whether it should keep
// running.
func (t *TimerService) step(code string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := t.sessions.Get(ctx, code)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false
	}
	if err != nil {
		// Transient store trouble must not stall the phase forever; skip the
		// tick and try again.
		t.logger.Warn("countdown tick failed to load session", zap.String("code", code), zap.Error(err))
		return true
	}
	if !session.Phase.Active() {
		return false
	}

	session.TimeLeft--
	if session.TimeLeft > 0 {
		if err := t.sessions.Put(ctx, session); err != nil {
			t.logger.Warn("failed to persist countdown", zap.String("code", code), zap.Error(err))
			return true
		}
		t.broadcaster.BroadcastEvent(code, "timer-update", map[string]int{"timeLeft": session.TimeLeft})
		return true
	}

	session.TimeLeft = 0
	if err := t.sessions.Put(ctx, session); err != nil {
		t.logger.Warn("failed to persist countdown", zap.String("code", code), zap.Error(err))
	}

	if t.expire == nil {
		return false
	}
	return t.expire(ctx, code)
}

// release drops the registry entry, but only if it still refers to this run.
// A replacing Start must not have its fresh entry removed by the old run.
func (t *TimerService) release(code string, stop chan struct{}) {
	t.mu.Lock()
	if current, ok := t.timers[code]; ok && current == stop {
		delete(t.timers, code)
	}
	t.mu.Unlock()
}

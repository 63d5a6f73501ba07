package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/store"
	"github.com/nmoreno/impostor-server/internal/testutil"
)

func (t *TimerService) running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

func TestTimerCountsDownAndExpires(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	s := testutil.NewRoundSession("ABC123", 3, "p3", "mesa", "objetos")
	s.TimeLeft = 3
	require.NoError(t, mem.Put(ctx, s))

	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(5 * time.Millisecond)

	var expired atomic.Int32
	timers.SetExpireHandler(func(ctx context.Context, code string) bool {
		expired.Add(1)
		return false
	})

	timers.Start("ABC123")

	require.Eventually(t, func() bool {
		return expired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	got, err := mem.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TimeLeft)

	require.Eventually(t, func() bool {
		return timers.running() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), expired.Load(), "expire handler fires once")
}

func TestTimerStartReplacesExisting(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	s := testutil.NewRoundSession("ABC123", 3, "p3", "mesa", "objetos")
	s.TimeLeft = 1000
	require.NoError(t, mem.Put(ctx, s))

	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(time.Hour)

	timers.Start("ABC123")
	timers.Start("ABC123")
	assert.Equal(t, 1, timers.running(), "a session never has two countdowns")

	timers.Stop("ABC123")
	assert.Equal(t, 0, timers.running())
}

func TestTimerStopsOnInactivePhase(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	s := testutil.NewLobbySession("ABC123", 3)
	s.TimeLeft = 100
	require.NoError(t, mem.Put(ctx, s))

	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(5 * time.Millisecond)
	timers.Start("ABC123")

	require.Eventually(t, func() bool {
		return timers.running() == 0
	}, time.Second, 5*time.Millisecond)

	got, err := mem.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 100, got.TimeLeft, "lobby sessions are not counted down")
}

func TestTimerStopsOnMissingSession(t *testing.T) {
	mem := store.NewMemoryStore()
	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(5 * time.Millisecond)
	timers.Start("GHOST1")

	require.Eventually(t, func() bool {
		return timers.running() == 0
	}, time.Second, 5*time.Millisecond)
}

// flakyStore simulates a session store with transient outages.
type flakyStore struct {
	store.SessionStore
	fail atomic.Bool
}

func (f *flakyStore) Get(ctx context.Context, code string) (*domain.Session, error) {
	if f.fail.Load() {
		return nil, errors.New("connection reset")
	}
	return f.SessionStore.Get(ctx, code)
}

func TestTimerSurvivesTransientStoreError(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	s := testutil.NewRoundSession("ABC123", 3, "p3", "mesa", "objetos")
	s.TimeLeft = 1000
	require.NoError(t, mem.Put(ctx, s))

	flaky := &flakyStore{SessionStore: mem}
	flaky.fail.Store(true)

	timers := NewTimerService(flaky, zap.NewNop())
	timers.SetTick(5 * time.Millisecond)
	timers.Start("ABC123")
	defer timers.StopAll()

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, timers.running(), "a flaky store must not kill the countdown")

	flaky.fail.Store(false)
	require.Eventually(t, func() bool {
		got, err := mem.Get(ctx, "ABC123")
		return err == nil && got.TimeLeft < 1000
	}, time.Second, 5*time.Millisecond)
}

func TestStopAll(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	for _, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC"} {
		s := testutil.NewRoundSession(code, 3, "p3", "mesa", "objetos")
		s.TimeLeft = 1000
		require.NoError(t, mem.Put(ctx, s))
	}

	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(time.Hour)
	timers.Start("AAAAAA")
	timers.Start("BBBBBB")
	timers.Start("CCCCCC")
	require.Equal(t, 3, timers.running())

	timers.StopAll()
	assert.Equal(t, 0, timers.running())
}

func TestTimerBroadcastsCountdown(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	s := testutil.NewRoundSession("ABC123", 3, "p3", "mesa", "objetos")
	s.TimeLeft = 50
	require.NoError(t, mem.Put(ctx, s))

	timers := NewTimerService(mem, zap.NewNop())
	timers.SetTick(5 * time.Millisecond)
	rec := &recordingBroadcaster{}
	timers.SetBroadcaster(rec)

	timers.Start("ABC123")
	defer timers.StopAll()

	require.Eventually(t, func() bool {
		return rec.eventCount("timer-update") >= 2
	}, time.Second, 5*time.Millisecond)

	got, err := mem.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Less(t, got.TimeLeft, 50)
}

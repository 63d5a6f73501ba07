package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/store"
)

func newSessionService() (*SessionService, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	return NewSessionService(mem, mem, zap.NewNop()), mem
}

func TestCreateSession(t *testing.T) {
	svc, mem := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "host-1", "Ana")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), session.Code)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.PhaseLobby, session.Phase)
	assert.Equal(t, "host-1", session.HostID)

	stored, err := mem.Get(ctx, session.Code)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
}

func TestCreateSessionUniqueCodes(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	codes := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := svc.Create(ctx, "h", "Host")
		require.NoError(t, err)
		assert.False(t, codes[s.Code], "duplicate code %s", s.Code)
		codes[s.Code] = true
	}
}

func TestJoinSession(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "host-1", "Ana")
	require.NoError(t, err)

	session, p, err := svc.Join(ctx, created.Code, "p2", "Beto")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Beto", p.Name)
	assert.Equal(t, domain.StatusAlive, p.Status)
	assert.Len(t, session.Participants, 2)
	assert.NotEqual(t, session.Participants["host-1"].Color, p.Color)
}

func TestJoinSessionIdempotentRejoin(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "host-1", "Ana")
	require.NoError(t, err)

	session, p, err := svc.Join(ctx, created.Code, "host-1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "host-1", p.ID)
	assert.Len(t, session.Participants, 1)
}

func TestJoinSessionUnknownCode(t *testing.T) {
	svc, _ := newSessionService()

	_, _, err := svc.Join(context.Background(), "ZZZZZZ", "p1", "Ana")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestJoinSessionFull(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "Host")
	require.NoError(t, err)
	for i := 2; i <= domain.MaxParticipants; i++ {
		_, _, err := svc.Join(ctx, created.Code, string(rune('a'+i)), "Player")
		require.NoError(t, err)
	}

	_, _, err = svc.Join(ctx, created.Code, "extra", "Too Many")
	assert.ErrorIs(t, err, domain.ErrSessionFull)
}

func TestJoinSessionInProgress(t *testing.T) {
	svc, mem := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "Host")
	require.NoError(t, err)

	session, err := mem.Get(ctx, created.Code)
	require.NoError(t, err)
	session.Phase = domain.PhaseClues
	require.NoError(t, mem.Put(ctx, session))

	_, _, err = svc.Join(ctx, created.Code, "newcomer", "Late")
	assert.ErrorIs(t, err, domain.ErrGameInProgress)

	// known players may reconnect mid-game
	_, p, err := svc.Join(ctx, created.Code, "p1", "Host")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestJoinSessionBetweenRounds(t *testing.T) {
	svc, mem := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "Host")
	require.NoError(t, err)

	session, err := mem.Get(ctx, created.Code)
	require.NoError(t, err)
	session.Phase = domain.PhaseResults
	require.NoError(t, mem.Put(ctx, session))

	// newcomers can slot in while the round results are up
	updated, p, err := svc.Join(ctx, created.Code, "newcomer", "Fresh")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlive, p.Status)
	assert.Len(t, updated.Participants, 2)
}

func TestLeaveReassignsHost(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p2", "Host")
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, created.Code, "p3", "Player 3")
	require.NoError(t, err)
	_, _, err = svc.Join(ctx, created.Code, "p1", "Player 1")
	require.NoError(t, err)

	session, deleted, err := svc.Leave(ctx, created.Code, "p2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "p1", session.HostID)
	assert.NotContains(t, session.Participants, "p2")
}

func TestLeaveLastPlayerDeletesSession(t *testing.T) {
	svc, mem := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "Host")
	require.NoError(t, err)

	session, deleted, err := svc.Leave(ctx, created.Code, "p1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Nil(t, session)

	_, err = mem.Get(ctx, created.Code)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLeaveUnknownParticipant(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "Host")
	require.NoError(t, err)

	_, _, err = svc.Leave(ctx, created.Code, "ghost")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// failingStore errors on every operation, standing in for a down backend.
type failingStore struct{ err error }

func (f *failingStore) Get(context.Context, string) (*domain.Session, error) { return nil, f.err }
func (f *failingStore) Put(context.Context, *domain.Session) error           { return f.err }
func (f *failingStore) Delete(context.Context, string) error                 { return f.err }

func testSession(code string) *domain.Session {
	return domain.NewSession("id-"+code, code, "p1", "Host")
}

func TestLayeredGetPrefersEphemeral(t *testing.T) {
	ephemeral := NewMemoryStore()
	durable := NewMemoryStore()
	layered := NewLayeredStore(ephemeral, durable, zap.NewNop())
	ctx := context.Background()

	s := testSession("ABC123")
	require.NoError(t, ephemeral.Put(ctx, s))

	got, err := layered.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestLayeredGetFallsBackAndRepopulates(t *testing.T) {
	ephemeral := NewMemoryStore()
	durable := NewMemoryStore()
	layered := NewLayeredStore(ephemeral, durable, zap.NewNop())
	ctx := context.Background()

	s := testSession("ABC123")
	require.NoError(t, durable.Put(ctx, s))

	got, err := layered.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	cached, err := ephemeral.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, s.ID, cached.ID, "durable hit re-populates the ephemeral copy")
}

func TestLayeredGetMissEverywhere(t *testing.T) {
	layered := NewLayeredStore(NewMemoryStore(), NewMemoryStore(), zap.NewNop())

	_, err := layered.Get(context.Background(), "NOPE99")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLayeredPutWritesBoth(t *testing.T) {
	ephemeral := NewMemoryStore()
	durable := NewMemoryStore()
	layered := NewLayeredStore(ephemeral, durable, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, layered.Put(ctx, testSession("ABC123")))

	_, err := ephemeral.Get(ctx, "ABC123")
	assert.NoError(t, err)
	_, err = durable.Get(ctx, "ABC123")
	assert.NoError(t, err)
}

func TestLayeredPutSwallowsDurableFailure(t *testing.T) {
	ephemeral := NewMemoryStore()
	layered := NewLayeredStore(ephemeral, &failingStore{err: errors.New("db down")}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, layered.Put(ctx, testSession("ABC123")),
		"durable failures must not block gameplay")

	_, err := ephemeral.Get(ctx, "ABC123")
	assert.NoError(t, err)
}

func TestLayeredPutFailsOnEphemeralFailure(t *testing.T) {
	layered := NewLayeredStore(&failingStore{err: errors.New("redis down")}, NewMemoryStore(), zap.NewNop())

	err := layered.Put(context.Background(), testSession("ABC123"))
	assert.Error(t, err)
}

func TestLayeredDelete(t *testing.T) {
	ephemeral := NewMemoryStore()
	durable := NewMemoryStore()
	layered := NewLayeredStore(ephemeral, durable, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, layered.Put(ctx, testSession("ABC123")))
	require.NoError(t, layered.Delete(ctx, "ABC123"))

	_, err := ephemeral.Get(ctx, "ABC123")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = durable.Get(ctx, "ABC123")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStoreDeepCopies(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	s := testSession("ABC123")
	require.NoError(t, mem.Put(ctx, s))

	s.Participants["p1"].Points = 99

	got, err := mem.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Participants["p1"].Points, "stored state must not alias caller state")
}

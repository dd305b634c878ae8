package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pet-health-tracker/internal/ports/kv"
)

func TestStateStore_RoundTripAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Load(ctx, kv.KeyVaccinations)
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Save(ctx, kv.KeyVaccinations, []byte(`[{"id":"v1"}]`)))
	require.NoError(t, s.Save(ctx, kv.KeyVaccinations, []byte(`[{"id":"v2"}]`)))
	require.NoError(t, s.Save(ctx, kv.KeyDeletedPet, []byte(`{"pet":{"id":"p1"}}`)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Load(ctx, kv.KeyVaccinations)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"v2"}]`, string(got))

	require.NoError(t, s.Delete(ctx, kv.KeyDeletedPet))
	require.NoError(t, s.Delete(ctx, kv.KeyDeletedPet))

	_, err = s.Load(ctx, kv.KeyDeletedPet)
	require.ErrorIs(t, err, kv.ErrNotFound)
}

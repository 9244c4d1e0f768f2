package grocery

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsonthompson/mealdino-sub001/internal/database"
)

func TestOverrideRepository(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewOverrideRepository(db.SQL)
	ctx := context.Background()

	overrides, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, overrides)

	require.NoError(t, repo.Set(ctx, "u1", "rice", AisleFrozen))
	require.NoError(t, repo.Set(ctx, "u1", "tofu", AisleProduce))
	require.NoError(t, repo.Set(ctx, "u2", "rice", AisleOther))

	overrides, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rice": AisleFrozen, "tofu": AisleProduce}, overrides)

	// Upsert replaces in place.
	require.NoError(t, repo.Set(ctx, "u1", "rice", AislePantry))
	overrides, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, AislePantry, overrides["rice"])

	require.NoError(t, repo.Delete(ctx, "u1", "rice"))
	overrides, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.NotContains(t, overrides, "rice")
}

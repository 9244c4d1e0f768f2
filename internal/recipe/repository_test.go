package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsonthompson/mealdino-sub001/internal/database"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func seed(t *testing.T, repo *Repository, recs ...Recipe) {
	t.Helper()
	for _, rec := range recs {
		require.NoError(t, repo.Save(context.Background(), rec))
	}
}

func idsOf(recs []Recipe) []string {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

func TestSaveAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed(t, repo, Recipe{ID: "r1", Title: "Lentil Soup", Ingredients: []string{"1 cup lentils"}})

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lentil Soup", got.Title)
	// Unset servings default to 1 on save.
	assert.Equal(t, 1, got.BaseServings)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListEligibleScopesAndFilters(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed(t, repo,
		Recipe{ID: "global", Title: "Rice Bowl", BaseServings: 2},
		Recipe{ID: "mine", OwnerID: "u1", Title: "My Curry", BaseServings: 2},
		Recipe{ID: "theirs", OwnerID: "u2", Title: "Not Yours", BaseServings: 2},
		Recipe{ID: "avoided", Title: "Boring Salad", BaseServings: 2},
		Recipe{ID: "dessert", Title: "Cake", Category: "Dessert", BaseServings: 8},
	)

	recs, err := repo.ListEligible(ctx, "u1", profile.Preferences{
		AvoidRecipeIDs:     []string{"avoided"},
		ExcludedCategories: []string{"dessert"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"global", "mine"}, idsOf(recs))
}

func TestCount(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed(t, repo,
		Recipe{ID: "global", Title: "Rice Bowl"},
		Recipe{ID: "mine", OwnerID: "u1", Title: "My Curry"},
		Recipe{ID: "theirs", OwnerID: "u2", Title: "Not Yours"},
	)

	n, err := repo.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

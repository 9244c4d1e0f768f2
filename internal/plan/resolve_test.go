package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

var resolveCatalog = []recipe.Recipe{
	{ID: "r1", Title: "Lentil Soup"},
	{ID: "r2", Title: "Chicken Curry"},
}

func TestResolveDaysDropsUnknownRefs(t *testing.T) {
	days := []MealPlanDay{{
		Date: "2026-03-02",
		Meals: []Meal{
			{Type: MealLunch, RecipeID: "r1", PlannedServings: 2},
			{Type: MealDinner, RecipeID: "ghost", PlannedServings: 2},
		},
		CookingSessions: []CookingSession{
			{RecipeID: "also-ghost", Servings: 4},
		},
	}}

	res := ResolveDays(resolveCatalog, days)

	require.Len(t, res.Days, 1)
	require.Len(t, res.Days[0].Meals, 1)
	assert.Equal(t, "r1", res.Days[0].Meals[0].RecipeID)
	assert.Empty(t, res.Days[0].CookingSessions)

	assert.ElementsMatch(t, []DroppedRef{
		{Date: "2026-03-02", Kind: "meal", RecipeID: "ghost"},
		{Date: "2026-03-02", Kind: "cooking_session", RecipeID: "also-ghost"},
	}, res.DroppedRefs)
}

func TestResolveDaysDropsMalformedDates(t *testing.T) {
	days := []MealPlanDay{
		{Date: "03/02/2026", Meals: []Meal{{Type: MealLunch, RecipeID: "r1", PlannedServings: 2}}},
		{Date: "2026-03-02", Meals: []Meal{{Type: MealLunch, RecipeID: "r1", PlannedServings: 2}}},
	}

	res := ResolveDays(resolveCatalog, days)

	require.Len(t, res.Days, 1)
	assert.Equal(t, "2026-03-02", res.Days[0].Date)
	assert.Equal(t, []string{"03/02/2026"}, res.DroppedDays)
}

func TestResolveDaysClampsServings(t *testing.T) {
	days := []MealPlanDay{{
		Date:  "2026-03-02",
		Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 99}},
		CookingSessions: []CookingSession{
			{RecipeID: "r2", Servings: 0},
			{RecipeID: "r2", Servings: 50, PlannedServings: 50},
		},
	}}

	res := ResolveDays(resolveCatalog, days)

	require.Len(t, res.Days, 1)
	assert.Equal(t, 4, res.Days[0].Meals[0].PlannedServings)

	sessions := res.Days[0].CookingSessions
	require.Len(t, sessions, 2)
	assert.Equal(t, 1, sessions[0].Servings)
	// PlannedServings defaults to the clamped Servings when unset.
	assert.Equal(t, 1, sessions[0].PlannedServings)
	assert.Equal(t, 20, sessions[1].Servings)
	assert.Equal(t, 20, sessions[1].PlannedServings)
}

func TestResolveDaysIdempotent(t *testing.T) {
	days := []MealPlanDay{{
		Date: "2026-03-02",
		Meals: []Meal{
			{Type: MealLunch, RecipeID: "r1", PlannedServings: 2},
			{Type: MealDinner, RecipeID: "r2", PlannedServings: 3},
		},
		CookingSessions: []CookingSession{
			{RecipeID: "r1", Servings: 6, PlannedServings: 6},
		},
	}}

	first := ResolveDays(resolveCatalog, days)
	second := ResolveDays(resolveCatalog, first.Days)

	assert.Equal(t, first.Days, second.Days)
	assert.Empty(t, second.DroppedRefs)
	assert.Empty(t, second.DroppedDays)
}

package plan

import (
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

// DroppedRef reports a meal or cooking session that referenced a recipe
// absent from the run's catalog and was therefore removed.
type DroppedRef struct {
	Date     string `json:"date"`
	Kind     string `json:"kind"` // "meal" or "cooking_session"
	RecipeID string `json:"recipe_id"`
}

// ResolveResult is the outcome of normalizing a candidate day set against a
// recipe catalog.
type ResolveResult struct {
	Days        []MealPlanDay
	DroppedRefs []DroppedRef
	DroppedDays []string
}

// ResolveDays normalizes candidate days against the catalog. Days with a
// non-canonical date are discarded wholesale; meals and sessions whose recipe
// reference does not resolve are silently filtered and reported; servings are
// clamped into their valid ranges. This single step is shared by generate,
// revise and manual edits so their filtering never diverges. Resolving an
// already-resolved day set is a no-op.
func ResolveDays(catalog []recipe.Recipe, days []MealPlanDay) ResolveResult {
	byID := make(map[string]struct{}, len(catalog))
	for _, rec := range catalog {
		byID[rec.ID] = struct{}{}
	}

	var out ResolveResult
	for _, day := range days {
		if _, err := time.Parse(DateFormat, day.Date); err != nil {
			out.DroppedDays = append(out.DroppedDays, day.Date)
			continue
		}

		resolved := MealPlanDay{Date: day.Date}
		for _, m := range day.Meals {
			if _, ok := byID[m.RecipeID]; !ok {
				out.DroppedRefs = append(out.DroppedRefs, DroppedRef{
					Date: day.Date, Kind: "meal", RecipeID: m.RecipeID,
				})
				continue
			}
			m.PlannedServings = clamp(m.PlannedServings, minMealServings, maxMealServings)
			resolved.Meals = append(resolved.Meals, m)
		}
		for _, cs := range day.CookingSessions {
			if _, ok := byID[cs.RecipeID]; !ok {
				out.DroppedRefs = append(out.DroppedRefs, DroppedRef{
					Date: day.Date, Kind: "cooking_session", RecipeID: cs.RecipeID,
				})
				continue
			}
			cs.Servings = clamp(cs.Servings, minSessionServings, maxSessionServings)
			if cs.PlannedServings == 0 {
				cs.PlannedServings = cs.Servings
			}
			cs.PlannedServings = clamp(cs.PlannedServings, minSessionServings, maxSessionServings)
			resolved.CookingSessions = append(resolved.CookingSessions, cs)
		}
		out.Days = append(out.Days, resolved)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

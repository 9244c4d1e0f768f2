package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

func TestFormatDraftParts(t *testing.T) {
	result := &plan.DraftResult{Run: &plan.Run{
		DateRange: plan.DateRange{Start: "2026-03-02", End: "2026-03-03"},
		OutputDraft: plan.OutputDraft{
			RecipeCatalog: []recipe.Recipe{{ID: "r1", Title: "Tacos"}},
			MealPlanDays: []plan.MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []plan.Meal{{Type: plan.MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
			ShoppingList: grocery.ShoppingList{
				Totals: []grocery.LineItem{{
					NormalizedName: "tortilla", Quantity: 8, Unit: grocery.UnitCount,
					Aisle: grocery.AisleBakery, SourceCount: 1,
				}},
			},
			Validation: plan.Validation{HardConstraintViolations: []plan.Violation{}},
		},
		Summary: plan.Summary{WhyThisPlan: "Quick weeknight dinners"},
	}}

	planText, listText := formatDraftParts(result)

	assert.Contains(t, planText, "*2026-03-02*")
	assert.Contains(t, planText, "dinner: Tacos (x2)")
	assert.Contains(t, planText, "_Quick weeknight dinners_")
	assert.Contains(t, planText, "/approve")

	assert.Contains(t, listText, "🛒 *Shopping List*")
	assert.Contains(t, listText, "*Bakery*")
	assert.Contains(t, listText, "• 8 count tortilla")
}

func TestFormatDraftPartsShowsViolations(t *testing.T) {
	result := &plan.DraftResult{Run: &plan.Run{
		DateRange: plan.DateRange{Start: "2026-03-02", End: "2026-03-02"},
		OutputDraft: plan.OutputDraft{
			RecipeCatalog: []recipe.Recipe{{ID: "r1", Title: "Garlic Shrimp"}},
			MealPlanDays: []plan.MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []plan.Meal{{Type: plan.MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
			Validation: plan.Validation{HardConstraintViolations: []plan.Violation{
				{Constraint: "no shellfish", RecipeID: "r1", RecipeTitle: "Garlic Shrimp"},
			}},
		},
	}}

	planText, _ := formatDraftParts(result)

	assert.Contains(t, planText, "1 constraint violation(s)")
	assert.Contains(t, planText, "*Garlic Shrimp* conflicts with _no shellfish_")
	assert.NotContains(t, planText, "/approve then /apply")
}

func TestFormatShoppingListEmpty(t *testing.T) {
	out := formatShoppingList(grocery.ShoppingList{})
	assert.Contains(t, out, "_Empty_")
}

func TestFormatShoppingListNeedsReview(t *testing.T) {
	out := formatShoppingList(grocery.ShoppingList{
		NeedsReview: []grocery.ReviewItem{{
			NormalizedName: "salt",
			Sources:        []string{"salt to taste"},
			Reason:         "no parseable quantity",
		}},
	})
	assert.Contains(t, out, "⚠️ *Needs review*")
	assert.Contains(t, out, "• salt: salt to taste")
}

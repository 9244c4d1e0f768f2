package plan

import (
	"context"
	"fmt"
)

// FallbackGenerator produces a deterministic draft without any model call:
// it walks the date range and assigns catalog recipes round-robin to lunch
// and dinner. Useful offline and as the default when no API key is set.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a new FallbackGenerator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate assigns recipes in catalog order across the range.
func (g *FallbackGenerator) Generate(_ context.Context, in GenerationInput) (GenerationResult, error) {
	if len(in.Catalog) == 0 {
		return GenerationResult{}, fmt.Errorf("no eligible recipes to plan with")
	}

	servings := in.Snapshot.Preferences.DefaultServings
	if servings < minMealServings || servings > maxMealServings {
		servings = 2
	}

	next := 0
	pick := func() string {
		id := in.Catalog[next%len(in.Catalog)].ID
		next++
		return id
	}

	var days []MealPlanDay
	for _, date := range in.DateRange.Dates() {
		days = append(days, MealPlanDay{
			Date: date,
			Meals: []Meal{
				{Type: MealLunch, RecipeID: pick(), Source: SourceFresh, PlannedServings: servings},
				{Type: MealDinner, RecipeID: pick(), Source: SourceFresh, PlannedServings: servings},
			},
		})
	}

	return GenerationResult{
		Days:      days,
		Rationale: "Rotated the eligible recipes across the range for lunch and dinner.",
	}, nil
}

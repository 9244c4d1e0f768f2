package plan

import (
	"context"

	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
	"github.com/karsonthompson/mealdino-sub001/internal/shared"
)

// GenerationInput is everything a backend may consider when drafting a plan.
type GenerationInput struct {
	UserID    string
	DateRange DateRange
	Snapshot  InputSnapshot
	// Catalog holds the run's eligible recipes; the backend must only
	// assign recipes from it (violations are filtered out afterwards
	// regardless).
	Catalog []recipe.Recipe

	// Revision context. Empty RevisionInstruction means a fresh draft.
	RevisionInstruction string
	PriorDays           []MealPlanDay
	PriorSummary        Summary
}

// GenerationResult is a backend's candidate assignment plus its rationale.
// The orchestrator never trusts it: the days are re-resolved, re-aggregated
// and re-validated before they reach the run.
type GenerationResult struct {
	Days      []MealPlanDay
	Rationale string
	Meta      shared.AgentMeta
}

// Generator is the pluggable plan-synthesis backend: a language-model call in
// production, a deterministic fallback otherwise. Swapping implementations
// must not change validation or aggregation behavior.
type Generator interface {
	Generate(ctx context.Context, in GenerationInput) (GenerationResult, error)
}

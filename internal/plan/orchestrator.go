package plan

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
	"github.com/karsonthompson/mealdino-sub001/internal/shared"
)

// RunStore persists runs. Operations on one run id are read-modify-write;
// concurrent edits race with last-write-wins semantics, which this domain
// accepts.
type RunStore interface {
	Create(ctx context.Context, run *Run) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*Run, error)
	Update(ctx context.Context, run *Run) error
}

// ProfileStore looks up a user's live profile (snapshotted at run creation).
type ProfileStore interface {
	FindByUser(ctx context.Context, userID string) (*profile.Profile, error)
}

// RecipeStore lists the recipes eligible for a user's runs.
type RecipeStore interface {
	ListEligible(ctx context.Context, userID string, prefs profile.Preferences) ([]recipe.Recipe, error)
}

// MealPlanStore commits plan days to the persistent meal plan, replacing each
// date wholesale.
type MealPlanStore interface {
	ReplaceDays(ctx context.Context, userID string, days []MealPlanDay) error
}

// OverrideStore supplies the user's aisle overrides for aggregation.
type OverrideStore interface {
	ListByUser(ctx context.Context, userID string) (map[string]string, error)
}

// MetricsRecorder records LLM execution metadata. May be nil.
type MetricsRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Orchestrator drives the run lifecycle: generate/revise a draft through the
// generation backend, re-derive its shopping list and validation, and gate
// the approve/apply transitions.
type Orchestrator struct {
	runs      RunStore
	profiles  ProfileStore
	recipes   RecipeStore
	mealPlans MealPlanStore
	overrides OverrideStore
	generator Generator
	metrics   MetricsRecorder
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	runs RunStore,
	profiles ProfileStore,
	recipes RecipeStore,
	mealPlans MealPlanStore,
	overrides OverrideStore,
	generator Generator,
	metrics MetricsRecorder,
) *Orchestrator {
	return &Orchestrator{
		runs:      runs,
		profiles:  profiles,
		recipes:   recipes,
		mealPlans: mealPlans,
		overrides: overrides,
		generator: generator,
		metrics:   metrics,
	}
}

// DraftResult is the outcome of a generate, revise or edit operation.
type DraftResult struct {
	Run         *Run
	DroppedRefs []DroppedRef
	DroppedDays []string
}

// CreateRun starts a new planning run with an empty draft. The user's profile
// is copied into the run's input snapshot once, here; later profile edits
// never change a run's validation basis.
func (o *Orchestrator) CreateRun(ctx context.Context, userID, start, end string) (*Run, error) {
	startDate, err := time.Parse(DateFormat, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endDate, err := time.Parse(DateFormat, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	prof, err := o.profiles.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var snapshot InputSnapshot
	if prof != nil {
		snapshot.HardConstraints = append([]string(nil), prof.HardConstraints...)
		snapshot.MedicalDisclaimerAcceptedAt = prof.MedicalDisclaimerAcceptedAt
		snapshot.Preferences = prof.Preferences
		snapshot.Preferences.AvoidRecipeIDs = append([]string(nil), prof.Preferences.AvoidRecipeIDs...)
		snapshot.Preferences.ExcludedCategories = append([]string(nil), prof.Preferences.ExcludedCategories...)
	}

	now := time.Now().UTC()
	run := &Run{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        StatusDraft,
		DateRange:     DateRange{Start: start, End: end},
		InputSnapshot: snapshot,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	run.OutputDraft.Validation.HardConstraintViolations = []Violation{}

	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// Generate produces a fresh draft for the run.
func (o *Orchestrator) Generate(ctx context.Context, userID, runID string) (*DraftResult, error) {
	return o.generate(ctx, userID, runID, "")
}

// Revise re-invokes the backend with the prior draft and the instruction as
// extra context. Post-processing is identical to Generate: revision never
// bypasses aggregation or validation.
func (o *Orchestrator) Revise(ctx context.Context, userID, runID, instruction string) (*DraftResult, error) {
	return o.generate(ctx, userID, runID, instruction)
}

func (o *Orchestrator) generate(ctx context.Context, userID, runID, instruction string) (*DraftResult, error) {
	run, err := o.getRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}

	catalog, err := o.recipes.ListEligible(ctx, userID, run.InputSnapshot.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble recipe catalog: %w", err)
	}

	in := GenerationInput{
		UserID:    userID,
		DateRange: run.DateRange,
		Snapshot:  run.InputSnapshot,
		Catalog:   catalog,
	}
	if instruction != "" {
		in.RevisionInstruction = instruction
		in.PriorDays = run.OutputDraft.MealPlanDays
		in.PriorSummary = run.Summary
	}

	res, err := o.generator.Generate(ctx, in)
	o.recordMeta(res.Meta)
	if err != nil {
		// Prior draft stays untouched; only the error message is stored.
		run.ErrorMessage = err.Error()
		run.UpdatedAt = time.Now().UTC()
		if updateErr := o.runs.Update(ctx, run); updateErr != nil {
			log.Printf("Warning: failed to record generation error on run %s: %v", run.ID, updateErr)
		}
		return nil, &GenerationFailedError{Cause: err}
	}

	resolved := ResolveDays(catalog, res.Days)

	run.OutputDraft.RecipeCatalog = catalog
	run.OutputDraft.MealPlanDays = resolved.Days
	o.deriveDraft(ctx, run)

	run.Summary = Summary{
		WhyThisPlan:      res.Rationale,
		UnmetConstraints: summarizeViolations(run.Violations()),
		Notes:            summarizeDrops(resolved),
	}
	run.Status = StatusDraft
	run.ErrorMessage = ""
	run.ApprovedAt = nil
	run.AppliedAt = nil
	run.UpdatedAt = time.Now().UTC()

	if err := o.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return &DraftResult{
		Run:         run,
		DroppedRefs: resolved.DroppedRefs,
		DroppedDays: resolved.DroppedDays,
	}, nil
}

// EditDraft replaces the draft's day set wholesale. References are re-resolved
// against the run's existing catalog, then the shopping list and validation
// are re-derived. With applyToPlan set, the edit commits immediately and the
// run jumps straight to applied, subject to the same zero-violation check as
// a normal apply.
func (o *Orchestrator) EditDraft(ctx context.Context, userID, runID string, days []MealPlanDay, applyToPlan bool) (*DraftResult, error) {
	run, err := o.getRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}

	resolved := ResolveDays(run.OutputDraft.RecipeCatalog, days)

	run.OutputDraft.MealPlanDays = resolved.Days
	o.deriveDraft(ctx, run)
	run.Summary.UnmetConstraints = summarizeViolations(run.Violations())
	run.Summary.Notes = summarizeDrops(resolved)
	run.Status = StatusDraft
	run.ApprovedAt = nil
	run.AppliedAt = nil
	run.UpdatedAt = time.Now().UTC()

	result := &DraftResult{
		Run:         run,
		DroppedRefs: resolved.DroppedRefs,
		DroppedDays: resolved.DroppedDays,
	}

	if applyToPlan {
		if len(run.Violations()) > 0 {
			// The edit itself still lands as a draft; only the commit is
			// refused.
			if err := o.runs.Update(ctx, run); err != nil {
				return nil, fmt.Errorf("failed to save draft: %w", err)
			}
			return nil, &ValidationBlockedError{Violations: run.Violations()}
		}
		if len(run.OutputDraft.MealPlanDays) == 0 {
			if err := o.runs.Update(ctx, run); err != nil {
				return nil, fmt.Errorf("failed to save draft: %w", err)
			}
			return nil, ErrNoPlanDays
		}
		if err := o.mealPlans.ReplaceDays(ctx, userID, run.OutputDraft.MealPlanDays); err != nil {
			return nil, fmt.Errorf("failed to commit plan days: %w", err)
		}
		now := time.Now().UTC()
		run.Status = StatusApplied
		run.AppliedAt = &now
		run.UpdatedAt = now
	}

	if err := o.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return result, nil
}

// Approve moves a clean draft to approved. Outstanding violations block the
// transition regardless of any other field, and the run is not mutated.
func (o *Orchestrator) Approve(ctx context.Context, userID, runID string) (*Run, error) {
	run, err := o.getRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}

	if len(run.Violations()) > 0 {
		return nil, &ValidationBlockedError{Violations: run.Violations()}
	}
	if run.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedAt = &now
	run.UpdatedAt = now

	if err := o.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save approval: %w", err)
	}
	return run, nil
}

// Apply commits an approved run's days to the meal-plan store and marks the
// run applied. Violations are re-checked because the draft may have been
// edited since approval. Every day is committed in one transaction; a failed
// commit leaves the run record unchanged.
func (o *Orchestrator) Apply(ctx context.Context, userID, runID string) (*Run, error) {
	run, err := o.getRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}

	if len(run.Violations()) > 0 {
		return nil, &ValidationBlockedError{Violations: run.Violations()}
	}
	if run.Status != StatusApproved {
		return nil, ErrNotApproved
	}
	if len(run.OutputDraft.MealPlanDays) == 0 {
		return nil, ErrNoPlanDays
	}

	if err := o.mealPlans.ReplaceDays(ctx, userID, run.OutputDraft.MealPlanDays); err != nil {
		return nil, fmt.Errorf("failed to commit plan days: %w", err)
	}

	now := time.Now().UTC()
	run.Status = StatusApplied
	run.AppliedAt = &now
	run.UpdatedAt = now

	if err := o.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save applied run: %w", err)
	}
	return run, nil
}

// deriveDraft re-runs the aggregator and validator over the draft's current
// days. Every mutation path goes through here so the stored shopping list and
// validation are never stale.
func (o *Orchestrator) deriveDraft(ctx context.Context, run *Run) {
	overrides, err := o.overrides.ListByUser(ctx, run.UserID)
	if err != nil {
		log.Printf("Warning: failed to load aisle overrides for %s: %v", run.UserID, err)
		overrides = nil
	}

	byID := run.OutputDraft.CatalogByID()
	run.OutputDraft.ShoppingList = grocery.Aggregate(
		buildSourceDays(run.OutputDraft.MealPlanDays, byID),
		grocery.Options{
			IncludeMeals:           true,
			IncludeCookingSessions: true,
			AisleOverrides:         overrides,
		},
	)
	run.OutputDraft.Validation = ValidateDraft(run.InputSnapshot, usedRecipes(run.OutputDraft.MealPlanDays, byID))
}

// buildSourceDays converts resolved plan days into aggregator sources with
// recipe documents attached.
func buildSourceDays(days []MealPlanDay, byID map[string]recipe.Recipe) []grocery.SourceDay {
	var out []grocery.SourceDay
	for _, day := range days {
		sd := grocery.SourceDay{Date: day.Date}
		for _, m := range day.Meals {
			rec := byID[m.RecipeID]
			sd.Sources = append(sd.Sources, grocery.Source{
				Kind:                grocery.SourceMeal,
				RecipeID:            rec.ID,
				RecipeTitle:         rec.Title,
				Ingredients:         rec.Ingredients,
				BaseServings:        rec.BaseServings,
				PlannedServings:     m.PlannedServings,
				ExcludeFromShopping: m.ExcludeFromShopping,
			})
		}
		for _, cs := range day.CookingSessions {
			rec := byID[cs.RecipeID]
			sd.Sources = append(sd.Sources, grocery.Source{
				Kind:                grocery.SourceSession,
				RecipeID:            rec.ID,
				RecipeTitle:         rec.Title,
				Ingredients:         rec.Ingredients,
				BaseServings:        rec.BaseServings,
				PlannedServings:     cs.PlannedServings,
				ExcludeFromShopping: cs.ExcludeFromShopping,
			})
		}
		out = append(out, sd)
	}
	return out
}

// usedRecipes returns the catalog subset actually referenced by the days, in
// first-reference order. Validation runs over the proposed set, not the whole
// catalog, so removing an offending recipe from the draft clears its
// violations.
func usedRecipes(days []MealPlanDay, byID map[string]recipe.Recipe) []recipe.Recipe {
	seen := make(map[string]struct{})
	var used []recipe.Recipe
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		rec, ok := byID[id]
		if !ok {
			return
		}
		seen[id] = struct{}{}
		used = append(used, rec)
	}
	for _, day := range days {
		for _, m := range day.Meals {
			add(m.RecipeID)
		}
		for _, cs := range day.CookingSessions {
			add(cs.RecipeID)
		}
	}
	return used
}

func (o *Orchestrator) getRun(ctx context.Context, userID, runID string) (*Run, error) {
	run, err := o.runs.GetByIDAndUser(ctx, runID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (o *Orchestrator) recordMeta(meta shared.AgentMeta) {
	if o.metrics == nil {
		return
	}
	if err := o.metrics.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

func summarizeViolations(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	seen := make(map[string]struct{})
	var constraints []string
	for _, v := range violations {
		if _, ok := seen[v.Constraint]; ok {
			continue
		}
		seen[v.Constraint] = struct{}{}
		constraints = append(constraints, v.Constraint)
	}
	return "Unresolved: " + strings.Join(constraints, "; ")
}

func summarizeDrops(resolved ResolveResult) string {
	var parts []string
	if n := len(resolved.DroppedRefs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d entries referenced recipes outside the catalog and were removed", n))
	}
	if n := len(resolved.DroppedDays); n > 0 {
		parts = append(parts, fmt.Sprintf("%d days had invalid dates and were discarded", n))
	}
	return strings.Join(parts, ". ")
}

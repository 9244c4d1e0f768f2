package plan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
	"github.com/karsonthompson/mealdino-sub001/internal/shared"
)

type fakeRunStore struct {
	runs map[string]Run
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]Run)}
}

func (s *fakeRunStore) Create(_ context.Context, run *Run) error {
	s.runs[run.ID] = *run
	return nil
}

func (s *fakeRunStore) GetByIDAndUser(_ context.Context, id, userID string) (*Run, error) {
	run, ok := s.runs[id]
	if !ok || run.UserID != userID {
		return nil, nil
	}
	copied := run
	return &copied, nil
}

func (s *fakeRunStore) Update(_ context.Context, run *Run) error {
	if _, ok := s.runs[run.ID]; !ok {
		return ErrRunNotFound
	}
	s.runs[run.ID] = *run
	return nil
}

type fakeProfileStore struct {
	profile *profile.Profile
}

func (s *fakeProfileStore) FindByUser(context.Context, string) (*profile.Profile, error) {
	return s.profile, nil
}

type fakeRecipeStore struct {
	recipes []recipe.Recipe
}

func (s *fakeRecipeStore) ListEligible(context.Context, string, profile.Preferences) ([]recipe.Recipe, error) {
	return s.recipes, nil
}

type fakeMealPlanStore struct {
	replaced [][]MealPlanDay
	err      error
}

func (s *fakeMealPlanStore) ReplaceDays(_ context.Context, _ string, days []MealPlanDay) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = append(s.replaced, days)
	return nil
}

type fakeOverrideStore struct {
	overrides map[string]string
}

func (s *fakeOverrideStore) ListByUser(context.Context, string) (map[string]string, error) {
	return s.overrides, nil
}

type fakeMetrics struct {
	metas []shared.AgentMeta
}

func (m *fakeMetrics) RecordMeta(meta shared.AgentMeta) error {
	m.metas = append(m.metas, meta)
	return nil
}

type mockGenerator struct {
	generate func(ctx context.Context, in GenerationInput) (GenerationResult, error)
}

func (g *mockGenerator) Generate(ctx context.Context, in GenerationInput) (GenerationResult, error) {
	return g.generate(ctx, in)
}

type fixture struct {
	orch      *Orchestrator
	runs      *fakeRunStore
	profiles  *fakeProfileStore
	recipes   *fakeRecipeStore
	mealPlans *fakeMealPlanStore
	metrics   *fakeMetrics
	generator *mockGenerator
}

func newFixture(recipes []recipe.Recipe, prof *profile.Profile) *fixture {
	f := &fixture{
		runs:      newFakeRunStore(),
		profiles:  &fakeProfileStore{profile: prof},
		recipes:   &fakeRecipeStore{recipes: recipes},
		mealPlans: &fakeMealPlanStore{},
		metrics:   &fakeMetrics{},
		generator: &mockGenerator{},
	}
	f.orch = NewOrchestrator(
		f.runs, f.profiles, f.recipes, f.mealPlans,
		&fakeOverrideStore{}, f.generator, f.metrics,
	)
	return f
}

var testCatalog = []recipe.Recipe{
	{ID: "r1", Title: "Lentil Soup", Ingredients: []string{"1 cup lentils", "1 onion"}, BaseServings: 2},
	{ID: "r2", Title: "Garlic Shrimp", Ingredients: []string{"1 lb shrimp", "3 cloves garlic"}, BaseServings: 2},
}

func TestCreateRunSnapshotsProfile(t *testing.T) {
	prof := &profile.Profile{
		UserID:          "u1",
		HardConstraints: []string{"no shellfish"},
		Preferences:     profile.Preferences{DefaultServings: 2},
	}
	f := newFixture(testCatalog, prof)

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, run.Status)
	assert.NotEmpty(t, run.ID)

	// Later profile edits must not affect the snapshot.
	prof.HardConstraints[0] = "vegan"
	stored, err := f.runs.GetByIDAndUser(context.Background(), run.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"no shellfish"}, stored.InputSnapshot.HardConstraints)
}

func TestCreateRunRejectsInvalidRange(t *testing.T) {
	f := newFixture(testCatalog, nil)

	_, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-04", "2026-03-02")
	assert.Error(t, err)

	_, err = f.orch.CreateRun(context.Background(), "u1", "March 2nd", "2026-03-04")
	assert.Error(t, err)
}

func TestGenerateProducesDraft(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(_ context.Context, in GenerationInput) (GenerationResult, error) {
		assert.Len(t, in.Catalog, 2)
		return GenerationResult{
			Days: []MealPlanDay{{
				Date: "2026-03-02",
				Meals: []Meal{
					{Type: MealDinner, RecipeID: "r1", PlannedServings: 2},
					{Type: MealLunch, RecipeID: "unknown", PlannedServings: 2},
				},
			}},
			Rationale: "Simple and filling",
			Meta:      shared.AgentMeta{AgentName: "Drafter", Usage: shared.TokenUsage{TotalTokens: 100}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)

	result, err := f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, result.Run.Status)
	assert.Equal(t, "Simple and filling", result.Run.Summary.WhyThisPlan)

	// The unknown reference is filtered and reported, not kept.
	require.Len(t, result.DroppedRefs, 1)
	assert.Equal(t, "unknown", result.DroppedRefs[0].RecipeID)
	require.Len(t, result.Run.OutputDraft.MealPlanDays, 1)
	assert.Len(t, result.Run.OutputDraft.MealPlanDays[0].Meals, 1)

	// The shopping list is derived from the kept day.
	assert.NotEmpty(t, result.Run.OutputDraft.ShoppingList.Totals)
	assert.Empty(t, result.Run.Violations())

	require.Len(t, f.metrics.metas, 1)
	assert.Equal(t, "Drafter", f.metrics.metas[0].AgentName)
}

func TestGenerateFailurePreservesPriorDraft(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{}, fmt.Errorf("model timeout")
	}

	_, err = f.orch.Revise(context.Background(), "u1", run.ID, "more variety")
	var genErr *GenerationFailedError
	require.ErrorAs(t, err, &genErr)

	stored, err := f.runs.GetByIDAndUser(context.Background(), run.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "model timeout", stored.ErrorMessage)
	assert.Equal(t, StatusDraft, stored.Status)
	require.Len(t, stored.OutputDraft.MealPlanDays, 1)
	assert.Equal(t, "r1", stored.OutputDraft.MealPlanDays[0].Meals[0].RecipeID)
}

func TestApproveBlockedThenEditClears(t *testing.T) {
	prof := &profile.Profile{UserID: "u1", HardConstraints: []string{"no shrimp"}}
	f := newFixture(testCatalog, prof)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date: "2026-03-02",
				Meals: []Meal{
					{Type: MealLunch, RecipeID: "r1", PlannedServings: 2},
					{Type: MealDinner, RecipeID: "r2", PlannedServings: 2},
				},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	result, err := f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)
	require.Len(t, result.Run.Violations(), 1)

	_, err = f.orch.Approve(context.Background(), "u1", run.ID)
	blocked, ok := AsValidationBlocked(err)
	require.True(t, ok)
	require.Len(t, blocked.Violations, 1)
	assert.Equal(t, "r2", blocked.Violations[0].RecipeID)
	assert.Equal(t, "no shrimp", blocked.Violations[0].Constraint)

	// Removing the offending recipe from the draft clears its violations.
	edited, err := f.orch.EditDraft(context.Background(), "u1", run.ID, []MealPlanDay{{
		Date:  "2026-03-02",
		Meals: []Meal{{Type: MealLunch, RecipeID: "r1", PlannedServings: 2}},
	}}, false)
	require.NoError(t, err)
	assert.Empty(t, edited.Run.Violations())

	approved, err := f.orch.Approve(context.Background(), "u1", run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	applied, err := f.orch.Apply(context.Background(), "u1", run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedAt)
	require.Len(t, f.mealPlans.replaced, 1)
	assert.Len(t, f.mealPlans.replaced[0], 1)
}

func TestApplyRequiresApproval(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	_, err = f.orch.Apply(context.Background(), "u1", run.ID)
	assert.ErrorIs(t, err, ErrNotApproved)
	assert.Empty(t, f.mealPlans.replaced)
}

func TestEditDraftApplyToPlanShortcut(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	result, err := f.orch.EditDraft(context.Background(), "u1", run.ID, []MealPlanDay{{
		Date:  "2026-03-03",
		Meals: []Meal{{Type: MealLunch, RecipeID: "r1", PlannedServings: 2}},
	}}, true)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, result.Run.Status)
	require.Len(t, f.mealPlans.replaced, 1)
}

func TestEditDraftSilentlyDropsUnknownRefs(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	result, err := f.orch.EditDraft(context.Background(), "u1", run.ID, []MealPlanDay{{
		Date: "2026-03-02",
		Meals: []Meal{
			{Type: MealLunch, RecipeID: "r1", PlannedServings: 2},
			{Type: MealDinner, RecipeID: "not-in-catalog", PlannedServings: 2},
		},
	}}, false)
	require.NoError(t, err)

	// The edit succeeds; the bad reference is filtered and reported.
	require.Len(t, result.DroppedRefs, 1)
	assert.Equal(t, "not-in-catalog", result.DroppedRefs[0].RecipeID)
	require.Len(t, result.Run.OutputDraft.MealPlanDays, 1)
	assert.Len(t, result.Run.OutputDraft.MealPlanDays[0].Meals, 1)
	assert.Contains(t, result.Run.Summary.Notes, "1 entries referenced recipes outside the catalog")
}

func TestEditDraftApplyToPlanBlockedStillSavesDraft(t *testing.T) {
	prof := &profile.Profile{UserID: "u1", HardConstraints: []string{"no shrimp"}}
	f := newFixture(testCatalog, prof)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	_, err = f.orch.EditDraft(context.Background(), "u1", run.ID, []MealPlanDay{{
		Date:  "2026-03-02",
		Meals: []Meal{{Type: MealDinner, RecipeID: "r2", PlannedServings: 2}},
	}}, true)
	_, ok := AsValidationBlocked(err)
	require.True(t, ok)
	assert.Empty(t, f.mealPlans.replaced)

	// The edit itself landed as a draft even though the commit was refused.
	stored, err := f.runs.GetByIDAndUser(context.Background(), run.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
	assert.Equal(t, "r2", stored.OutputDraft.MealPlanDays[0].Meals[0].RecipeID)
	assert.Len(t, stored.Violations(), 1)
}

func TestApplyEmptyDraftRejected(t *testing.T) {
	f := newFixture(testCatalog, nil)

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)

	// Force the status to approved without any days.
	stored, _ := f.runs.GetByIDAndUser(context.Background(), run.ID, "u1")
	stored.Status = StatusApproved
	require.NoError(t, f.runs.Update(context.Background(), stored))

	_, err = f.orch.Apply(context.Background(), "u1", run.ID)
	assert.ErrorIs(t, err, ErrNoPlanDays)
}

func TestOperationsOnMissingRun(t *testing.T) {
	f := newFixture(testCatalog, nil)

	_, err := f.orch.Generate(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = f.orch.Approve(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = f.orch.Apply(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestApplyCommitFailureLeavesRunApproved(t *testing.T) {
	f := newFixture(testCatalog, nil)
	f.generator.generate = func(context.Context, GenerationInput) (GenerationResult, error) {
		return GenerationResult{
			Days: []MealPlanDay{{
				Date:  "2026-03-02",
				Meals: []Meal{{Type: MealDinner, RecipeID: "r1", PlannedServings: 2}},
			}},
		}, nil
	}

	run, err := f.orch.CreateRun(context.Background(), "u1", "2026-03-02", "2026-03-04")
	require.NoError(t, err)
	_, err = f.orch.Generate(context.Background(), "u1", run.ID)
	require.NoError(t, err)
	_, err = f.orch.Approve(context.Background(), "u1", run.ID)
	require.NoError(t, err)

	f.mealPlans.err = errors.New("disk full")
	_, err = f.orch.Apply(context.Background(), "u1", run.ID)
	require.Error(t, err)

	stored, _ := f.runs.GetByIDAndUser(context.Background(), run.ID, "u1")
	assert.Equal(t, StatusApproved, stored.Status)
	assert.Nil(t, stored.AppliedAt)
}

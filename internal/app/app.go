package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/config"
	"github.com/karsonthompson/mealdino-sub001/internal/mealplan"
	"github.com/karsonthompson/mealdino-sub001/internal/metrics"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

// App holds the application's dependencies for the CLI.
type App struct {
	cfg          *config.Config
	orchestrator *plan.Orchestrator
	runs         *plan.Repository
	profiles     *profile.Repository
	mealPlans    *mealplan.Repository
	importer     *recipe.Importer
	metricsStore *metrics.Store
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	orchestrator *plan.Orchestrator,
	runs *plan.Repository,
	profiles *profile.Repository,
	mealPlans *mealplan.Repository,
	importer *recipe.Importer,
	metricsStore *metrics.Store,
) *App {
	return &App{
		cfg:          cfg,
		orchestrator: orchestrator,
		runs:         runs,
		profiles:     profiles,
		mealPlans:    mealPlans,
		importer:     importer,
		metricsStore: metricsStore,
	}
}

// PlanRange creates a run for the date range and generates its first draft.
func (a *App) PlanRange(ctx context.Context, start, end string) error {
	userID := a.cfg.DefaultUserID

	run, err := a.orchestrator.CreateRun(ctx, userID, start, end)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	fmt.Printf("Created run %s for %s..%s\n", run.ID, start, end)

	result, err := a.orchestrator.Generate(ctx, userID, run.ID)
	if err != nil {
		return fmt.Errorf("failed to generate draft: %w", err)
	}

	a.printDraft(result)
	return nil
}

// ReviseLatest revises the most recent run's draft with the instruction.
func (a *App) ReviseLatest(ctx context.Context, instruction string) error {
	run, err := a.latestRun(ctx)
	if err != nil {
		return err
	}

	result, err := a.orchestrator.Revise(ctx, a.cfg.DefaultUserID, run.ID, instruction)
	if err != nil {
		return fmt.Errorf("failed to revise draft: %w", err)
	}

	a.printDraft(result)
	return nil
}

// ApproveLatest approves the most recent run.
func (a *App) ApproveLatest(ctx context.Context) error {
	run, err := a.latestRun(ctx)
	if err != nil {
		return err
	}

	approved, err := a.orchestrator.Approve(ctx, a.cfg.DefaultUserID, run.ID)
	var blocked *plan.ValidationBlockedError
	if errors.As(err, &blocked) {
		printViolations(blocked.Violations)
		return fmt.Errorf("run cannot be approved while violations remain")
	}
	if err != nil {
		return fmt.Errorf("failed to approve run: %w", err)
	}

	fmt.Printf("Run %s approved at %s\n", approved.ID, approved.ApprovedAt.Format(time.RFC3339))
	return nil
}

// ApplyLatest applies the most recent run, committing its days to the plan.
func (a *App) ApplyLatest(ctx context.Context) error {
	run, err := a.latestRun(ctx)
	if err != nil {
		return err
	}

	applied, err := a.orchestrator.Apply(ctx, a.cfg.DefaultUserID, run.ID)
	var blocked *plan.ValidationBlockedError
	if errors.As(err, &blocked) {
		printViolations(blocked.Violations)
		return fmt.Errorf("run cannot be applied while violations remain")
	}
	if err != nil {
		return fmt.Errorf("failed to apply run: %w", err)
	}

	fmt.Printf("Run %s applied: %d day(s) committed to the meal plan\n",
		applied.ID, len(applied.OutputDraft.MealPlanDays))
	return nil
}

// ImportRecipe clips a recipe URL into the user's recipe collection.
func (a *App) ImportRecipe(ctx context.Context, url string) error {
	result, err := a.importer.ImportURL(ctx, a.cfg.DefaultUserID, url)
	if result.Meta.AgentName != "" {
		if recErr := a.metricsStore.RecordMeta(result.Meta); recErr != nil {
			log.Printf("Warning: failed to record metrics: %v", recErr)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to import recipe: %w", err)
	}

	fmt.Printf("Imported \"%s\" (%d ingredients, serves %d)\n",
		result.Recipe.Title, len(result.Recipe.Ingredients), result.Recipe.BaseServings)
	return nil
}

// AddConstraint appends a hard constraint to the user's profile.
func (a *App) AddConstraint(ctx context.Context, constraint string) error {
	userID := a.cfg.DefaultUserID
	prof, err := a.profiles.FindByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if prof == nil {
		prof = &profile.Profile{UserID: userID}
	}
	prof.HardConstraints = append(prof.HardConstraints, constraint)

	if err := a.profiles.Save(ctx, prof); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Printf("Added hard constraint: %q (new runs will snapshot it)\n", constraint)
	return nil
}

// AcceptDisclaimer stamps the medical disclaimer on the user's profile.
func (a *App) AcceptDisclaimer(ctx context.Context) error {
	userID := a.cfg.DefaultUserID
	prof, err := a.profiles.FindByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if prof == nil {
		prof = &profile.Profile{UserID: userID}
	}
	now := time.Now().UTC()
	prof.MedicalDisclaimerAcceptedAt = &now

	if err := a.profiles.Save(ctx, prof); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Println("Medical disclaimer accepted.")
	return nil
}

// ShowCalendar prints the committed meal plan for the date range.
func (a *App) ShowCalendar(ctx context.Context, start, end string) error {
	days, err := a.mealPlans.ListRange(ctx, a.cfg.DefaultUserID, start, end)
	if err != nil {
		return fmt.Errorf("failed to load meal plan: %w", err)
	}
	if len(days) == 0 {
		fmt.Printf("Nothing planned for %s..%s.\n", start, end)
		return nil
	}

	for _, day := range days {
		fmt.Printf("\n%s\n", day.Date)
		for _, meal := range day.Meals {
			fmt.Printf("  %-10s %s (serves %d)\n", meal.Type, meal.RecipeID, meal.PlannedServings)
		}
		for _, session := range day.CookingSessions {
			fmt.Printf("  cook       %s x%d\n", session.RecipeID, session.PlannedServings)
		}
	}
	return nil
}

// ShowShoppingList prints the latest run's shopping list grouped by aisle.
func (a *App) ShowShoppingList(ctx context.Context) error {
	run, err := a.latestRun(ctx)
	if err != nil {
		return err
	}
	printShoppingList(run.OutputDraft.ShoppingList)
	return nil
}

func (a *App) latestRun(ctx context.Context) (*plan.Run, error) {
	run, err := a.runs.LatestByUser(ctx, a.cfg.DefaultUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("no runs yet; create one with the plan command")
	}
	return run, nil
}

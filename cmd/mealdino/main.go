package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/karsonthompson/mealdino-sub001/internal/app"
	"github.com/karsonthompson/mealdino-sub001/internal/config"
	"github.com/karsonthompson/mealdino-sub001/internal/database"
	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/llm"
	"github.com/karsonthompson/mealdino-sub001/internal/mealplan"
	"github.com/karsonthompson/mealdino-sub001/internal/metrics"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	runRepo := plan.NewRepository(db.SQL)
	profileRepo := profile.NewRepository(db.SQL)
	recipeRepo := recipe.NewRepository(db.SQL)
	mealPlanRepo := mealplan.NewRepository(db.SQL)
	overrideRepo := grocery.NewOverrideRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	textGen, closeGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer closeGen()

	var generator plan.Generator
	if textGen != nil {
		generator = plan.NewLLMGenerator(textGen)
	} else {
		log.Println("No LLM API key configured, using the offline fallback generator")
		generator = plan.NewFallbackGenerator()
	}

	orchestrator := plan.NewOrchestrator(
		runRepo,
		profileRepo,
		recipeRepo,
		mealPlanRepo,
		overrideRepo,
		generator,
		metricsStore,
	)

	importer := recipe.NewImporter(recipeRepo, textGen)

	application := app.NewApp(cfg, orchestrator, runRepo, profileRepo, mealPlanRepo, importer, metricsStore)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan":
		if len(os.Args) != 4 {
			fmt.Println("Usage: mealdino plan <start> <end>")
			os.Exit(1)
		}
		if err := application.PlanRange(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Planning failed: %v", err)
		}
	case "revise":
		if len(os.Args) < 3 {
			fmt.Println("Usage: mealdino revise <feedback...>")
			os.Exit(1)
		}
		if err := application.ReviseLatest(ctx, joinArgs(os.Args[2:])); err != nil {
			log.Fatalf("Revision failed: %v", err)
		}
	case "approve":
		if err := application.ApproveLatest(ctx); err != nil {
			log.Fatalf("Approval failed: %v", err)
		}
	case "apply":
		if err := application.ApplyLatest(ctx); err != nil {
			log.Fatalf("Apply failed: %v", err)
		}
	case "calendar":
		if len(os.Args) != 4 {
			fmt.Println("Usage: mealdino calendar <start> <end>")
			os.Exit(1)
		}
		if err := application.ShowCalendar(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Calendar failed: %v", err)
		}
	case "list":
		if err := application.ShowShoppingList(ctx); err != nil {
			log.Fatalf("Listing failed: %v", err)
		}
	case "import":
		if len(os.Args) != 3 {
			fmt.Println("Usage: mealdino import <url>")
			os.Exit(1)
		}
		if err := application.ImportRecipe(ctx, os.Args[2]); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	case "constraint":
		if len(os.Args) < 3 {
			fmt.Println("Usage: mealdino constraint <text...>")
			os.Exit(1)
		}
		if err := application.AddConstraint(ctx, joinArgs(os.Args[2:])); err != nil {
			log.Fatalf("Constraint update failed: %v", err)
		}
	case "accept-disclaimer":
		if err := application.AcceptDisclaimer(ctx); err != nil {
			log.Fatalf("Disclaimer update failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newTextGenerator picks an LLM backend from the configured keys. A nil
// generator with a nil error means no key is configured.
func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func(), error) {
	if cfg.GroqAPIKey != "" {
		return llm.NewGroqClient(cfg, llm.ModelPlanner, 0.3), func() {}, nil
	}
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		return client, func() { client.Close() }, nil
	}
	return nil, func() {}, nil
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func printUsage() {
	fmt.Println("Usage: mealdino <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan <start> <end>   Draft a meal plan for the date range (YYYY-MM-DD)")
	fmt.Println("  revise <feedback>    Redo the latest draft with extra instructions")
	fmt.Println("  approve              Approve the latest draft")
	fmt.Println("  apply                Commit the approved plan to the calendar")
	fmt.Println("  calendar <start> <end>  Show the committed meal plan for the range")
	fmt.Println("  list                 Print the latest draft's shopping list")
	fmt.Println("  import <url>         Save a recipe from a web page")
	fmt.Println("  constraint <text>    Add a hard dietary constraint to your profile")
	fmt.Println("  accept-disclaimer    Accept the medical disclaimer")
	fmt.Println("  metrics-cleanup      Remove old metric records")
}

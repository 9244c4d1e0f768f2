package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/config"
	"github.com/karsonthompson/mealdino-sub001/internal/database"
	"github.com/karsonthompson/mealdino-sub001/internal/grocery"
	"github.com/karsonthompson/mealdino-sub001/internal/llm"
	"github.com/karsonthompson/mealdino-sub001/internal/mealplan"
	"github.com/karsonthompson/mealdino-sub001/internal/metrics"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
	"github.com/karsonthompson/mealdino-sub001/internal/profile"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"
	"github.com/karsonthompson/mealdino-sub001/internal/telegram"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Invalid config: %v", err)
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

	var (
		plannerGen   llm.TextGenerator
		extractorGen llm.TextGenerator
	)
	switch {
	case cfg.GroqAPIKey != "":
		plannerGen = llm.NewGroqClient(cfg, llm.ModelPlanner, 0.3)
		extractorGen = llm.NewGroqClient(cfg, llm.ModelExtractor, 0.1)
	case cfg.GeminiAPIKey != "":
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		plannerGen = geminiClient
		extractorGen = geminiClient
	default:
		log.Fatal("Either GROQ_API_KEY or GEMINI_API_KEY must be set")
	}

	orchestrator := plan.NewOrchestrator(
		runRepo,
		profileRepo,
		recipeRepo,
		mealPlanRepo,
		overrideRepo,
		plan.NewLLMGenerator(plannerGen),
		metricsStore,
	)
	importer := recipe.NewImporter(recipeRepo, extractorGen)

	bot, err := telegram.NewBot(cfg, orchestrator, runRepo, importer, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

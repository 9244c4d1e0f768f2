package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/karsonthompson/mealdino-sub001/internal/config"
	"github.com/karsonthompson/mealdino-sub001/internal/metrics"
	"github.com/karsonthompson/mealdino-sub001/internal/plan"
	"github.com/karsonthompson/mealdino-sub001/internal/recipe"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `*MealDino commands*

/plan <start> <end> - draft a plan for the date range (YYYY-MM-DD)
/revise <feedback> - redo the current draft with your feedback
/approve - approve the current draft
/apply - commit the approved plan to your calendar
/list - show the shopping list for the current draft
Paste a recipe URL to save it to your collection.`

// Bot wraps the Telegram API and the run lifecycle.
type Bot struct {
	api          *tgbotapi.BotAPI
	orchestrator *plan.Orchestrator
	runs         *plan.Repository
	importer     *recipe.Importer
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	orchestrator *plan.Orchestrator,
	runs *plan.Repository,
	importer *recipe.Importer,
	metricsStore *metrics.Store,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          api,
		orchestrator: orchestrator,
		runs:         runs,
		importer:     importer,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, userID, msg.Chat.ID, text)
		return
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/plan":
		b.handlePlan(ctx, userID, msg.Chat.ID, args)
	case "/revise":
		b.handleRevise(ctx, userID, msg.Chat.ID, args)
	case "/approve":
		b.handleApprove(ctx, userID, msg.Chat.ID)
	case "/apply":
		b.handleApply(ctx, userID, msg.Chat.ID)
	case "/list":
		b.handleShoppingList(ctx, userID, msg.Chat.ID)
	case "/metrics":
		b.handleMetrics(msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func splitCommand(text string) (string, string) {
	cmd, args, _ := strings.Cut(text, " ")
	return cmd, strings.TrimSpace(args)
}

func (b *Bot) handlePlan(ctx context.Context, userID string, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.reply(chatID, "Usage: /plan <start> <end> (YYYY-MM-DD)")
		return
	}

	statusID := b.sendStatus(chatID, "🧑‍🍳 *Drafting your plan...*")

	run, err := b.orchestrator.CreateRun(ctx, userID, fields[0], fields[1])
	if err != nil {
		b.editError(chatID, statusID, "Could not start the run", err)
		return
	}

	result, err := b.orchestrator.Generate(ctx, userID, run.ID)
	if err != nil {
		b.editError(chatID, statusID, "Drafting failed", err)
		return
	}

	b.sendDraft(chatID, statusID, result)
}

func (b *Bot) handleRevise(ctx context.Context, userID string, chatID int64, instruction string) {
	if instruction == "" {
		b.reply(chatID, "Usage: /revise <feedback>")
		return
	}

	run, ok := b.latestRun(ctx, userID, chatID)
	if !ok {
		return
	}

	statusID := b.sendStatus(chatID, "🧑‍🍳 *Revising your plan...*")

	result, err := b.orchestrator.Revise(ctx, userID, run.ID, instruction)
	if err != nil {
		b.editError(chatID, statusID, "Revision failed", err)
		return
	}

	b.sendDraft(chatID, statusID, result)
}

func (b *Bot) handleApprove(ctx context.Context, userID string, chatID int64) {
	run, ok := b.latestRun(ctx, userID, chatID)
	if !ok {
		return
	}

	approved, err := b.orchestrator.Approve(ctx, userID, run.ID)
	if err != nil {
		b.replyLifecycleError(chatID, "approve", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ Plan approved for *%s..%s*.\nSend /apply to commit it to your calendar.",
		approved.DateRange.Start, approved.DateRange.End))
}

func (b *Bot) handleApply(ctx context.Context, userID string, chatID int64) {
	run, ok := b.latestRun(ctx, userID, chatID)
	if !ok {
		return
	}

	applied, err := b.orchestrator.Apply(ctx, userID, run.ID)
	if err != nil {
		b.replyLifecycleError(chatID, "apply", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("📅 Plan applied. %d day(s) are on your calendar.",
		len(applied.OutputDraft.MealPlanDays)))
}

func (b *Bot) handleShoppingList(ctx context.Context, userID string, chatID int64) {
	run, ok := b.latestRun(ctx, userID, chatID)
	if !ok {
		return
	}
	b.reply(chatID, formatShoppingList(run.OutputDraft.ShoppingList))
}

func (b *Bot) handleImport(ctx context.Context, userID string, chatID int64, url string) {
	statusID := b.sendStatus(chatID, "✂️ *Saving recipe...*")

	result, err := b.importer.ImportURL(ctx, userID, url)
	if result.Meta.AgentName != "" {
		if recErr := b.metricsStore.RecordMeta(result.Meta); recErr != nil {
			log.Printf("Warning: failed to record metrics: %v", recErr)
		}
	}
	if err != nil {
		b.editError(chatID, statusID, "Could not save the recipe", err)
		return
	}

	b.edit(chatID, statusID, fmt.Sprintf("✅ *Recipe saved!*\n\n*%s* (%d ingredients, serves %d)",
		result.Recipe.Title, len(result.Recipe.Ingredients), result.Recipe.BaseServings))
}

func (b *Bot) handleMetrics(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.SnapshotSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")
	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}
	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) latestRun(ctx context.Context, userID string, chatID int64) (*plan.Run, bool) {
	run, err := b.runs.LatestByUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading latest run for %s: %v", userID, err)
		b.reply(chatID, "❌ Something went wrong loading your plan.")
		return nil, false
	}
	if run == nil {
		b.reply(chatID, "No plan yet. Start one with /plan <start> <end>.")
		return nil, false
	}
	return run, true
}

func (b *Bot) replyLifecycleError(chatID int64, action string, err error) {
	if blocked, ok := plan.AsValidationBlocked(err); ok {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("🚫 Cannot %s while the draft violates your constraints:\n", action))
		for _, v := range blocked.Violations {
			title := v.RecipeTitle
			if title == "" {
				title = v.RecipeID
			}
			sb.WriteString(fmt.Sprintf("• *%s* conflicts with _%s_\n", title, v.Constraint))
		}
		sb.WriteString("\nUse /revise to fix the draft.")
		b.reply(chatID, sb.String())
		return
	}
	log.Printf("Error on %s: %v", action, err)
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.reply(chatID, fmt.Sprintf("❌ *Could not %s:*\n```\n%v\n```", action, safeErr))
}

func (b *Bot) sendDraft(chatID int64, statusID int, result *plan.DraftResult) {
	planText, listText := formatDraftParts(result)
	b.edit(chatID, statusID, planText)

	listMsg := tgbotapi.NewMessage(chatID, listText)
	listMsg.ParseMode = "Markdown"
	b.api.Send(listMsg)
}

func (b *Bot) sendStatus(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send status message: %v", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func (b *Bot) editError(chatID int64, messageID int, prefix string, err error) {
	log.Printf("%s: %v", prefix, err)
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.edit(chatID, messageID, fmt.Sprintf("❌ *%s:*\n```\n%v\n```", prefix, safeErr))
}

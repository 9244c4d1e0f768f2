package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string `env:"MEALDINO_DB_PATH,default=data/mealdino.db"`

	// LLM backends. Groq is preferred for plan generation when both are set;
	// when neither is set the deterministic fallback generator is used.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`

	// User the CLI acts as. The bot derives user IDs from Telegram instead.
	DefaultUserID string `env:"MEALDINO_USER_ID,default=default_user"`

	// Telegram Config (required for the bot, unused by the CLI)
	TelegramBotToken       string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL     string  `env:"TELEGRAM_WEBHOOK_URL"`
	TelegramAllowedUserIDs []int64 `env:"TELEGRAM_ALLOWED_USER_IDS"`
	AdminTelegramID        int64   `env:"TELEGRAM_ADMIN_ID"`
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return &cfg, nil
}

// RequireTelegram validates the fields the bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

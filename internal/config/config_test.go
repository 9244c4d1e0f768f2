package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "data/mealdino.db", cfg.DatabasePath)
		assert.Equal(t, "default_user", cfg.DefaultUserID)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("MEALDINO_DB_PATH", "/tmp/test.db")
		t.Setenv("MEALDINO_USER_ID", "alice")
		t.Setenv("GROQ_API_KEY", "groq_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "1001;1002")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
		assert.Equal(t, "alice", cfg.DefaultUserID)
		assert.Equal(t, "groq_key", cfg.GroqAPIKey)
		assert.Equal(t, []int64{1001, 1002}, cfg.TelegramAllowedUserIDs)
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())

	cfg.TelegramBotToken = "token"
	assert.Error(t, cfg.RequireTelegram())

	cfg.TelegramWebhookURL = "https://bot.test/webhook"
	assert.NoError(t, cfg.RequireTelegram())
}

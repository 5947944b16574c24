package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "matcher", cfg.JWTIssuer)
	assert.Equal(t, []string{"GigaChat-Max", "GigaChat-Pro", "GigaChat"}, cfg.GigaChatModels)
	assert.Equal(t, 100, cfg.MinTextLen)
	assert.Equal(t, float64(25), cfg.WeightEducation)
	assert.Equal(t, float64(25), cfg.WeightExperience)
	assert.Equal(t, float64(40), cfg.WeightHardSkills)
	assert.Equal(t, float64(10), cfg.WeightSoftSkills)
	assert.Equal(t, 20, cfg.HistoryLimitDefault)
	assert.Equal(t, 100, cfg.HistoryLimitMax)
	assert.Equal(t, 3500, cfg.TelegramMaxLen)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIGACHAT_MODELS", "GigaChat-Pro; GigaChat")
	t.Setenv("MIN_TEXT_LEN", "50")
	t.Setenv("WEIGHT_HARD_SKILLS", "60")
	t.Setenv("LOG_JSON", "false")
	t.Setenv("TELEGRAM_CHAT_IDS", "123, 456")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"GigaChat-Pro", "GigaChat"}, cfg.GigaChatModels)
	assert.Equal(t, 50, cfg.MinTextLen)
	assert.Equal(t, float64(60), cfg.WeightHardSkills)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, []string{"123", "456"}, cfg.TelegramChatIDs)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("MIN_TEXT_LEN", "не число")
	t.Setenv("LOG_JSON", "может быть")

	cfg := Load()
	assert.Equal(t, 100, cfg.MinTextLen)
	assert.True(t, cfg.LogJSON)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:examquest.db", cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 6, cfg.QuestionsPerSession)
	assert.Equal(t, 20, cfg.MockQuestionCount)
	assert.Equal(t, 90, cfg.MockSecondsPerQuestion)
	assert.Equal(t, 5, cfg.MinMockQuestions)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("QUESTIONS_PER_SESSION", "10")
	t.Setenv("MOCK_QUESTION_COUNT", "40")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 10, cfg.QuestionsPerSession)
	assert.Equal(t, 40, cfg.MockQuestionCount)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("QUESTIONS_PER_SESSION", "not-a-number")

	cfg := Load()

	assert.Equal(t, 6, cfg.QuestionsPerSession)
}

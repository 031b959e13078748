package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"REPOSITORY_URL", "EVALUATION_URL", "ANALYZER_URL",
		"REPOSITORY_TIMEOUT", "EVALUATION_TIMEOUT", "ANALYZER_TIMEOUT",
		"DEFAULT_TIME_LIMIT_MS", "MQ_BACKEND", "STORAGE_BACKEND",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("REPOSITORY_URL", DefaultRepositoryURL)
	t.Setenv("ANALYZER_URL", DefaultAnalyzerURL)
	t.Setenv("EVALUATION_URL", DefaultRepositoryURL)
	t.Setenv("DEFAULT_TIME_LIMIT_MS", "2000")
	t.Setenv("MQ_BACKEND", "none")
	t.Setenv("STORAGE_BACKEND", "None")

	cfg := LoadConfig()

	assert.Equal(t, DefaultRepositoryURL, cfg.Repository.BaseURL)
	assert.Equal(t, DefaultRepositoryURL, cfg.Evaluation.BaseURL)
	assert.Equal(t, DefaultAnalyzerURL, cfg.Analyzer.BaseURL)
	// Blank durations fall back to defaults.
	assert.Equal(t, DefaultRepositoryTimeout, cfg.Repository.Timeout)
	assert.Equal(t, DefaultAnalyzerTimeout, cfg.Analyzer.Timeout)
	assert.Equal(t, 2000, cfg.Submission.TimeLimitMs)
	assert.Equal(t, "none", cfg.Journal.StorageBackend)
	assert.False(t, cfg.Journal.DatabaseEnabled)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "45")
	assert.Equal(t, 45*time.Second, getEnvDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "2m")
	assert.Equal(t, 2*time.Minute, getEnvDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "-5")
	assert.Equal(t, time.Second, getEnvDuration("X_TIMEOUT", time.Second))
}

func TestGetEnvIntAndBoolFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 7, getEnvInt("X_INT", 7))

	t.Setenv("X_BOOL", "maybe")
	assert.True(t, getEnvBool("X_BOOL", true))

	t.Setenv("X_BOOL", "false")
	assert.False(t, getEnvBool("X_BOOL", true))
}

func TestEvaluationDefaultsToRepositoryURL(t *testing.T) {
	t.Setenv("REPOSITORY_URL", "http://gestor:9000")
	t.Setenv("EVALUATION_URL", "")
	os.Unsetenv("EVALUATION_URL")

	cfg := LoadConfig()
	assert.Equal(t, "http://gestor:9000", cfg.Evaluation.BaseURL)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

storage:
  backend: "postgres"
  database_url: "postgres://localhost/triage_test"

redis:
  enabled: true
  addr: "localhost:6380"
  ttl_seconds: 120

reasoner:
  enabled: true
  max_batch_size: 10
  timeout_seconds: 15

scoring:
  vip_response_rate: 0.5
  noise_archive_rate: 0.7
  reply_now_score: 75

lifecycle:
  handled_confidence: 0.9
  suggested_confidence: 0.6
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/triage_test", cfg.Storage.DatabaseURL)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, 120, cfg.Redis.TTLSeconds)

	assert.True(t, cfg.Reasoner.Enabled)
	assert.Equal(t, 10, cfg.Reasoner.MaxBatchSize)
	assert.Equal(t, 15, cfg.Reasoner.TimeoutSeconds)

	// Values from file
	assert.Equal(t, 0.5, cfg.Scoring.VIPResponseRate)
	assert.Equal(t, 0.7, cfg.Scoring.NoiseArchiveRate)
	assert.Equal(t, 75.0, cfg.Scoring.ReplyNowScore)

	// Defaults fill in everything the file omits
	assert.Equal(t, 50.0, cfg.Scoring.BaseScore)
	assert.Equal(t, 40.0, cfg.Scoring.VIPBoost)
	assert.Equal(t, 0.8, cfg.Scoring.AutoArchiveRate)
	assert.Equal(t, 24, cfg.Lifecycle.PendingWindowHours)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Reasoner.MaxBatchSize)
	assert.Equal(t, 0.6, cfg.Reasoner.EscalateBelowConfidence)
	assert.Equal(t, 0.9, cfg.Lifecycle.HandledConfidence)
	assert.Equal(t, 0.6, cfg.Lifecycle.SuggestedConfidence)

	// The classifier and scorer thresholds are the documented production set.
	assert.Equal(t, 0.5, cfg.Scoring.VIPResponseRate)
	assert.Equal(t, 0.6, cfg.Scoring.ImportantRate)
	assert.Equal(t, 0.7, cfg.Scoring.NoiseArchiveRate)
	assert.Equal(t, 5, cfg.Scoring.NoiseMinMessages)
	assert.Equal(t, 0.2, cfg.Scoring.OccasionalResponseRate)
	assert.Equal(t, 3, cfg.Scoring.MinMessagesForHistory)
	assert.Equal(t, 75.0, cfg.Scoring.ReplyNowScore)
	assert.Equal(t, 50.0, cfg.Scoring.BlockedPenalty)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("DATABASE_URL", "postgres://db.internal/triage")
	t.Setenv("PORT", "7070")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, "postgres://db.internal/triage", cfg.Storage.DatabaseURL)
}

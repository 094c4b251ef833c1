package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the triage engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Reasoner  ReasonerConfig  `yaml:"reasoner"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if c.Host == "" {
		return "127.0.0.1"
	}
	return c.Host
}

// StorageConfig selects the decision/signal storage backend once at startup.
// There is no per-call fallback between backends.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // "postgres" or "memory"
	DatabaseURL string `yaml:"database_url"`
}

// RedisConfig holds the optional sender-history cache settings.
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ReasonerConfig holds the external reasoning service (deep escalation) settings.
type ReasonerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ModelID        string `yaml:"model_id"`
	Region         string `yaml:"region"`
	MaxBatchSize   int    `yaml:"max_batch_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxTokens      int    `yaml:"max_tokens"`

	// EscalateBelowConfidence selects which composite results are worth a
	// round-trip to the reasoning service.
	EscalateBelowConfidence float64 `yaml:"escalate_below_confidence"`
}

// ScoringConfig names every threshold and weight the classifier and composite
// scorer use, so none of them is duplicated as a magic number across
// components. Defaults match production behavior.
type ScoringConfig struct {
	// Relationship classifier thresholds.
	VIPResponseRate        float64 `yaml:"vip_response_rate"`
	ImportantRate          float64 `yaml:"important_rate"`
	NoiseArchiveRate       float64 `yaml:"noise_archive_rate"`
	NoiseMinMessages       int     `yaml:"noise_min_messages"`
	OccasionalResponseRate float64 `yaml:"occasional_response_rate"`
	MinMessagesForHistory  int     `yaml:"min_messages_for_history"`

	// Composite score weights.
	BaseScore        float64 `yaml:"base_score"`
	VIPBoost         float64 `yaml:"vip_boost"`
	ImportantBoost   float64 `yaml:"important_boost"`
	OccasionalBoost  float64 `yaml:"occasional_boost"`
	InfoBoost        float64 `yaml:"info_boost"`
	NoisePenalty     float64 `yaml:"noise_penalty"`
	HistoryWeight    float64 `yaml:"history_weight"`
	TrustedBoost     float64 `yaml:"trusted_boost"`
	BlockedPenalty   float64 `yaml:"blocked_penalty"`
	StarredBoost     float64 `yaml:"starred_boost"`
	FlaggedBoost     float64 `yaml:"flagged_boost"`
	PromoPenalty     float64 `yaml:"promo_penalty"`
	PrimaryBoost     float64 `yaml:"primary_boost"`
	UrgencyBoost     float64 `yaml:"urgency_boost"`
	UnsubPenalty     float64 `yaml:"unsub_penalty"`
	MaxLearnedAdjust float64 `yaml:"max_learned_adjust"`

	// Suggested action ladder cut-offs.
	ReplyNowScore    float64 `yaml:"reply_now_score"`
	ReviewTodayScore float64 `yaml:"review_today_score"`
	ReadLaterScore   float64 `yaml:"read_later_score"`
	ArchiveScore     float64 `yaml:"archive_score"`
	AutoArchiveRate  float64 `yaml:"auto_archive_rate"`
}

// LifecycleConfig holds the confidence boundaries that drive a decision's
// initial status and the accuracy calibration buckets. The same two numbers
// serve both, which keeps calibration aligned with the lifecycle.
type LifecycleConfig struct {
	HandledConfidence   float64 `yaml:"handled_confidence"`   // >= handled
	SuggestedConfidence float64 `yaml:"suggested_confidence"` // >= suggested, else your_call
	PendingWindowHours  int     `yaml:"pending_window_hours"` // handled decisions stay reviewable this long
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file read.
// Used by tests and by callers embedding the engine.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 300
	}
	if c.Reasoner.ModelID == "" {
		c.Reasoner.ModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	if c.Reasoner.Region == "" {
		c.Reasoner.Region = "us-east-1"
	}
	if c.Reasoner.MaxBatchSize == 0 {
		c.Reasoner.MaxBatchSize = 20
	}
	if c.Reasoner.TimeoutSeconds == 0 {
		c.Reasoner.TimeoutSeconds = 30
	}
	if c.Reasoner.MaxTokens == 0 {
		c.Reasoner.MaxTokens = 4000
	}
	if c.Reasoner.EscalateBelowConfidence == 0 {
		c.Reasoner.EscalateBelowConfidence = 0.6
	}

	s := &c.Scoring
	if s.VIPResponseRate == 0 {
		s.VIPResponseRate = 0.5
	}
	if s.ImportantRate == 0 {
		s.ImportantRate = 0.6
	}
	if s.NoiseArchiveRate == 0 {
		s.NoiseArchiveRate = 0.7
	}
	if s.NoiseMinMessages == 0 {
		s.NoiseMinMessages = 5
	}
	if s.OccasionalResponseRate == 0 {
		s.OccasionalResponseRate = 0.2
	}
	if s.MinMessagesForHistory == 0 {
		s.MinMessagesForHistory = 3
	}
	if s.BaseScore == 0 {
		s.BaseScore = 50
	}
	if s.VIPBoost == 0 {
		s.VIPBoost = 40
	}
	if s.ImportantBoost == 0 {
		s.ImportantBoost = 30
	}
	if s.OccasionalBoost == 0 {
		s.OccasionalBoost = 10
	}
	if s.InfoBoost == 0 {
		s.InfoBoost = 5
	}
	if s.NoisePenalty == 0 {
		s.NoisePenalty = 35
	}
	if s.HistoryWeight == 0 {
		s.HistoryWeight = 30
	}
	if s.TrustedBoost == 0 {
		s.TrustedBoost = 15
	}
	if s.BlockedPenalty == 0 {
		s.BlockedPenalty = 50
	}
	if s.StarredBoost == 0 {
		s.StarredBoost = 20
	}
	if s.FlaggedBoost == 0 {
		s.FlaggedBoost = 15
	}
	if s.PromoPenalty == 0 {
		s.PromoPenalty = 25
	}
	if s.PrimaryBoost == 0 {
		s.PrimaryBoost = 10
	}
	if s.UrgencyBoost == 0 {
		s.UrgencyBoost = 15
	}
	if s.UnsubPenalty == 0 {
		s.UnsubPenalty = 20
	}
	if s.MaxLearnedAdjust == 0 {
		s.MaxLearnedAdjust = 15
	}
	if s.ReplyNowScore == 0 {
		s.ReplyNowScore = 75
	}
	if s.ReviewTodayScore == 0 {
		s.ReviewTodayScore = 60
	}
	if s.ReadLaterScore == 0 {
		s.ReadLaterScore = 40
	}
	if s.ArchiveScore == 0 {
		s.ArchiveScore = 25
	}
	if s.AutoArchiveRate == 0 {
		s.AutoArchiveRate = 0.8
	}

	if c.Lifecycle.HandledConfidence == 0 {
		c.Lifecycle.HandledConfidence = 0.9
	}
	if c.Lifecycle.SuggestedConfidence == 0 {
		c.Lifecycle.SuggestedConfidence = 0.6
	}
	if c.Lifecycle.PendingWindowHours == 0 {
		c.Lifecycle.PendingWindowHours = 24
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(errors.Unwrap(err)) {
		// No config file is fine; env vars and defaults carry everything.
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
		cfg.Storage.Backend = "postgres"
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Reasoner.Region = v
	}
	if v := os.Getenv("REASONER_MODEL_ID"); v != "" {
		cfg.Reasoner.ModelID = v
	}

	return cfg, nil
}

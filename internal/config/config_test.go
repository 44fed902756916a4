package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SENTINLK_CONFIG", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("EMBEDDING_URL", "")
	t.Setenv("WEATHERAPI_KEY", "")
	t.Setenv("BROADCAST_LISTEN", "")

	cfg := Load()

	if cfg.Pipeline.Interval != 60*time.Second {
		t.Fatalf("unexpected default interval: %v", cfg.Pipeline.Interval)
	}
	if cfg.Novelty.DuplicateThreshold != 0.80 {
		t.Fatalf("unexpected duplicate threshold: %v", cfg.Novelty.DuplicateThreshold)
	}
	if cfg.Novelty.CorroborationFloor != 0.60 {
		t.Fatalf("unexpected corroboration floor: %v", cfg.Novelty.CorroborationFloor)
	}
	if cfg.Scoring.RescueThreshold != 40 {
		t.Fatalf("unexpected rescue threshold: %d", cfg.Scoring.RescueThreshold)
	}
	if cfg.Classifier.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected default model: %s", cfg.Classifier.Model)
	}
	if cfg.Weather.Lat != 6.927 || cfg.Weather.Lon != 79.861 {
		t.Fatalf("unexpected default coordinates: %v,%v", cfg.Weather.Lat, cfg.Weather.Lon)
	}
	if len(cfg.Sites) != 2 {
		t.Fatalf("expected 2 default sites, got %d", len(cfg.Sites))
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	raw := `
database:
  dsn: postgres://test
pipeline:
  interval: 5m
novelty:
  duplicateThreshold: 0.9
logging:
  level: debug
sites:
  - name: Example
    scanner: rss
    endpoints:
      - name: feed
        url: https://example.org/feed.xml
    options:
      limit: "5"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SENTINLK_CONFIG", path)
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("GROQ_MODEL", "")

	cfg := Load()

	if cfg.Database.DSN != "postgres://test" {
		t.Fatalf("dsn not merged: %s", cfg.Database.DSN)
	}
	if cfg.Pipeline.Interval != 5*time.Minute {
		t.Fatalf("interval not merged: %v", cfg.Pipeline.Interval)
	}
	if cfg.Novelty.DuplicateThreshold != 0.9 {
		t.Fatalf("duplicate threshold not merged: %v", cfg.Novelty.DuplicateThreshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Novelty.CorroborationFloor != 0.60 {
		t.Fatalf("corroboration floor lost: %v", cfg.Novelty.CorroborationFloor)
	}
	if cfg.Classifier.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("classifier model lost: %s", cfg.Classifier.Model)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level not merged: %s", cfg.Logging.Level)
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Scanner != "rss" {
		t.Fatalf("sites not replaced: %+v", cfg.Sites)
	}
	if cfg.Sites[0].Options["limit"] != "5" {
		t.Fatalf("site options not parsed: %+v", cfg.Sites[0].Options)
	}
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	raw := `
database:
  dsn: postgres://from-file
classifier:
  apiKey: file-key
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SENTINLK_CONFIG", path)
	t.Setenv("DATABASE_DSN", "postgres://from-env")
	t.Setenv("GROQ_API_KEY", "env-key")
	t.Setenv("GROQ_MODEL", "llama-3.1-8b-instant")
	t.Setenv("EMBEDDING_URL", "http://localhost:8081/embed")
	t.Setenv("WEATHERAPI_KEY", "wkey")
	t.Setenv("BROADCAST_LISTEN", ":9000")

	cfg := Load()

	if cfg.Database.DSN != "postgres://from-env" {
		t.Fatalf("env dsn must win: %s", cfg.Database.DSN)
	}
	if cfg.Classifier.APIKey != "env-key" {
		t.Fatalf("env api key must win: %s", cfg.Classifier.APIKey)
	}
	if cfg.Classifier.Model != "llama-3.1-8b-instant" {
		t.Fatalf("env model must win: %s", cfg.Classifier.Model)
	}
	if cfg.Embedding.Endpoint != "http://localhost:8081/embed" {
		t.Fatalf("env embedding url must win: %s", cfg.Embedding.Endpoint)
	}
	if cfg.Weather.APIKey != "wkey" {
		t.Fatalf("env weather key must win: %s", cfg.Weather.APIKey)
	}
	if cfg.Broadcast.Listen != ":9000" {
		t.Fatalf("env listen must win: %s", cfg.Broadcast.Listen)
	}
}

func TestLoadUnreadableFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("SENTINLK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_DSN", "")

	cfg := Load()

	if cfg.Pipeline.Interval != 60*time.Second {
		t.Fatalf("missing file must keep defaults, got %v", cfg.Pipeline.Interval)
	}
	if len(cfg.Sites) != 2 {
		t.Fatalf("missing file must keep default sites, got %d", len(cfg.Sites))
	}
}

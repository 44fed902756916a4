package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "SENTINLK_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	classifierKeyEnv  = "GROQ_API_KEY"
	classifierModeEnv = "GROQ_MODEL"
	embeddingURLEnv   = "EMBEDDING_URL"
	weatherKeyEnv     = "WEATHERAPI_KEY"
	broadcastEnv      = "BROADCAST_LISTEN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Novelty    NoveltyConfig    `yaml:"novelty"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Weather    WeatherConfig    `yaml:"weather"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	Logging    LoggingConfig    `yaml:"logging"`
	Sites      []SiteConfig     `yaml:"sites"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// PipelineConfig tunes the ingestion loop.
type PipelineConfig struct {
	Interval     time.Duration `yaml:"interval"`
	SeenLinkSeed int           `yaml:"seenLinkSeed"`
	CacheWarmup  int           `yaml:"cacheWarmup"`
}

// NoveltyConfig tunes the embedding-similarity dedup window.
type NoveltyConfig struct {
	DuplicateThreshold float64 `yaml:"duplicateThreshold"`
	CorroborationFloor float64 `yaml:"corroborationFloor"`
	CacheCapacity      int     `yaml:"cacheCapacity"`
}

// ScoringConfig tunes the hybrid risk engine.
type ScoringConfig struct {
	RescueThreshold int `yaml:"rescueThreshold"`
	InfraBonus      int `yaml:"infraBonus"`
	SwarmBonus      int `yaml:"swarmBonus"`
	ScoreFloor      int `yaml:"scoreFloor"`
}

// ClassifierConfig defines how to contact the Groq chat-completions API.
type ClassifierConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// EmbeddingConfig describes the sentence-embedding inference service.
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// WeatherConfig wires the weatherapi.com ground-truth lookup.
type WeatherConfig struct {
	APIKey string  `yaml:"apiKey"`
	Lat    float64 `yaml:"lat"`
	Lon    float64 `yaml:"lon"`
}

// BroadcastConfig enables the websocket hub when Listen is set.
type BroadcastConfig struct {
	Listen string `yaml:"listen"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SiteConfig describes a single source with its scanner strategy.
type SiteConfig struct {
	Name      string            `yaml:"name"`
	Scanner   string            `yaml:"scanner"`
	Endpoints []EndpointConfig  `yaml:"endpoints"`
	Options   map[string]string `yaml:"options"`
}

// EndpointConfig holds a concrete URL to poll.
type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(classifierKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(classifierModeEnv); v != "" {
		c.Classifier.Model = v
	}

	if v := os.Getenv(embeddingURLEnv); v != "" {
		c.Embedding.Endpoint = v
	}

	if v := os.Getenv(weatherKeyEnv); v != "" {
		c.Weather.APIKey = v
	}

	if v := os.Getenv(broadcastEnv); v != "" {
		c.Broadcast.Listen = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Pipeline.Interval > 0 {
		base.Pipeline.Interval = override.Pipeline.Interval
	}
	if override.Pipeline.SeenLinkSeed > 0 {
		base.Pipeline.SeenLinkSeed = override.Pipeline.SeenLinkSeed
	}
	if override.Pipeline.CacheWarmup > 0 {
		base.Pipeline.CacheWarmup = override.Pipeline.CacheWarmup
	}

	if override.Novelty.DuplicateThreshold > 0 {
		base.Novelty.DuplicateThreshold = override.Novelty.DuplicateThreshold
	}
	if override.Novelty.CorroborationFloor > 0 {
		base.Novelty.CorroborationFloor = override.Novelty.CorroborationFloor
	}
	if override.Novelty.CacheCapacity > 0 {
		base.Novelty.CacheCapacity = override.Novelty.CacheCapacity
	}

	if override.Scoring.RescueThreshold > 0 {
		base.Scoring.RescueThreshold = override.Scoring.RescueThreshold
	}
	if override.Scoring.InfraBonus > 0 {
		base.Scoring.InfraBonus = override.Scoring.InfraBonus
	}
	if override.Scoring.SwarmBonus > 0 {
		base.Scoring.SwarmBonus = override.Scoring.SwarmBonus
	}
	if override.Scoring.ScoreFloor > 0 {
		base.Scoring.ScoreFloor = override.Scoring.ScoreFloor
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.Model != "" {
		base.Classifier.Model = override.Classifier.Model
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}

	if override.Embedding.Endpoint != "" {
		base.Embedding.Endpoint = override.Embedding.Endpoint
	}
	if override.Embedding.APIKey != "" {
		base.Embedding.APIKey = override.Embedding.APIKey
	}

	if override.Weather.APIKey != "" {
		base.Weather.APIKey = override.Weather.APIKey
	}
	if override.Weather.Lat != 0 || override.Weather.Lon != 0 {
		base.Weather.Lat = override.Weather.Lat
		base.Weather.Lon = override.Weather.Lon
	}

	if override.Broadcast.Listen != "" {
		base.Broadcast.Listen = override.Broadcast.Listen
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Pipeline: PipelineConfig{
			Interval:     60 * time.Second,
			SeenLinkSeed: 300,
			CacheWarmup:  50,
		},
		Novelty: NoveltyConfig{
			DuplicateThreshold: 0.80,
			CorroborationFloor: 0.60,
			CacheCapacity:      100,
		},
		Scoring: ScoringConfig{
			RescueThreshold: 40,
			InfraBonus:      15,
			SwarmBonus:      10,
			ScoreFloor:      10,
		},
		Classifier: ClassifierConfig{
			Endpoint: "https://api.groq.com/openai/v1/chat/completions",
			Model:    "llama-3.3-70b-versatile",
			APIKey:   "",
		},
		Embedding: EmbeddingConfig{
			Endpoint: "",
			APIKey:   "",
		},
		Weather: WeatherConfig{
			APIKey: "",
			Lat:    6.927,
			Lon:    79.861,
		},
		Broadcast: BroadcastConfig{Listen: ""},
		Logging:   LoggingConfig{Level: "info"},
		Sites: []SiteConfig{
			{
				Name:    "Ada Derana",
				Scanner: "html",
				Endpoints: []EndpointConfig{
					{Name: "hot-news", URL: "http://www.adaderana.lk/hot-news/"},
				},
			},
			{
				Name:    "Newswire",
				Scanner: "html",
				Endpoints: []EndpointConfig{
					{Name: "front", URL: "https://www.newswire.lk/"},
				},
			},
		},
	}
}

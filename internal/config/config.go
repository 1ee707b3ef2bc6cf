// Package config provides environment-driven configuration for flowgraph.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	Port           string
	ListenHost     string
	CORSOrigins    []string
	GalaxyURL      string
	GalaxyAPIKey   Secret
	OllamaURL      string
	EmbeddingModel string
	SummaryModel   string
	LogLevel       string
	EmbedWorkers   int

	// Graph assembly and community detection parameters.
	EdgeIncrement  float64
	Resolution     float64
	MaxLocalPasses int
	MaxLevels      int
}

// Load reads configuration from environment variables with sensible
// defaults. Invalid values are rejected before any processing begins; the
// returned error names the offending variable.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    Secret(envOrDefault("DATABASE_URL", "")),
		Port:           envOrDefault("PORT", "3030"),
		ListenHost:     envOrDefault("LISTEN_HOST", "127.0.0.1"),
		GalaxyURL:      envOrDefault("GALAXY_URL", ""),
		GalaxyAPIKey:   Secret(envOrDefault("GALAXY_API_KEY", "")),
		OllamaURL:      envOrDefault("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel: envOrDefault("EMBEDDING_MODEL", "qwen3-embedding:0.6b"),
		SummaryModel:   envOrDefault("SUMMARY_MODEL", "llama3.2"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
	}

	embedWorkers, err := strconv.Atoi(envOrDefault("EMBED_WORKERS", "4"))
	if err != nil || embedWorkers < 1 || embedWorkers > 16 {
		return nil, fmt.Errorf("EMBED_WORKERS must be an integer between 1 and 16")
	}
	cfg.EmbedWorkers = embedWorkers

	if cfg.EdgeIncrement, err = parsePositiveFloat("EDGE_INCREMENT", "1.0"); err != nil {
		return nil, err
	}
	if cfg.Resolution, err = parsePositiveFloat("RESOLUTION", "1.0"); err != nil {
		return nil, err
	}
	if cfg.MaxLocalPasses, err = parsePositiveInt("MAX_LOCAL_PASSES", "10"); err != nil {
		return nil, err
	}
	if cfg.MaxLevels, err = parsePositiveInt("MAX_LEVELS", "10"); err != nil {
		return nil, err
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func parsePositiveFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, v)
	}
	return v, nil
}

func parsePositiveInt(key, fallback string) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", key, v)
	}
	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

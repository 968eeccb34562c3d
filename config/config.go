package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers        = 4
	DefaultMinBlockLines  = 6
	DefaultMinTotalPoints = 1000
	DefaultMaxTotalPoints = 10000
	DefaultHTTPAddress    = ":8080"
	DefaultRateLimit      = 5.0
	DefaultRateBurst      = 10
	DefaultMaxUploadBytes = 10 << 20
	DefaultLogLevel       = "info"
)

// Config struct to hold the configuration settings
type Config struct {
	Parsing       ParsingConfig       `yaml:"parsing"`
	Server        ServerConfig        `yaml:"server"`
	Export        ExportConfig        `yaml:"export"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ParsingConfig tunes army list parsing.
type ParsingConfig struct {
	Workers        int    `yaml:"workers"`
	MinBlockLines  int    `yaml:"min_block_lines"`
	MinTotalPoints int    `yaml:"min_total_points"`
	MaxTotalPoints int    `yaml:"max_total_points"`
	Policy         string `yaml:"policy"` // best_effort|all_or_nothing
	VocabularyFile string `yaml:"vocabulary_file"`
	Timezone       string `yaml:"timezone"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address        string  `yaml:"address"`
	RateLimit      float64 `yaml:"rate_limit"`
	RateBurst      int     `yaml:"rate_burst"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
}

// ExportConfig selects where finished records go.
type ExportConfig struct {
	NDJSONPath string `yaml:"ndjson_path"`
	Publish    bool   `yaml:"publish"`
	Topic      string `yaml:"topic"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file. A missing file falls back to
// environment variables alone.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides file values with environment variables when present.
func applyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"ARMYLISTS_WORKERS", &cfg.Parsing.Workers},
		{"ARMYLISTS_MIN_BLOCK_LINES", &cfg.Parsing.MinBlockLines},
		{"ARMYLISTS_MIN_TOTAL_POINTS", &cfg.Parsing.MinTotalPoints},
		{"ARMYLISTS_MAX_TOTAL_POINTS", &cfg.Parsing.MaxTotalPoints},
		{"HTTP_RATE_BURST", &cfg.Server.RateBurst},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %v", e.key, err)
			}
			*e.dst = n
		}
	}

	if v := os.Getenv("ARMYLISTS_POLICY"); v != "" {
		cfg.Parsing.Policy = v
	}
	if v := os.Getenv("ARMYLISTS_VOCABULARY_FILE"); v != "" {
		cfg.Parsing.VocabularyFile = v
	}
	if v := os.Getenv("ARMYLISTS_TIMEZONE"); v != "" {
		cfg.Parsing.Timezone = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %v", err)
		}
		cfg.Server.RateLimit = f
	}
	if v := os.Getenv("HTTP_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_MAX_UPLOAD_BYTES value: %v", err)
		}
		cfg.Server.MaxUploadBytes = n
	}
	if v := os.Getenv("EXPORT_NDJSON_PATH"); v != "" {
		cfg.Export.NDJSONPath = v
	}
	if v := os.Getenv("EXPORT_PUBLISH"); v != "" {
		cfg.Export.Publish = v == "true"
	}
	if v := os.Getenv("EXPORT_TOPIC"); v != "" {
		cfg.Export.Topic = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Parsing.Workers <= 0 {
		c.Parsing.Workers = DefaultWorkers
	}
	if c.Parsing.MinBlockLines <= 0 {
		c.Parsing.MinBlockLines = DefaultMinBlockLines
	}
	if c.Parsing.MinTotalPoints <= 0 {
		c.Parsing.MinTotalPoints = DefaultMinTotalPoints
	}
	if c.Parsing.MaxTotalPoints <= 0 {
		c.Parsing.MaxTotalPoints = DefaultMaxTotalPoints
	}
	if c.Parsing.Policy == "" {
		c.Parsing.Policy = "best_effort"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultHTTPAddress
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = DefaultRateLimit
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = DefaultRateBurst
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = DefaultLogLevel
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	if c.Parsing.MinTotalPoints > c.Parsing.MaxTotalPoints {
		return fmt.Errorf("parsing.min_total_points (%d) exceeds parsing.max_total_points (%d)",
			c.Parsing.MinTotalPoints, c.Parsing.MaxTotalPoints)
	}
	switch strings.ToLower(c.Parsing.Policy) {
	case "best_effort", "all_or_nothing":
	default:
		return fmt.Errorf("unknown parsing.policy %q", c.Parsing.Policy)
	}
	return nil
}

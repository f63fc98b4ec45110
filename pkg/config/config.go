package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for tabulon-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (database password) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	Loader   LoaderConfig   `yaml:"loader"`
	Profile  ProfileConfig  `yaml:"profile"`
	Database DatabaseConfig `yaml:"database"`
}

// LoaderConfig controls file parsing.
type LoaderConfig struct {
	// Encodings is the ordered candidate list tried when decoding delimited
	// text. The first encoding that decodes without error wins; if all fail
	// the loader retries UTF-8 with invalid sequences replaced.
	Encodings []string `yaml:"encodings" env:"LOADER_ENCODINGS" env-default:"utf-8,latin-1,iso-8859-1,windows-1252,utf-16"`

	// LargeFileThresholdBytes is the size above which the loader prefers the
	// partition-parallel parse path.
	LargeFileThresholdBytes int64 `yaml:"large_file_threshold_bytes" env:"LOADER_LARGE_FILE_THRESHOLD_BYTES" env-default:"500000000"`
}

// ProfileConfig holds the heuristic thresholds for type inference and
// quality analysis.
type ProfileConfig struct {
	// TemporalParseThreshold is the share of originally non-null values that
	// must parse as dates for the temporal heuristic to accept a column.
	TemporalParseThreshold float64 `yaml:"temporal_parse_threshold" env:"PROFILE_TEMPORAL_PARSE_THRESHOLD" env-default:"0.5"`

	// A column is categorical when distinct/rows is below CategoricalMaxRatio
	// or the distinct count is below CategoricalMaxDistinct.
	CategoricalMaxRatio    float64 `yaml:"categorical_max_ratio" env:"PROFILE_CATEGORICAL_MAX_RATIO" env-default:"0.05"`
	CategoricalMaxDistinct int     `yaml:"categorical_max_distinct" env:"PROFILE_CATEGORICAL_MAX_DISTINCT" env-default:"50"`

	// Special-pattern detection over free-text columns.
	PatternSampleSize     int     `yaml:"pattern_sample_size" env:"PROFILE_PATTERN_SAMPLE_SIZE" env-default:"1000"`
	PatternMatchThreshold float64 `yaml:"pattern_match_threshold" env:"PROFILE_PATTERN_MATCH_THRESHOLD" env-default:"0.8"`
	PatternCacheSize      int     `yaml:"pattern_cache_size" env:"PROFILE_PATTERN_CACHE_SIZE" env-default:"1000"`

	// OutlierThreshold is the modified z-score magnitude above which a value
	// counts as an outlier.
	OutlierThreshold float64 `yaml:"outlier_threshold" env:"PROFILE_OUTLIER_THRESHOLD" env-default:"3"`

	// MaxWorkers bounds the per-column fan-out pool. 0 derives the size from
	// the CPU count.
	MaxWorkers int `yaml:"max_workers" env:"PROFILE_MAX_WORKERS" env-default:"0"`

	// Persistence chunk sizing: rows per chunk is clamped to
	// [MinChunkRows, MaxChunkRows] around available_memory * MemoryFraction
	// divided by the per-row byte estimate.
	MinChunkRows   int     `yaml:"min_chunk_rows" env:"PROFILE_MIN_CHUNK_ROWS" env-default:"1000"`
	MaxChunkRows   int     `yaml:"max_chunk_rows" env:"PROFILE_MAX_CHUNK_ROWS" env-default:"50000"`
	MemoryFraction float64 `yaml:"memory_fraction" env:"PROFILE_MEMORY_FRACTION" env-default:"0.1"`
}

// Workers resolves the worker pool size. Mirrors the upload executor
// sizing: four workers per core, capped at 32.
func (p *ProfileConfig) Workers() int {
	if p.MaxWorkers > 0 {
		return p.MaxWorkers
	}
	n := runtime.NumCPU() * 4
	if n > 32 {
		n = 32
	}
	if n < 1 {
		n = 1
	}
	return n
}

// DatabaseConfig holds PostgreSQL settings for the persistence collaborator.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"tabulon"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"tabulon_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as the migration tooling
// expects.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists, environment variables and defaults
// alone apply.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Loader.Encodings) == 0 {
		return fmt.Errorf("loader.encodings must not be empty")
	}
	if c.Profile.TemporalParseThreshold <= 0 || c.Profile.TemporalParseThreshold >= 1 {
		return fmt.Errorf("profile.temporal_parse_threshold must be in (0, 1)")
	}
	if c.Profile.MinChunkRows > c.Profile.MaxChunkRows {
		return fmt.Errorf("profile.min_chunk_rows exceeds profile.max_chunk_rows")
	}
	return nil
}

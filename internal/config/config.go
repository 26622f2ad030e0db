// Package config loads runtime settings from orgfake.yaml and ORGFAKE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds runtime settings.
type Config struct {
	// MaxRetrieveCount is the page size used when a query sets none.
	MaxRetrieveCount int

	// StorePath is the SQLite database path; ":memory:" keeps records in
	// process memory. A file path is a debugging aid for inspecting records
	// after a run: the service empties it on open, so records never carry
	// over between processes.
	StorePath string

	// MetadataDir holds CUE entity and relationship definitions. Empty
	// means no metadata.
	MetadataDir string

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// Format is the CLI output format: text or json.
	Format string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxRetrieveCount: 5000,
		StorePath:        ":memory:",
		MetadataDir:      "",
		LogLevel:         "info",
		Format:           "text",
	}
}

// Load reads orgfake.yaml from dir (when non-empty) or the working
// directory, then applies ORGFAKE_* environment overrides. A missing
// config file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("orgfake")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("ORGFAKE")
	v.AutomaticEnv()

	for _, key := range []string{"max_retrieve_count", "store_path", "metadata_dir", "log_level", "format"} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if v.IsSet("max_retrieve_count") {
		cfg.MaxRetrieveCount = v.GetInt("max_retrieve_count")
	}
	if v.IsSet("store_path") {
		cfg.StorePath = v.GetString("store_path")
	}
	if v.IsSet("metadata_dir") {
		cfg.MetadataDir = v.GetString("metadata_dir")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("format") {
		cfg.Format = v.GetString("format")
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.MaxRetrieveCount <= 0 {
		return fmt.Errorf("max_retrieve_count must be positive, got %d", c.MaxRetrieveCount)
	}
	if c.StorePath == "" {
		return errors.New("store_path must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

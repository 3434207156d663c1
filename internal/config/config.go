// Package config provides configuration management for the paper
// retrieval engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mdaehl/PaperStream/internal/observability"
)

// Output format constants.
const (
	// FormatJSON writes records as a JSON array.
	FormatJSON = "json"
	// FormatCSV writes records as comma-separated values.
	FormatCSV = "csv"
	// FormatAtom writes records as an Atom feed.
	FormatAtom = "atom"
)

// Config holds all configuration for the paper retrieval engine.
type Config struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Sources contains per-publisher source settings.
	Sources SourcesConfig `mapstructure:"sources"`
	// Feeds contains alert feed completion settings.
	Feeds FeedsConfig `mapstructure:"feeds"`
	// Output contains export settings.
	Output OutputConfig `mapstructure:"output"`
	// Strict turns partial completion failures into hard errors.
	Strict bool `mapstructure:"strict"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// Observability converts the section into logger construction options.
func (c LoggingConfig) Observability() observability.LoggingConfig {
	return observability.LoggingConfig{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		AddSource:  c.AddSource,
		TimeFormat: c.TimeFormat,
	}
}

// SourcesConfig holds configuration for all paper sources.
type SourcesConfig struct {
	// ArXiv contains arXiv export API settings.
	ArXiv SourceConfig `mapstructure:"arxiv"`
	// CVF contains CVF open access settings.
	CVF SourceConfig `mapstructure:"cvf"`
	// ECVA contains ECVA open access settings.
	ECVA SourceConfig `mapstructure:"ecva"`
	// NeurIPS contains NeurIPS proceedings settings.
	NeurIPS SourceConfig `mapstructure:"neurips"`
	// PMLR contains PMLR proceedings settings.
	PMLR SourceConfig `mapstructure:"pmlr"`
	// OpenReview contains OpenReview API settings.
	OpenReview SourceConfig `mapstructure:"openreview"`
	// IEEE contains IEEE Xplore settings.
	IEEE SourceConfig `mapstructure:"ieee"`
	// Elsevier contains Elsevier and ScienceDirect settings.
	Elsevier SourceConfig `mapstructure:"elsevier"`
	// Springer contains SpringerLink settings.
	Springer SourceConfig `mapstructure:"springer"`
	// Nature contains nature.com settings.
	Nature SourceConfig `mapstructure:"nature"`
}

// SourceConfig holds configuration for a single paper source.
type SourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g.
	// PAPERSTREAM_SOURCES_IEEE_API_KEY). Sources without a key fall
	// back to scraping.
	APIKey string `mapstructure:"-"`
	// BaseURL overrides the source's endpoint.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for requests to the source.
	Timeout time.Duration `mapstructure:"timeout"`
	// MinInterval is the minimum spacing between requests.
	MinInterval time.Duration `mapstructure:"min_interval"`
	// RequestBudget caps requests per run. Zero means unlimited.
	RequestBudget int `mapstructure:"request_budget"`
}

// FeedsConfig holds alert feed completion settings.
type FeedsConfig struct {
	// Dir is the directory holding alert feed XML files.
	Dir string `mapstructure:"dir"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	// Dir is the directory exported files are written to.
	Dir string `mapstructure:"dir"`
	// Format is the export format (json, csv, atom).
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PAPERSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paperstream")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment
// variables. A missing key is not an error; the affected source falls
// back to its scrape strategy.
func loadSecrets(cfg *Config) {
	cfg.Sources.IEEE.APIKey = os.Getenv("PAPERSTREAM_SOURCES_IEEE_API_KEY")
	cfg.Sources.Elsevier.APIKey = os.Getenv("PAPERSTREAM_SOURCES_ELSEVIER_API_KEY")
	cfg.Sources.Springer.APIKey = os.Getenv("PAPERSTREAM_SOURCES_SPRINGER_API_KEY")

	// Nature is served by the Springer Nature API and shares its key
	// unless one is set explicitly.
	cfg.Sources.Nature.APIKey = os.Getenv("PAPERSTREAM_SOURCES_NATURE_API_KEY")
	if cfg.Sources.Nature.APIKey == "" {
		cfg.Sources.Nature.APIKey = cfg.Sources.Springer.APIKey
	}
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Source defaults. API keys are loaded exclusively from
	// environment variables (see loadSecrets).
	for _, source := range []string{
		"arxiv", "cvf", "ecva", "neurips", "pmlr",
		"openreview", "ieee", "elsevier", "springer", "nature",
	} {
		v.SetDefault("sources."+source+".enabled", true)
		v.SetDefault("sources."+source+".timeout", "30s")
	}
	v.SetDefault("sources.arxiv.min_interval", "3s")
	// The free IEEE Xplore tier allows 200 calls per day.
	v.SetDefault("sources.ieee.request_budget", 200)

	// Feed defaults
	v.SetDefault("feeds.dir", "feeds")

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", FormatJSON)

	v.SetDefault("strict", false)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch strings.ToLower(c.Output.Format) {
	case FormatJSON, FormatCSV, FormatAtom:
	default:
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}

	for name, source := range map[string]SourceConfig{
		"arxiv":      c.Sources.ArXiv,
		"cvf":        c.Sources.CVF,
		"ecva":       c.Sources.ECVA,
		"neurips":    c.Sources.NeurIPS,
		"pmlr":       c.Sources.PMLR,
		"openreview": c.Sources.OpenReview,
		"ieee":       c.Sources.IEEE,
		"elsevier":   c.Sources.Elsevier,
		"springer":   c.Sources.Springer,
		"nature":     c.Sources.Nature,
	} {
		if source.Timeout < 0 {
			return fmt.Errorf("source %s: timeout must not be negative", name)
		}
		if source.MinInterval < 0 {
			return fmt.Errorf("source %s: min_interval must not be negative", name)
		}
		if source.RequestBudget < 0 {
			return fmt.Errorf("source %s: request_budget must not be negative", name)
		}
	}

	return nil
}

// Package config holds the harvester's file configuration: worker limits,
// retry policy, extraction overrides, output paths and the journal list.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sanpo/journalfed/fetch"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/scraper"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidConcurrency       = errors.New("harvest.concurrency must be at least 1")
	ErrInvalidFetchTimeout      = errors.New("harvest.fetch_timeout must be positive")
	ErrInvalidMaxAttempts       = errors.New("harvest.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("harvest.retry.initial_delay must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("harvest.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidMaxArticles       = errors.New("extract.max_articles must be non-negative")
	ErrMissingOutputPath        = errors.New("output.json is required")
	ErrSourceMissingID          = errors.New("source id is required")
	ErrSourceMissingURL         = errors.New("source url is required")
	ErrSourceDuplicateID        = errors.New("source id is duplicated")
	ErrSourceInvalidMode        = errors.New("source mode must be one of: html, jstage_api, feed")
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete configuration file.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Harvest HarvestConfig `yaml:"harvest"`
	// Extract overrides individual fields of scraper.DefaultExtractConfig.
	Extract scraper.ExtractConfig `yaml:"extract"`
	Output  OutputConfig          `yaml:"output"`
	// Sources replaces the built-in journal list when non-empty.
	Sources []journal.SourceConfig `yaml:"sources"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HarvestConfig bounds a harvest run.
type HarvestConfig struct {
	Concurrency  int               `yaml:"concurrency"`
	FetchTimeout time.Duration     `yaml:"fetch_timeout"`
	UserAgent    string            `yaml:"user_agent"`
	Retry        fetch.RetryPolicy `yaml:"retry"`
}

// OutputConfig names where results go. Empty HTML and Database disable
// those outputs.
type OutputConfig struct {
	JSON     string `yaml:"json"`
	HTML     string `yaml:"html"`
	Database string `yaml:"database"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Harvest: HarvestConfig{
			Concurrency:  4,
			FetchTimeout: 30 * time.Second,
			Retry:        fetch.DefaultRetryPolicy(),
		},
		Output: OutputConfig{JSON: "data/articles.json"},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return ErrInvalidLogLevel
	}

	if c.Harvest.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.Harvest.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.Harvest.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Harvest.Retry.InitialDelay < 0 {
		return ErrInvalidInitialDelay
	}
	if c.Harvest.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Extract.MaxArticles < 0 {
		return ErrInvalidMaxArticles
	}

	if c.Output.JSON == "" {
		return ErrMissingOutputPath
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.ID == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingID, i)
		}
		if src.URL == "" && src.APIURL == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingURL, i)
		}
		switch src.EffectiveMode() {
		case journal.ModeHTML, journal.ModeJStageAPI, journal.ModeFeed:
		default:
			return fmt.Errorf("%w: sources[%d]", ErrSourceInvalidMode, i)
		}
		if seen[src.ID] {
			return fmt.Errorf("%w: sources[%d] %q", ErrSourceDuplicateID, i, src.ID)
		}
		seen[src.ID] = true
	}

	return nil
}

// SourceList returns the configured journals, or the built-in list when
// none are configured.
func (c *Config) SourceList() []journal.SourceConfig {
	if len(c.Sources) == 0 {
		return journal.DefaultSources()
	}
	return c.Sources
}

// ExtractConfig returns the default extraction configuration with the
// file's overrides applied.
func (c *Config) ExtractConfig() scraper.ExtractConfig {
	return scraper.DefaultExtractConfig().Merge(c.Extract)
}

// FetchConfig returns the fetch client configuration for this file.
func (c *Config) FetchConfig(logger *slog.Logger) fetch.Config {
	return fetch.Config{
		Timeout:   c.Harvest.FetchTimeout,
		UserAgent: c.Harvest.UserAgent,
		Retry:     c.Harvest.Retry,
		Logger:    logger,
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sanpo/journalfed/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "journalfed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_NoFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

// TestLoad_NoFile verifies Load falls back to the defaults
func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate(), "defaults should be valid")
}

func TestLoadFile_ValidConfig(t *testing.T) {
	path := writeConfig(t, `logging:
  level: debug
harvest:
  concurrency: 8
  fetch_timeout: 10s
  user_agent: "journalfed/1.0"
  retry:
    max_attempts: 3
    initial_delay: 250ms
    max_delay: 2s
    backoff_multiplier: 2
extract:
  max_articles: 5
  item_selectors: [".toc-entry"]
output:
  json: out/articles.json
  html: out/index.html
  database: out/sources.db
sources:
  - id: indhealth
    name: Industrial Health
    publisher: JNIOSH
    url: https://www.jstage.jst.go.jp/browse/indhealth/-char/ja
    color: "#0066cc"
  - id: jaohl
    name: JAOHL
    url: https://www.jstage.jst.go.jp/browse/jaohl/-char/ja
    mode: jstage_api
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Harvest.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Harvest.FetchTimeout)
	assert.Equal(t, "journalfed/1.0", cfg.Harvest.UserAgent)
	assert.Equal(t, 3, cfg.Harvest.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Harvest.Retry.InitialDelay)
	assert.Equal(t, "out/index.html", cfg.Output.HTML)
	assert.Equal(t, "out/sources.db", cfg.Output.Database)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "indhealth", cfg.Sources[0].ID)
	assert.Equal(t, "#0066cc", cfg.Sources[0].Color)
	assert.Equal(t, journal.ModeJStageAPI, cfg.Sources[1].Mode)
	assert.Equal(t, cfg.Sources, cfg.SourceList())
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `harvest:
  - this is invalid yaml because harvest should be an object not a list
`)

	cfg, err := LoadFile(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFile_PartialConfig(t *testing.T) {
	path := writeConfig(t, `harvest:
  concurrency: 2
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 2, cfg.Harvest.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Harvest.FetchTimeout, "Unspecified fields should keep defaults")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/articles.json", cfg.Output.JSON)
	assert.Equal(t, journal.DefaultSources(), cfg.SourceList(), "No sources should mean the built-in list")
}

// TestLoadFile_InvalidConfig verifies validation errors surface from LoadFile
func TestLoadFile_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `harvest:
  concurrency: 0
`)

	cfg, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidConcurrency)
	assert.Nil(t, cfg)
}

// TestValidate verifies each validation rule
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"concurrency", func(c *Config) { c.Harvest.Concurrency = 0 }, ErrInvalidConcurrency},
		{"fetch timeout", func(c *Config) { c.Harvest.FetchTimeout = 0 }, ErrInvalidFetchTimeout},
		{"max attempts", func(c *Config) { c.Harvest.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"initial delay", func(c *Config) { c.Harvest.Retry.InitialDelay = -time.Second }, ErrInvalidInitialDelay},
		{"backoff", func(c *Config) { c.Harvest.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"max articles", func(c *Config) { c.Extract.MaxArticles = -1 }, ErrInvalidMaxArticles},
		{"output", func(c *Config) { c.Output.JSON = "" }, ErrMissingOutputPath},
		{"source id", func(c *Config) { c.Sources = []journal.SourceConfig{{URL: "https://example.org"}} }, ErrSourceMissingID},
		{"source url", func(c *Config) { c.Sources = []journal.SourceConfig{{ID: "a"}} }, ErrSourceMissingURL},
		{"source mode", func(c *Config) {
			c.Sources = []journal.SourceConfig{{ID: "a", URL: "https://example.org", Mode: "pdf"}}
		}, ErrSourceInvalidMode},
		{"duplicate id", func(c *Config) {
			c.Sources = []journal.SourceConfig{{ID: "a", URL: "https://example.org/1"}, {ID: "a", URL: "https://example.org/2"}}
		}, ErrSourceDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

// TestValidate_SourceIndex verifies source errors name the offending entry
func TestValidate_SourceIndex(t *testing.T) {
	cfg := Default()
	cfg.Sources = []journal.SourceConfig{{ID: "a", URL: "https://example.org"}, {ID: "b"}}

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrSourceMissingURL)
	assert.Contains(t, err.Error(), "sources[1]")
}

// TestExtractConfig verifies file overrides are merged onto the defaults
func TestExtractConfig(t *testing.T) {
	cfg := Default()
	cfg.Extract.MaxArticles = 5
	cfg.Extract.EtAlSuffix = " et al."

	ec := cfg.ExtractConfig()

	assert.Equal(t, 5, ec.MaxArticles)
	assert.Equal(t, " et al.", ec.EtAlSuffix)
	assert.Equal(t, 100, ec.MaxTitleLength, "unset fields keep their defaults")
	assert.NotEmpty(t, ec.ItemSelectors)
}

// TestFetchConfig verifies harvest settings reach the fetch client
func TestFetchConfig(t *testing.T) {
	cfg := Default()
	cfg.Harvest.UserAgent = "journalfed/1.0"

	fc := cfg.FetchConfig(nil)

	assert.Equal(t, 30*time.Second, fc.Timeout)
	assert.Equal(t, "journalfed/1.0", fc.UserAgent)
	assert.Equal(t, 2, fc.Retry.MaxAttempts)
}

package sources

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sanpo/journalfed/journal"
)

// Custom errors for source operations
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrDuplicateID    = errors.New("source with this ID already exists")
	ErrDuplicateURL   = errors.New("source with this URL already exists")
	ErrMissingID      = errors.New("source id is required")
	ErrMissingURL     = errors.New("source url is required")
	ErrInvalidMode    = errors.New("mode must be html, jstage_api, or feed")
)

// SourceStore keeps the tracked journals and the outcome of their last fetch
// in SQLite.
type SourceStore struct {
	db *sql.DB
}

// Source is a tracked journal together with its fetch bookkeeping.
type Source struct {
	journal.SourceConfig
	Position        int        `json:"position"`
	EnabledAt       *time.Time `json:"enabled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	FetchErrorCount int        `json:"fetch_error_count"`
	LastError       *string    `json:"last_error,omitempty"`
	LastIssue       *string    `json:"last_issue,omitempty"`
	ArticleCount    int        `json:"article_count"`
}

// IsEnabled returns true if the source takes part in harvests.
func (s *Source) IsEnabled() bool {
	return s.EnabledAt != nil
}

// SourceUpdate represents fields that can be updated on a source.
type SourceUpdate struct {
	Name           *string
	Publisher      *string
	URL            *string
	BaseURL        *string
	Description    *string
	Color          *string
	Mode           *string
	APIURL         *string
	EnabledAt      *time.Time
	ClearEnabledAt bool // Set to true to set enabled_at to NULL
}

// SourceFilter represents filtering options for listing sources.
type SourceFilter struct {
	Enabled *bool // Filter by enabled status
	Limit   int   // Pagination limit
	Offset  int   // Pagination offset
}

// FetchStatus is the outcome of one harvest of a source. An empty Error
// means the fetch succeeded.
type FetchStatus struct {
	FetchedAt    time.Time
	Error        string
	Issue        string
	ArticleCount int
}

// NewSourceStore creates a new source store with the given database path.
func NewSourceStore(dbPath string) (*SourceStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SourceStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the sources table if it doesn't exist.
func (s *SourceStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		source_id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		publisher TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL UNIQUE,
		base_url TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT 'html',
		api_url TEXT NOT NULL DEFAULT '',
		enabled_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		last_fetched_at TEXT,
		fetch_error_count INTEGER DEFAULT 0,
		last_error TEXT,
		last_issue TEXT,
		article_count INTEGER DEFAULT 0
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SourceStore) Close() error {
	return s.db.Close()
}

// CreateSource adds a journal after the existing ones.
func (s *SourceStore) CreateSource(cfg journal.SourceConfig, enabledAt *time.Time) (*Source, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	var position int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(position), 0) + 1 FROM sources").Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to allocate position: %w", err)
	}

	now := time.Now()
	source := &Source{
		SourceConfig: cfg,
		Position:     position,
		EnabledAt:    enabledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	source.Mode = cfg.EffectiveMode()

	query := `
		INSERT INTO sources (
			source_id, position, name, publisher, url, base_url, description,
			color, mode, api_url, enabled_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		source.ID,
		source.Position,
		source.Name,
		source.Publisher,
		source.URL,
		source.BaseURL,
		source.Description,
		source.Color,
		source.Mode,
		source.APIURL,
		formatTime(source.EnabledAt),
		formatTime(&source.CreatedAt),
		formatTime(&source.UpdatedAt),
	)
	if err != nil {
		return nil, constraintError(err, "failed to insert source")
	}

	return source, nil
}

const selectColumns = `
	SELECT source_id, position, name, publisher, url, base_url, description,
	       color, mode, api_url, enabled_at, created_at, updated_at,
	       last_fetched_at, fetch_error_count, last_error, last_issue, article_count
	FROM sources
`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetSource retrieves a source by ID.
func (s *SourceStore) GetSource(id string) (*Source, error) {
	source, err := scanSource(s.db.QueryRow(selectColumns+" WHERE source_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}
	return source, nil
}

// ListSources lists sources in harvest order with optional filtering.
func (s *SourceStore) ListSources(filter SourceFilter) ([]Source, error) {
	query := selectColumns

	if filter.Enabled != nil {
		if *filter.Enabled {
			query += " WHERE enabled_at IS NOT NULL"
		} else {
			query += " WHERE enabled_at IS NULL"
		}
	}

	query += " ORDER BY position ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *source)
	}

	return sources, rows.Err()
}

// EnabledConfigs returns the configuration of every enabled source in
// harvest order.
func (s *SourceStore) EnabledConfigs() ([]journal.SourceConfig, error) {
	enabled := true
	sources, err := s.ListSources(SourceFilter{Enabled: &enabled})
	if err != nil {
		return nil, err
	}

	configs := make([]journal.SourceConfig, 0, len(sources))
	for _, src := range sources {
		configs = append(configs, src.SourceConfig)
	}
	return configs, nil
}

// UpdateSource updates a source with the provided fields.
func (s *SourceStore) UpdateSource(id string, update SourceUpdate) error {
	setClauses := []string{"updated_at = ?"}
	now := time.Now()
	args := []any{formatTime(&now)}

	set := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, column+" = ?")
			args = append(args, *value)
		}
	}
	set("name", update.Name)
	set("publisher", update.Publisher)
	set("url", update.URL)
	set("base_url", update.BaseURL)
	set("description", update.Description)
	set("color", update.Color)
	set("api_url", update.APIURL)

	if update.Mode != nil {
		if !validMode(*update.Mode) {
			return ErrInvalidMode
		}
		set("mode", update.Mode)
	}
	if update.ClearEnabledAt {
		setClauses = append(setClauses, "enabled_at = ?")
		args = append(args, nil)
	} else if update.EnabledAt != nil {
		setClauses = append(setClauses, "enabled_at = ?")
		args = append(args, formatTime(update.EnabledAt))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE sources SET %s WHERE source_id = ?",
		strings.Join(setClauses, ", "))

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return constraintError(err, "failed to update source")
	}
	return requireRow(result)
}

// DeleteSource deletes a source.
func (s *SourceStore) DeleteSource(id string) error {
	result, err := s.db.Exec("DELETE FROM sources WHERE source_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return requireRow(result)
}

// Import creates or updates the given journals in one transaction. Existing
// sources keep their fetch status and enabled state; new ones are enabled
// and appended in the order given. It returns how many sources were new.
func (s *SourceStore) Import(configs []journal.SourceConfig) (int, error) {
	for i, cfg := range configs {
		if err := validateConfig(cfg); err != nil {
			return 0, fmt.Errorf("sources[%d]: %w", i, err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRow("SELECT COALESCE(MAX(position), 0) FROM sources").Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to allocate position: %w", err)
	}

	ts := time.Now()
	now := formatTime(&ts)
	created := 0
	for _, cfg := range configs {
		result, err := tx.Exec(`
			UPDATE sources SET name = ?, publisher = ?, url = ?, base_url = ?,
			       description = ?, color = ?, mode = ?, api_url = ?, updated_at = ?
			WHERE source_id = ?`,
			cfg.Name, cfg.Publisher, cfg.URL, cfg.BaseURL, cfg.Description,
			cfg.Color, cfg.EffectiveMode(), cfg.APIURL, now, cfg.ID)
		if err != nil {
			return 0, constraintError(err, "failed to update source "+cfg.ID)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			continue
		}

		position++
		_, err = tx.Exec(`
			INSERT INTO sources (
				source_id, position, name, publisher, url, base_url, description,
				color, mode, api_url, enabled_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.ID, position, cfg.Name, cfg.Publisher, cfg.URL, cfg.BaseURL,
			cfg.Description, cfg.Color, cfg.EffectiveMode(), cfg.APIURL, now, now, now)
		if err != nil {
			return 0, constraintError(err, "failed to insert source "+cfg.ID)
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return created, nil
}

// RecordFetch stores the outcome of a harvest. A successful fetch resets
// the error count; a failed one increments it and keeps the previous issue
// label and article count.
func (s *SourceStore) RecordFetch(id string, status FetchStatus) error {
	fetchedAt := status.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	var (
		result sql.Result
		err    error
	)
	if status.Error == "" {
		result, err = s.db.Exec(`
			UPDATE sources SET last_fetched_at = ?, fetch_error_count = 0,
			       last_error = NULL, last_issue = ?, article_count = ?
			WHERE source_id = ?`,
			formatTime(&fetchedAt), status.Issue, status.ArticleCount, id)
	} else {
		result, err = s.db.Exec(`
			UPDATE sources SET last_fetched_at = ?,
			       fetch_error_count = fetch_error_count + 1, last_error = ?
			WHERE source_id = ?`,
			formatTime(&fetchedAt), status.Error, id)
	}
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return requireRow(result)
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	var createdAtStr, updatedAtStr string
	var enabledAtStr, lastFetchedAtStr, lastError, lastIssue sql.NullString

	err := row.Scan(
		&source.ID, &source.Position, &source.Name, &source.Publisher,
		&source.URL, &source.BaseURL, &source.Description, &source.Color,
		&source.Mode, &source.APIURL, &enabledAtStr, &createdAtStr, &updatedAtStr,
		&lastFetchedAtStr, &source.FetchErrorCount, &lastError, &lastIssue,
		&source.ArticleCount,
	)
	if err != nil {
		return nil, err
	}

	source.CreatedAt = parseTime(createdAtStr)
	source.UpdatedAt = parseTime(updatedAtStr)

	// Parse optional timestamps
	if enabledAtStr.Valid {
		t := parseTime(enabledAtStr.String)
		source.EnabledAt = &t
	}
	if lastFetchedAtStr.Valid {
		t := parseTime(lastFetchedAtStr.String)
		source.LastFetchedAt = &t
	}

	// Parse optional strings
	if lastError.Valid {
		source.LastError = &lastError.String
	}
	if lastIssue.Valid {
		source.LastIssue = &lastIssue.String
	}

	return &source, nil
}

func validateConfig(cfg journal.SourceConfig) error {
	switch {
	case strings.TrimSpace(cfg.ID) == "":
		return ErrMissingID
	case strings.TrimSpace(cfg.URL) == "":
		return ErrMissingURL
	case !validMode(cfg.EffectiveMode()):
		return ErrInvalidMode
	}
	return nil
}

func validMode(mode string) bool {
	switch mode {
	case journal.ModeHTML, journal.ModeJStageAPI, journal.ModeFeed:
		return true
	}
	return false
}

func constraintError(err error, msg string) error {
	text := err.Error()
	if strings.Contains(text, "UNIQUE constraint") || strings.Contains(text, "unique constraint") {
		if strings.Contains(text, "sources.url") {
			return ErrDuplicateURL
		}
		return ErrDuplicateID
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	// Strip monotonic clock for consistent comparisons
	return t.Truncate(0)
}

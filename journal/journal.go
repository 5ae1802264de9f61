package journal

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Source modes select how a fetched page is turned into records.
const (
	ModeHTML      = "html"
	ModeJStageAPI = "jstage_api"
	ModeFeed      = "feed"
)

// SourceConfig identifies one tracked journal and where to read it from.
type SourceConfig struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Publisher   string `json:"publisher" yaml:"publisher"`
	URL         string `json:"url" yaml:"url"`
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url"`
	Description string `json:"description,omitempty" yaml:"description"`
	Color       string `json:"color,omitempty" yaml:"color"`
	// Mode is "html" (the default), "jstage_api" or "feed".
	Mode string `json:"mode,omitempty" yaml:"mode"`
	// APIURL is fetched instead of URL by the non-html modes.
	APIURL string `json:"api_url,omitempty" yaml:"api_url"`
}

// EffectiveMode returns the source mode, defaulting to ModeHTML.
func (s SourceConfig) EffectiveMode() string {
	if s.Mode == "" {
		return ModeHTML
	}
	return s.Mode
}

// FetchURL returns the URL the harvester should retrieve for this source.
func (s SourceConfig) FetchURL() string {
	switch s.EffectiveMode() {
	case ModeJStageAPI:
		if s.APIURL != "" {
			return s.APIURL
		}
		return JStageAPIURL(s.ID)
	case ModeFeed:
		if s.APIURL != "" {
			return s.APIURL
		}
	}
	return s.URL
}

// Origin returns scheme://host of BaseURL, or of URL when BaseURL is empty.
// Relative article links are resolved against it. Returns "" when neither
// parses as an absolute URL.
func (s SourceConfig) Origin() string {
	raw := s.BaseURL
	if raw == "" {
		raw = s.URL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ArticleRecord is one extracted article. Title is always non-empty; Authors
// and Link are empty when they could not be derived.
type ArticleRecord struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Link    string `json:"link"`
}

// JournalRecord is the per-source outcome of one harvest run.
type JournalRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Publisher   string          `json:"publisher"`
	Color       string          `json:"color,omitempty"`
	URL         string          `json:"url"`
	Description string          `json:"description,omitempty"`
	LatestIssue string          `json:"latest_issue"`
	Articles    []ArticleRecord `json:"articles"`
}

// NewJournalRecord builds a record for src. A nil articles slice is stored
// as an empty one so the JSON form is always an array.
func NewJournalRecord(src SourceConfig, issue string, articles []ArticleRecord) JournalRecord {
	if articles == nil {
		articles = []ArticleRecord{}
	}
	return JournalRecord{
		ID:          src.ID,
		Name:        src.Name,
		Publisher:   src.Publisher,
		Color:       src.Color,
		URL:         src.URL,
		Description: src.Description,
		LatestIssue: issue,
		Articles:    articles,
	}
}

// IsEmpty reports whether the record carries no data for its source.
func (r JournalRecord) IsEmpty() bool {
	return r.LatestIssue == "" && len(r.Articles) == 0
}

// HarvestResult is everything one run produced, with journals in source
// configuration order.
type HarvestResult struct {
	RunID     uuid.UUID       `json:"run_id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Journals  []JournalRecord `json:"journals"`
}

// NewHarvestResult stamps a new run.
func NewHarvestResult(journals []JournalRecord) *HarvestResult {
	if journals == nil {
		journals = []JournalRecord{}
	}
	return &HarvestResult{
		RunID:     uuid.New(),
		UpdatedAt: time.Now(),
		Journals:  journals,
	}
}

// Find returns the journal with the given ID.
func (r *HarvestResult) Find(id string) (JournalRecord, bool) {
	for _, j := range r.Journals {
		if j.ID == id {
			return j, true
		}
	}
	return JournalRecord{}, false
}

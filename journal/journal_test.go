package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOrigin_DerivedFromURL verifies origin falls back to the listing URL
func TestOrigin_DerivedFromURL(t *testing.T) {
	src := SourceConfig{URL: "https://www.jstage.jst.go.jp/browse/indhealth/-char/ja"}

	assert.Equal(t, "https://www.jstage.jst.go.jp", src.Origin())
}

// TestOrigin_PrefersBaseURL verifies an explicit base URL wins
func TestOrigin_PrefersBaseURL(t *testing.T) {
	src := SourceConfig{
		URL:     "https://listing.example.com/toc",
		BaseURL: "https://example.org/some/path",
	}

	assert.Equal(t, "https://example.org", src.Origin())
}

// TestOrigin_Unparsable verifies relative URLs give no origin
func TestOrigin_Unparsable(t *testing.T) {
	assert.Empty(t, SourceConfig{URL: "/relative/only"}.Origin())
	assert.Empty(t, SourceConfig{}.Origin())
}

// TestFetchURL_ByMode verifies which URL each mode retrieves
func TestFetchURL_ByMode(t *testing.T) {
	html := SourceConfig{ID: "x", URL: "https://example.org/toc"}
	assert.Equal(t, "https://example.org/toc", html.FetchURL())
	assert.Equal(t, ModeHTML, html.EffectiveMode())

	api := SourceConfig{ID: "indhealth", URL: "https://example.org/toc", Mode: ModeJStageAPI}
	assert.True(t, strings.HasPrefix(api.FetchURL(), "https://api.jstage.jst.go.jp/searchapi/do?"))
	assert.Contains(t, api.FetchURL(), "cdjournal=indhealth")

	feed := SourceConfig{URL: "https://example.org/toc", Mode: ModeFeed, APIURL: "https://example.org/rss"}
	assert.Equal(t, "https://example.org/rss", feed.FetchURL())

	feedNoAPI := SourceConfig{URL: "https://example.org/rss.xml", Mode: ModeFeed}
	assert.Equal(t, "https://example.org/rss.xml", feedNoAPI.FetchURL())
}

// TestNewJournalRecord_NilArticles verifies articles serialise as an array
func TestNewJournalRecord_NilArticles(t *testing.T) {
	rec := NewJournalRecord(SourceConfig{ID: "a", Name: "A"}, "", nil)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"articles":[]`)
	assert.Contains(t, string(data), `"latest_issue":""`)
	assert.True(t, rec.IsEmpty())
}

// TestDefaultSources verifies the built-in journal list
func TestDefaultSources(t *testing.T) {
	sources := DefaultSources()

	require.Len(t, sources, 6)
	seen := map[string]bool{}
	for _, src := range sources {
		assert.NotEmpty(t, src.Name)
		assert.Equal(t, "https://www.jstage.jst.go.jp", src.Origin())
		assert.False(t, seen[src.ID], "duplicate id %s", src.ID)
		seen[src.ID] = true
	}
}

// TestSaveLoadResult verifies a saved result can be read back
func TestSaveLoadResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "articles.json")
	result := NewHarvestResult([]JournalRecord{
		NewJournalRecord(SourceConfig{ID: "a", Name: "産業衛生学雑誌"}, "2024年 61巻 3号", []ArticleRecord{
			{Title: "職場のストレス調査", Authors: "山田 太郎 他", Link: "https://example.org/article/1"},
		}),
	})

	require.NoError(t, SaveResult(path, result))

	loaded, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, loaded.RunID)
	assert.True(t, result.UpdatedAt.Equal(loaded.UpdatedAt))
	assert.Equal(t, result.Journals, loaded.Journals)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

// TestLoadResult_Missing verifies the sentinel for an absent file
func TestLoadResult_Missing(t *testing.T) {
	_, err := LoadResult(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNoResult)
}

// TestLoadResult_Corrupt verifies invalid JSON is reported
func TestLoadResult_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadResult(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse harvest result")
}

// TestHarvestResult_Find verifies lookup by journal ID
func TestHarvestResult_Find(t *testing.T) {
	result := NewHarvestResult([]JournalRecord{{ID: "a"}, {ID: "b", Name: "B"}})

	rec, ok := result.Find("b")
	require.True(t, ok)
	assert.Equal(t, "B", rec.Name)

	_, ok = result.Find("zzz")
	assert.False(t, ok)
}

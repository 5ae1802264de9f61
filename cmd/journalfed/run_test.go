package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reopenStore opens the registry at path again; the command under test must
// have released it.
func reopenStore(t *testing.T, path string) *sources.SourceStore {
	t.Helper()
	store, err := sources.NewSourceStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestRunSourcesCommand_AddAndDelete verifies actions persist and the
// registry is usable after each run
func TestRunSourcesCommand_AddAndDelete(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sources.db")
	configPath := filepath.Join(dir, "missing.yaml")

	err := runSourcesCommand("add", configPath, dbPath, []string{
		"--id", "sangyoeisei",
		"--name", "産業衛生学雑誌",
		"--url", "https://www.jstage.jst.go.jp/browse/sangyoeisei/-char/ja",
	})
	require.NoError(t, err)

	source, err := reopenStore(t, dbPath).GetSource("sangyoeisei")
	require.NoError(t, err)
	assert.Equal(t, "産業衛生学雑誌", source.Name)
	assert.True(t, source.IsEnabled())

	require.NoError(t, runSourcesCommand("disable", configPath, dbPath, []string{"sangyoeisei"}))
	require.NoError(t, runSourcesCommand("delete", configPath, dbPath, []string{"sangyoeisei"}))

	_, err = reopenStore(t, dbPath).GetSource("sangyoeisei")
	assert.ErrorIs(t, err, sources.ErrSourceNotFound)
}

// TestRunSourcesCommand_Errors verifies failures come back as errors
func TestRunSourcesCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sources.db")
	configPath := filepath.Join(dir, "missing.yaml")

	err := runSourcesCommand("show", configPath, dbPath, nil)
	assert.ErrorIs(t, err, errSourceIDRequired)

	err = runSourcesCommand("frobnicate", configPath, dbPath, nil)
	assert.ErrorIs(t, err, errUnknownSourcesCmd)

	err = runSourcesCommand("show", configPath, dbPath, []string{"nope"})
	assert.ErrorIs(t, err, sources.ErrSourceNotFound)

	err = runSourcesCommand("list", configPath, "", nil)
	assert.ErrorIs(t, err, errNoDatabase)
}

// TestRunHarvest_WritesResultAndRecordsStatus verifies a run through the
// registry writes the result and leaves the fetch status readable
func TestRunHarvest_WritesResultAndRecordsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body>
			<div class="search-resultslabel">2024年 61巻 3号</div>
			<ul><li class="search-list-article">
				<a class="title" href="/article/1/_article">職域における睡眠衛生の実態調査</a>
				<div class="article-author">佐藤 花子</div>
			</li></ul>
		</body></html>`)
	}))
	defer server.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sources.db")
	outPath := filepath.Join(dir, "articles.json")
	configPath := filepath.Join(dir, "journalfed.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
logging:
  level: error
output:
  json: %s
sources:
  - id: testj
    name: テスト学会誌
    url: %s/browse/testj
`, outPath, server.URL)), 0o644))

	err := runHarvest(configPath, dbPath, []string{"--format", "json"})
	require.NoError(t, err)

	result, err := journal.LoadResult(outPath)
	require.NoError(t, err)
	require.Len(t, result.Journals, 1)
	assert.Equal(t, "2024年 61巻 3号", result.Journals[0].LatestIssue)
	require.Len(t, result.Journals[0].Articles, 1)

	source, err := reopenStore(t, dbPath).GetSource("testj")
	require.NoError(t, err)
	require.NotNil(t, source.LastIssue)
	assert.Equal(t, "2024年 61巻 3号", *source.LastIssue)
	assert.Equal(t, 1, source.ArticleCount)
}

// TestRunHarvest_InvalidConfig verifies a bad config file is an error, not an exit
func TestRunHarvest_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "journalfed.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("harvest:\n  concurrency: 0\n"), 0o644))

	err := runHarvest(configPath, "", nil)
	assert.Error(t, err)
}

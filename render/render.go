// Package render writes a HarvestResult as a static HTML page.
package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sanpo/journalfed/journal"
)

const articlesPage = `<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>最新記事</title>
  <style>
    body { font-family: sans-serif; max-width: 960px; margin: 0 auto; padding: 24px; color: #1f2937; }
    .updated { font-size: 0.75rem; color: #9ca3af; margin-bottom: 32px; }
    .journal-section { background: #f9fafb; border-radius: 16px; padding: 24px; margin-bottom: 20px; }
    .journal-header { border-left: 4px solid var(--journal-color, #6366f1); padding-left: 12px; margin-bottom: 16px; }
    .journal-header h2 { font-size: 1rem; margin: 0 0 2px; }
    .journal-header h2 a { color: inherit; text-decoration: none; }
    .publisher, .issue { font-size: 0.8rem; color: #6b7280; margin: 0; }
    .article-item { display: block; padding: 14px 18px; background: white; border-radius: 10px; margin-bottom: 2px; text-decoration: none; color: inherit; }
    .article-title { font-size: 0.9rem; margin-bottom: 4px; }
    .article-meta { font-size: 0.8rem; color: #6b7280; }
    .empty { text-align: center; color: #9ca3af; }
  </style>
</head>
<body>
  <main>
    <h1>最新記事</h1>
    <p>各学術誌の最新論文</p>
    <div class="updated">Last updated: {{ .Updated }}</div>
{{- range .Journals }}
    <div class="journal-section" id="{{ .ID }}"{{ with .Color }} style="--journal-color: {{ . }}"{{ end }}>
      <div class="journal-header">
        <h2><a href="{{ .URL }}" target="_blank">{{ .Name }}</a></h2>
        <p class="publisher">{{ .Publisher }}</p>
        {{- with .LatestIssue }}
        <p class="issue">{{ . }}</p>
        {{- end }}
      </div>
      <div class="article-list">
      {{- range .Articles }}
        <a href="{{ or .Link "#" }}" target="_blank" class="article-item">
          <div class="article-title">{{ .Title }}</div>
          {{- with .Authors }}
          <div class="article-meta">{{ . }}</div>
          {{- end }}
        </a>
      {{- else }}
        <div class="article-item empty">データなし</div>
      {{- end }}
      </div>
    </div>
{{- end }}
  </main>
</body>
</html>
`

var pageTemplate = template.Must(template.New("articles").Parse(articlesPage))

type pageData struct {
	Updated  string
	Journals []journal.JournalRecord
}

// WriteArticlesPage renders the article listing for result. Journals without
// articles are shown as having no data.
func WriteArticlesPage(w io.Writer, result *journal.HarvestResult) error {
	data := pageData{
		Updated:  result.UpdatedAt.Format(time.DateTime),
		Journals: result.Journals,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render articles page: %w", err)
	}
	return nil
}

// WriteArticlesFile renders the article listing to path, creating parent
// directories as needed.
func WriteArticlesFile(path string, result *journal.HarvestResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteArticlesPage(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

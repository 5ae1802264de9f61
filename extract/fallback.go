package extract

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sanpo/journalfed/journal"
)

// FallbackExtract scans every anchor of the document whose href looks like
// an article link and turns it into a record. It is used only when no item
// container pattern matched. Titles shorter than MinFallbackTitleLength and
// titles already emitted in this pass are skipped without counting toward
// max. Authors come from the nearest enclosing block container and are cut
// to FallbackAuthorLength. A max of zero or less means no cap.
func (e *Extractor) FallbackExtract(doc *Document, origin string, max int) []journal.ArticleRecord {
	articles := []journal.ArticleRecord{}
	seen := make(map[string]struct{})

	doc.FindMatcher(e.anchor).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || (e.articlePath != nil && !e.articlePath.MatchString(href)) {
			return true
		}

		title := nodeText(a)
		if utf8.RuneCountInString(title) < e.cfg.MinFallbackTitleLength || title == "" {
			return true
		}
		if _, dup := seen[title]; dup {
			return true
		}
		seen[title] = struct{}{}

		articles = append(articles, journal.ArticleRecord{
			Title:   truncateRunes(title, e.cfg.MaxTitleLength),
			Authors: e.fallbackAuthors(a),
			Link:    ResolveLink(href, origin),
		})

		return max <= 0 || len(articles) < max
	})

	return articles
}

func (e *Extractor) fallbackAuthors(a *goquery.Selection) string {
	if e.fallbackAuthor == nil || e.containers == nil {
		return ""
	}
	container := a.Parent().ClosestMatcher(e.containers)
	if container.Length() == 0 {
		return ""
	}
	text := nodeText(container.FindMatcher(e.fallbackAuthor).First())
	return truncateRunes(text, e.cfg.FallbackAuthorLength)
}

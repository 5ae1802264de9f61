package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sanpo/journalfed/journal"
)

// ExtractFields derives title, link and authors from one item container.
// Missing link or authors become empty strings; the boolean is false when
// the item has no usable title and must be dropped.
func (e *Extractor) ExtractFields(item *goquery.Selection, origin string) (journal.ArticleRecord, bool) {
	var rec journal.ArticleRecord

	anchor := e.titleAnchor(item)
	if anchor.Length() == 0 {
		return rec, false
	}

	title := nodeText(anchor)
	if title == "" || utf8.RuneCountInString(title) < e.cfg.MinTitleLength {
		return rec, false
	}
	rec.Title = truncateRunes(title, e.cfg.MaxTitleLength)

	href, _ := anchor.Attr("href")
	rec.Link = ResolveLink(href, origin)

	if e.author != nil {
		rec.Authors = e.shortenAuthors(nodeText(item.FindMatcher(e.author).First()))
	}

	return rec, true
}

func (e *Extractor) titleAnchor(item *goquery.Selection) *goquery.Selection {
	if e.title != nil {
		if a := item.FindMatcher(e.title).First(); a.Length() > 0 {
			return a
		}
	}
	return item.FindMatcher(e.anchor).First()
}

// shortenAuthors keeps author text within MaxAuthorLength by reducing a
// delimited list to its first name plus the et-al suffix. Text that cannot
// be split is returned untouched even when it is over the limit.
func (e *Extractor) shortenAuthors(text string) string {
	if text == "" || e.cfg.MaxAuthorLength <= 0 || utf8.RuneCountInString(text) <= e.cfg.MaxAuthorLength {
		return text
	}

	segments := []string{text}
	for _, d := range e.cfg.AuthorDelimiters {
		if d == "" {
			continue
		}
		var next []string
		for _, seg := range segments {
			next = append(next, strings.Split(seg, d)...)
		}
		segments = next
	}
	if len(segments) < 2 {
		return text
	}

	// A leading delimiter leaves the first segment empty; the first name is
	// the first segment with any text in it.
	for _, seg := range segments {
		if name := strings.TrimSpace(seg); name != "" {
			return name + e.cfg.EtAlSuffix
		}
	}
	return strings.TrimSpace(e.cfg.EtAlSuffix)
}

// ResolveLink turns an anchor href into an absolute URL. Absolute http(s)
// hrefs are returned as they are; relative ones are resolved against origin.
// An empty or unusable href, or a relative href without an origin, gives "".
func ResolveLink(href, origin string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		if ref.Scheme == "http" || ref.Scheme == "https" {
			return ref.String()
		}
		return ""
	}

	if origin == "" {
		return ""
	}
	base, err := url.Parse(origin)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

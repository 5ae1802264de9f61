package extract

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/sanpo/journalfed/journal"
)

// Feed extracts records from an RSS or Atom table-of-contents feed. gofeed
// detects the format. Author lists are shortened with the same rule as HTML
// listings; the issue label comes from prism volume/number elements of the
// first item when the publisher provides them.
func (e *Extractor) Feed(body []byte) (Result, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse feed: %w", err)
	}

	res := Result{
		Articles: []journal.ArticleRecord{},
		Strategy: StrategyFeed,
	}
	if len(feed.Items) > 0 {
		res.Issue = feedIssue(feed.Items[0])
	}

	for _, item := range feed.Items {
		if max := e.cfg.MaxArticles; max > 0 && len(res.Articles) >= max {
			break
		}

		title := normalizeSpace(item.Title)
		if title == "" || utf8.RuneCountInString(title) < e.cfg.MinTitleLength {
			continue
		}

		res.Articles = append(res.Articles, journal.ArticleRecord{
			Title:   truncateRunes(title, e.cfg.MaxTitleLength),
			Authors: e.shortenAuthors(strings.Join(feedAuthors(item), ", ")),
			Link:    ResolveLink(item.Link, ""),
		})
	}

	return res, nil
}

// feedAuthors collects names from the Atom/RSS author elements and Dublin
// Core creators, without duplicates.
func feedAuthors(item *gofeed.Item) []string {
	var names []string
	add := func(name string) {
		if name = normalizeSpace(name); name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	for _, p := range item.Authors {
		if p != nil {
			add(p.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, c := range item.DublinCoreExt.Creator {
			add(c)
		}
	}
	return names
}

func feedIssue(item *gofeed.Item) string {
	prism := item.Extensions["prism"]
	var year string
	if item.PublishedParsed != nil {
		year = strconv.Itoa(item.PublishedParsed.Year())
	} else if date := extValue(prism, "publicationDate"); len(date) >= 4 {
		year = date[:4]
	}
	return issueLabel(year, extValue(prism, "volume"), extValue(prism, "number"))
}

func extValue(exts map[string][]ext.Extension, name string) string {
	if vals := exts[name]; len(vals) > 0 {
		return strings.TrimSpace(vals[0].Value)
	}
	return ""
}

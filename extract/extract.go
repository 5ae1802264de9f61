// Package extract turns journal listing pages into article records without
// knowing their markup in advance. Each concern (issue label, item
// containers, fields) is handled by an ordered chain of structural patterns
// tried until one matches, with a whole-document scan of article links as
// the last resort.
package extract

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/scraper"
)

// Errors returned while building an Extractor.
var (
	ErrInvalidSelector = errors.New("invalid selector")
	ErrInvalidPattern  = errors.New("invalid pattern")
)

// Strategy names reported in Result.Strategy.
const (
	StrategyFallback  = "fallback"
	StrategyJStageAPI = "jstage_api"
	StrategyFeed      = "feed"
)

// Result is what one page yielded.
type Result struct {
	Issue    string
	Articles []journal.ArticleRecord
	// Strategy names the item selector that matched, or StrategyFallback
	// when the whole-document scan was used.
	Strategy string
}

// Empty reports whether nothing at all was extracted.
func (r Result) Empty() bool {
	return r.Issue == "" && len(r.Articles) == 0
}

type pattern struct {
	raw string
	sel cascadia.Selector
}

// Extractor holds a compiled ExtractConfig. It has no mutable state and is
// safe for concurrent use.
type Extractor struct {
	cfg scraper.ExtractConfig

	issue        []pattern
	issuePattern *regexp.Regexp
	items        []pattern

	title          cascadia.Selector
	anchor         cascadia.Selector
	author         cascadia.Selector
	fallbackAuthor cascadia.Selector
	containers     cascadia.Selector
	articlePath    *regexp.Regexp
}

// New compiles cfg. Every selector and regular expression is validated up
// front so a bad override fails at startup rather than silently matching
// nothing.
func New(cfg scraper.ExtractConfig) (*Extractor, error) {
	e := &Extractor{cfg: cfg}
	var err error

	if e.issue, err = compileList(cfg.IssueSelectors); err != nil {
		return nil, err
	}
	if e.items, err = compileList(cfg.ItemSelectors); err != nil {
		return nil, err
	}
	if e.title, err = compileGroup(cfg.TitleSelectors); err != nil {
		return nil, err
	}
	if e.author, err = compileGroup(cfg.AuthorSelectors); err != nil {
		return nil, err
	}
	if e.containers, err = compileGroup(cfg.FallbackContainers); err != nil {
		return nil, err
	}
	if cfg.FallbackAuthorSelector != "" {
		if e.fallbackAuthor, err = compile(cfg.FallbackAuthorSelector); err != nil {
			return nil, err
		}
	}
	if e.anchor, err = compile("a"); err != nil {
		return nil, err
	}

	if cfg.IssuePattern != "" {
		if e.issuePattern, err = regexp.Compile(cfg.IssuePattern); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, cfg.IssuePattern, err)
		}
	}
	if cfg.ArticlePathPattern != "" {
		if e.articlePath, err = regexp.Compile(cfg.ArticlePathPattern); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, cfg.ArticlePathPattern, err)
		}
	}

	return e, nil
}

// MustNew is like New but panics if cfg does not compile.
func MustNew(cfg scraper.ExtractConfig) *Extractor {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns an Extractor for scraper.DefaultExtractConfig.
func Default() *Extractor {
	return MustNew(scraper.DefaultExtractConfig())
}

// Config returns the configuration e was built from.
func (e *Extractor) Config() scraper.ExtractConfig {
	return e.cfg
}

// HTML parses a listing page and extracts from it. Relative links are
// resolved against origin.
func (e *Extractor) HTML(r io.Reader, origin string) (Result, error) {
	doc, err := NewDocument(r)
	if err != nil {
		return Result{}, err
	}
	return e.Extract(doc, origin), nil
}

// Extract runs the full cascade over doc: issue label, then item containers
// with per-item field extraction, or the whole-document fallback when no
// item pattern matches.
func (e *Extractor) Extract(doc *Document, origin string) Result {
	res := Result{
		Issue:    e.DetectIssue(doc),
		Articles: []journal.ArticleRecord{},
	}

	items, matched := e.LocateItems(doc)
	if items.Length() == 0 {
		res.Strategy = StrategyFallback
		res.Articles = e.FallbackExtract(doc, origin, e.cfg.MaxArticles)
		return res
	}

	res.Strategy = matched
	if max := e.cfg.MaxArticles; max > 0 && items.Length() > max {
		items = items.Slice(0, max)
	}
	items.Each(func(_ int, item *goquery.Selection) {
		if rec, ok := e.ExtractFields(item, origin); ok {
			res.Articles = append(res.Articles, rec)
		}
	})

	return res
}

func compile(sel string) (cascadia.Selector, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, sel, err)
	}
	return s, nil
}

func compileList(sels []string) ([]pattern, error) {
	out := make([]pattern, 0, len(sels))
	for _, raw := range sels {
		s, err := compile(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{raw: raw, sel: s})
	}
	return out, nil
}

// compileGroup compiles sels as one selector group, so matches come back in
// document order regardless of which member matched. A nil selector is
// returned for an empty list.
func compileGroup(sels []string) (cascadia.Selector, error) {
	if len(sels) == 0 {
		return nil, nil
	}
	return compile(strings.Join(sels, ", "))
}

package extract

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the read-only view of a parsed listing page that the
// extraction strategies work against.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses HTML from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// NewDocumentFromBytes parses an HTML page held in memory.
func NewDocumentFromBytes(body []byte) (*Document, error) {
	return NewDocument(bytes.NewReader(body))
}

// Root returns the selection holding the document node.
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// Find returns every node matching the CSS selector, in document order.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// FindMatcher is Find for a precompiled selector.
func (d *Document) FindMatcher(m goquery.Matcher) *goquery.Selection {
	return d.doc.FindMatcher(m)
}

// TextNodes yields the trimmed, non-empty text nodes of the document in
// document order. Text inside script, style, noscript and template elements
// is not page text and is skipped.
func (d *Document) TextNodes() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, root := range d.doc.Nodes {
			if !walkText(root, yield) {
				return
			}
		}
	}
}

func walkText(n *html.Node, yield func(string) bool) bool {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			return yield(text)
		}
		return true
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return true
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkText(c, yield) {
			return false
		}
	}
	return true
}

// nodeText returns the visible text of s with runs of whitespace collapsed
// to single spaces.
func nodeText(s *goquery.Selection) string {
	return normalizeSpace(s.Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

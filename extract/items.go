package extract

import "github.com/PuerkitoBio/goquery"

// LocateItems returns the article containers of the page together with the
// selector that found them. Item selectors are tried strictly in priority
// order and the first one matching at least one node wins; results of
// different selectors are never combined. An empty selection and "" are
// returned when nothing matches.
func (e *Extractor) LocateItems(doc *Document) (*goquery.Selection, string) {
	for _, p := range e.items {
		if items := doc.FindMatcher(p.sel); items.Length() > 0 {
			return items, p.raw
		}
	}
	return doc.Root().Slice(0, 0), ""
}

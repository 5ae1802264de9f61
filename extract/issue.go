package extract

// DetectIssue returns the issue label of the page, or "" when none can be
// found. Structural issue containers are tried first, in configured order;
// when none yields text, the text nodes of the document are scanned for the
// year/volume/number pattern and the first match is returned verbatim.
func (e *Extractor) DetectIssue(doc *Document) string {
	for _, p := range e.issue {
		if text := nodeText(doc.FindMatcher(p.sel).First()); text != "" {
			return text
		}
	}

	if e.issuePattern == nil {
		return ""
	}
	for text := range doc.TextNodes() {
		if m := e.issuePattern.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

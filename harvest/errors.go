package harvest

import (
	"errors"
	"fmt"
)

// Kind classifies why a source produced an empty record.
type Kind string

const (
	// KindTransport means the page could not be retrieved: a network error,
	// a non-2xx status or the per-source timeout.
	KindTransport Kind = "transport"
	// KindEmptyExtraction means the page was fetched but no item pattern and
	// no fallback anchor produced an article.
	KindEmptyExtraction Kind = "empty_extraction"
	// KindParse means the body could not be decoded for the source's mode.
	KindParse Kind = "parse"
)

// Sentinels wrapped by SourceError.Err, one per Kind.
var (
	ErrTransportFailure = errors.New("transport failure")
	ErrEmptyExtraction  = errors.New("no articles extracted")
	ErrParseFailure     = errors.New("parse failure")
)

// SourceError records why one source came back empty. It never aborts a
// harvest.
type SourceError struct {
	Source string
	Kind   Kind
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

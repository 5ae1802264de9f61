// Package harvest runs the extraction cascade over every configured journal
// concurrently and assembles the results in configuration order. A source
// that cannot be fetched or yields nothing degrades to an empty record; no
// single source can fail a run.
package harvest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sanpo/journalfed/extract"
	"github.com/sanpo/journalfed/fetch"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/sources"
)

// Fetcher retrieves a page. fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// StatusRecorder receives the outcome of each source once it is done.
// sources.SourceStore implements it.
type StatusRecorder interface {
	RecordFetch(id string, status sources.FetchStatus) error
}

// Harvester fetches and extracts a set of sources with bounded concurrency.
type Harvester struct {
	fetcher      Fetcher
	extractor    *extract.Extractor
	recorder     StatusRecorder
	logger       *slog.Logger
	concurrency  int
	fetchTimeout time.Duration
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithConcurrency bounds the number of sources processed at once.
func WithConcurrency(n int) Option {
	return func(h *Harvester) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// WithFetchTimeout bounds the fetch and extraction of a single source.
func WithFetchTimeout(d time.Duration) Option {
	return func(h *Harvester) {
		if d > 0 {
			h.fetchTimeout = d
		}
	}
}

// WithExtractor replaces the default extraction configuration.
func WithExtractor(e *extract.Extractor) Option {
	return func(h *Harvester) {
		if e != nil {
			h.extractor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harvester) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStatusRecorder reports every source outcome to r.
func WithStatusRecorder(r StatusRecorder) Option {
	return func(h *Harvester) {
		h.recorder = r
	}
}

// New creates a Harvester. Defaults: 4 concurrent sources, 30s per source,
// extract.Default(), no logging, no status recording.
func New(fetcher Fetcher, opts ...Option) *Harvester {
	h := &Harvester{
		fetcher:      fetcher,
		extractor:    extract.Default(),
		logger:       slog.New(slog.DiscardHandler),
		concurrency:  4,
		fetchTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Harvest processes srcs and returns one record per source in the order
// given, along with the failures that emptied some of them. Cancelling ctx
// stops sources that have not started; they come back as empty records.
func (h *Harvester) Harvest(ctx context.Context, srcs []journal.SourceConfig) (*journal.HarvestResult, []SourceError) {
	start := time.Now()
	records := make([]journal.JournalRecord, len(srcs))
	failures := make([]*SourceError, len(srcs))

	semaphore := make(chan struct{}, h.concurrency)
	var wg sync.WaitGroup

	h.logger.Info("harvest starting", "sources", len(srcs), "concurrency", h.concurrency)

dispatch:
	for i, src := range srcs {
		select {
		case <-ctx.Done():
			for j := i; j < len(srcs); j++ {
				records[j] = journal.NewJournalRecord(srcs[j], "", nil)
				failures[j] = &SourceError{
					Source: srcs[j].ID,
					Kind:   KindTransport,
					Err:    fmt.Errorf("%w: %w", ErrTransportFailure, ctx.Err()),
				}
			}
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, src journal.SourceConfig) {
			defer wg.Done()
			defer func() { <-semaphore }()

			records[i], failures[i] = h.harvestSource(ctx, src)
		}(i, src)
	}

	wg.Wait()

	var errs []SourceError
	for _, f := range failures {
		if f != nil {
			errs = append(errs, *f)
		}
	}

	h.logger.Info("harvest finished",
		"sources", len(srcs),
		"failed", len(errs),
		"duration", time.Since(start))

	return journal.NewHarvestResult(records), errs
}

// harvestSource fetches and extracts one source under its own timeout.
func (h *Harvester) harvestSource(parent context.Context, src journal.SourceConfig) (journal.JournalRecord, *SourceError) {
	ctx, cancel := context.WithTimeout(parent, h.fetchTimeout)
	defer cancel()

	start := time.Now()
	url := src.FetchURL()
	logger := h.logger.With("source", src.ID, "url", url)

	res, serr := h.extractSource(ctx, src, url)
	if serr != nil {
		res = extract.Result{Issue: res.Issue}
		logger.Warn("source degraded to empty record",
			"kind", serr.Kind,
			"err", serr.Err,
			"issue_kept", !res.Empty())
	} else {
		logger.Info("source harvested",
			"strategy", res.Strategy,
			"issue", res.Issue,
			"articles", len(res.Articles),
			"duration", time.Since(start))
	}

	h.record(logger, src.ID, res, serr)
	return journal.NewJournalRecord(src, res.Issue, res.Articles), serr
}

func (h *Harvester) extractSource(ctx context.Context, src journal.SourceConfig, url string) (extract.Result, *SourceError) {
	page, err := h.fetcher.Fetch(ctx, url)
	if err != nil {
		return extract.Result{}, &SourceError{
			Source: src.ID,
			Kind:   KindTransport,
			Err:    fmt.Errorf("%w: %w", ErrTransportFailure, err),
		}
	}

	var res extract.Result
	switch mode := src.EffectiveMode(); mode {
	case journal.ModeHTML:
		res, err = h.extractor.HTML(bytes.NewReader(page.Body), src.Origin())
	case journal.ModeJStageAPI:
		res, err = h.extractor.JStageAPI(page.Body)
	case journal.ModeFeed:
		res, err = h.extractor.Feed(page.Body)
	default:
		err = fmt.Errorf("unknown source mode %q", mode)
	}
	if err != nil {
		return extract.Result{}, &SourceError{
			Source: src.ID,
			Kind:   KindParse,
			Err:    fmt.Errorf("%w: %w", ErrParseFailure, err),
		}
	}

	// A deadline hit during extraction still counts as a timed-out task.
	if err := ctx.Err(); err != nil {
		return extract.Result{}, &SourceError{
			Source: src.ID,
			Kind:   KindTransport,
			Err:    fmt.Errorf("%w: %w", ErrTransportFailure, err),
		}
	}

	if len(res.Articles) == 0 {
		return res, &SourceError{
			Source: src.ID,
			Kind:   KindEmptyExtraction,
			Err:    ErrEmptyExtraction,
		}
	}
	return res, nil
}

func (h *Harvester) record(logger *slog.Logger, id string, res extract.Result, serr *SourceError) {
	if h.recorder == nil {
		return
	}

	status := sources.FetchStatus{
		FetchedAt:    time.Now(),
		Issue:        res.Issue,
		ArticleCount: len(res.Articles),
	}
	if serr != nil && serr.Kind != KindEmptyExtraction {
		status.Error = serr.Err.Error()
	}

	if err := h.recorder.RecordFetch(id, status); err != nil && !errors.Is(err, sources.ErrSourceNotFound) {
		logger.Error("failed to record fetch status", "err", err)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanpo/journalfed/config"
	"github.com/sanpo/journalfed/extract"
	"github.com/sanpo/journalfed/fetch"
	"github.com/sanpo/journalfed/harvest"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/logger"
	"github.com/sanpo/journalfed/render"
	"github.com/sanpo/journalfed/sources"
)

func handleHarvest(configPath, dbPath string, args []string) {
	if err := runHarvest(configPath, dbPath, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runHarvest harvests every enabled journal and writes the result. The
// source registry, when one is configured, is closed before it returns.
func runHarvest(configPath, dbPath string, args []string) error {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	output := fs.String("output", "", "Path of the JSON result (default: output.json from config)")
	htmlPath := fs.String("html", "", "Also render a static HTML page to this path")
	concurrency := fs.Int("concurrency", 0, "Sources fetched at once (default: harvest.concurrency from config)")
	timeout := fs.Duration("timeout", 0, "Timeout per source (default: harvest.fetch_timeout from config)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	format := fs.String("format", "table", "Summary format: table or json")
	fs.Parse(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if *output != "" {
		cfg.Output.JSON = *output
	}
	if *htmlPath != "" {
		cfg.Output.HTML = *htmlPath
	}
	if *concurrency > 0 {
		cfg.Harvest.Concurrency = *concurrency
	}
	if *timeout > 0 {
		cfg.Harvest.FetchTimeout = *timeout
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if dbPath == "" {
		dbPath = cfg.Output.Database
	}

	log := logger.New(cfg.Logging.Level)

	extractor, err := extract.New(cfg.ExtractConfig())
	if err != nil {
		return fmt.Errorf("invalid extract configuration: %w", err)
	}
	extractCfg := extractor.Config()
	log.Debug("extract configuration",
		"item_selectors", extractCfg.ItemSelectors,
		"max_articles", extractCfg.MaxArticles,
		"max_title_length", extractCfg.MaxTitleLength,
		"max_author_length", extractCfg.MaxAuthorLength)

	opts := []harvest.Option{
		harvest.WithConcurrency(cfg.Harvest.Concurrency),
		harvest.WithFetchTimeout(cfg.Harvest.FetchTimeout),
		harvest.WithExtractor(extractor),
		harvest.WithLogger(log),
	}

	srcs := cfg.SourceList()
	if dbPath != "" {
		store, err := sources.NewSourceStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open source store: %w", err)
		}
		defer store.Close()

		srcs, err = registrySources(store, srcs)
		if err != nil {
			return err
		}
		opts = append(opts, harvest.WithStatusRecorder(store))
	}

	if len(srcs) == 0 {
		fmt.Println("No enabled sources.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	fetcher := fetch.New(cfg.FetchConfig(log))
	start := time.Now()
	result, failures := harvest.New(fetcher, opts...).Harvest(ctx, srcs)

	if err := journal.SaveResult(cfg.Output.JSON, result); err != nil {
		return err
	}
	if cfg.Output.HTML != "" {
		if err := render.WriteArticlesFile(cfg.Output.HTML, result); err != nil {
			return err
		}
	}

	switch *format {
	case "json":
		printResultJSON(result)
	default:
		printResultTable(result)
		fmt.Println()
		fmt.Printf("Harvested %d journals in %s (%d degraded)\n",
			len(result.Journals), time.Since(start).Round(time.Millisecond), len(failures))
		for _, f := range failures {
			fmt.Printf("  - %s: %s: %v\n", f.Source, f.Kind, f.Err)
		}
		fmt.Printf("✓ Wrote %s\n", cfg.Output.JSON)
		if cfg.Output.HTML != "" {
			fmt.Printf("✓ Wrote %s\n", cfg.Output.HTML)
		}
	}
	return nil
}

// registrySources returns the enabled sources from the registry, seeding it
// with fallback the first time it is used.
func registrySources(store *sources.SourceStore, fallback []journal.SourceConfig) ([]journal.SourceConfig, error) {
	existing, err := store.ListSources(sources.SourceFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	if len(existing) == 0 {
		if _, err := store.Import(fallback); err != nil {
			return nil, fmt.Errorf("failed to seed source registry: %w", err)
		}
	}

	srcs, err := store.EnabledConfigs()
	if err != nil {
		return nil, fmt.Errorf("failed to load enabled sources: %w", err)
	}
	return srcs, nil
}

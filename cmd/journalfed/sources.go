package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sanpo/journalfed/config"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/sources"
)

var (
	errNoDatabase        = errors.New("no source database configured (set JOURNALFED_DB or output.database)")
	errSourceIDRequired  = errors.New("source ID is required")
	errUnknownSourcesCmd = errors.New("unknown sources command")
)

func handleSourcesCommand(action, configPath, dbPath string, args []string) {
	if err := runSourcesCommand(action, configPath, dbPath, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUnknownSourcesCmd) {
			fmt.Fprintln(os.Stderr)
			printSourcesUsage()
		}
		os.Exit(1)
	}
}

// runSourcesCommand opens the registry, runs one action and closes the
// registry before returning.
func runSourcesCommand(action, configPath, dbPath string, args []string) error {
	if dbPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dbPath = cfg.Output.Database
	}
	if dbPath == "" {
		return errNoDatabase
	}

	store, err := sources.NewSourceStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer store.Close()

	switch action {
	case "list":
		return handleSourcesList(store, args)
	case "show":
		return handleSourcesShow(store, args)
	case "add":
		return handleSourcesAdd(store, args)
	case "delete":
		return handleSourcesDelete(store, args)
	case "enable":
		return handleSourcesEnable(store, args)
	case "disable":
		return handleSourcesDisable(store, args)
	case "import":
		return handleSourcesImport(store, configPath, args)
	case "help", "--help", "-h":
		printSourcesUsage()
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownSourcesCmd, action)
	}
}

func printSourcesUsage() {
	fmt.Println("journalfed sources -- Manage the journal registry")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  journalfed sources <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List all journals")
	fmt.Println("  show       Show a journal and its last fetch")
	fmt.Println("  add        Add a journal")
	fmt.Println("  delete     Delete a journal")
	fmt.Println("  enable     Enable a journal")
	fmt.Println("  disable    Disable a journal")
	fmt.Println("  import     Import journals from the config file, or the built-in list")
	fmt.Println("  help       Show this help message")
}

func handleSourcesList(store *sources.SourceStore, args []string) error {
	fs := flag.NewFlagSet("sources list", flag.ExitOnError)
	enabledOnly := fs.Bool("enabled", false, "Only list enabled journals")
	fs.Parse(args)

	filter := sources.SourceFilter{}
	if *enabledOnly {
		enabled := true
		filter.Enabled = &enabled
	}

	sourceList, err := store.ListSources(filter)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sourceList) == 0 {
		fmt.Println("No sources configured.")
		return nil
	}

	// Print table header
	fmt.Printf("%s %s %s %s %s\n", pad("ID", 14), pad("MODE", 10), pad("NAME", 36), pad("STATUS", 9), "LAST ISSUE")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	for _, source := range sourceList {
		status := "enabled"
		if !source.IsEnabled() {
			status = "disabled"
		}
		if source.FetchErrorCount > 0 {
			status = fmt.Sprintf("errors:%d", source.FetchErrorCount)
		}
		issue := "-"
		if source.LastIssue != nil && *source.LastIssue != "" {
			issue = *source.LastIssue
		}

		fmt.Printf("%s %s %s %s %s\n",
			pad(source.ID, 14),
			pad(source.Mode, 10),
			pad(source.Name, 36),
			pad(status, 9),
			issue,
		)
	}
	return nil
}

func handleSourcesShow(store *sources.SourceStore, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: journalfed sources show <source-id>\n")
		return errSourceIDRequired
	}

	source, err := store.GetSource(args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println(source.Name)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Publisher:   %s\n", source.Publisher)
	fmt.Printf("Mode:        %s\n", source.Mode)
	fmt.Printf("URL:         %s\n", source.URL)
	if fetchURL := source.FetchURL(); fetchURL != source.URL {
		fmt.Printf("Fetch URL:   %s\n", fetchURL)
	}
	if origin := source.Origin(); origin != "" {
		fmt.Printf("Link Origin: %s\n", origin)
	}
	fmt.Println()

	if source.EnabledAt != nil {
		fmt.Printf("Status:      ✓ Enabled (since %s)\n", source.EnabledAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Status:      ✗ Disabled")
	}
	fmt.Println()

	fmt.Println("Last Harvest:")
	if source.LastFetchedAt != nil {
		fmt.Printf("  Fetched:         %s\n", source.LastFetchedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("  Fetched:         Never")
	}
	if source.LastIssue != nil {
		fmt.Printf("  Issue:           %s\n", *source.LastIssue)
	}
	fmt.Printf("  Articles:        %d\n", source.ArticleCount)
	fmt.Printf("  Error Count:     %d\n", source.FetchErrorCount)
	if source.LastError != nil {
		fmt.Printf("  Last Error:      %s\n", *source.LastError)
	} else {
		fmt.Println("  Last Error:      None")
	}
	fmt.Println()

	fmt.Printf("Created:     %s\n", source.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:     %s\n", source.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func handleSourcesAdd(store *sources.SourceStore, args []string) error {
	fs := flag.NewFlagSet("sources add", flag.ExitOnError)
	id := fs.String("id", "", "Journal ID (for J-STAGE, the journal code)")
	name := fs.String("name", "", "Journal name")
	publisher := fs.String("publisher", "", "Publisher")
	url := fs.String("url", "", "Listing page URL")
	baseURL := fs.String("base-url", "", "Origin for resolving relative links (default: from --url)")
	mode := fs.String("mode", journal.ModeHTML, "Mode: html, jstage_api or feed")
	apiURL := fs.String("api-url", "", "URL fetched by the jstage_api and feed modes")
	color := fs.String("color", "", "Display colour")
	disabled := fs.Bool("disabled", false, "Add the journal disabled")
	fs.Parse(args)

	if *id == "" || *url == "" || *name == "" {
		fs.Usage()
		return errors.New("--id, --name and --url are required")
	}

	var enabledAt *time.Time
	if !*disabled {
		now := time.Now()
		enabledAt = &now
	}

	source, err := store.CreateSource(journal.SourceConfig{
		ID:        *id,
		Name:      *name,
		Publisher: *publisher,
		URL:       *url,
		BaseURL:   *baseURL,
		Mode:      *mode,
		APIURL:    *apiURL,
		Color:     *color,
	}, enabledAt)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	fmt.Printf("✓ Created source: %s\n", source.ID)
	fmt.Printf("  Name: %s\n", source.Name)
	fmt.Printf("  Mode: %s\n", source.Mode)
	fmt.Printf("  URL: %s\n", source.URL)
	return nil
}

func handleSourcesDelete(store *sources.SourceStore, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: journalfed sources delete <source-id>\n")
		return errSourceIDRequired
	}

	if err := store.DeleteSource(args[0]); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	fmt.Printf("✓ Deleted source: %s\n", args[0])
	return nil
}

func handleSourcesEnable(store *sources.SourceStore, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: journalfed sources enable <source-id>\n")
		return errSourceIDRequired
	}

	source, err := store.GetSource(args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	if source.EnabledAt != nil {
		fmt.Printf("Source is already enabled (enabled at: %s)\n", source.EnabledAt.Format("2006-01-02 15:04:05"))
		return nil
	}

	now := time.Now()
	if err := store.UpdateSource(source.ID, sources.SourceUpdate{EnabledAt: &now}); err != nil {
		return fmt.Errorf("failed to enable source: %w", err)
	}

	fmt.Printf("✓ Enabled source: %s\n", source.Name)
	return nil
}

func handleSourcesDisable(store *sources.SourceStore, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: journalfed sources disable <source-id>\n")
		return errSourceIDRequired
	}

	source, err := store.GetSource(args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	if source.EnabledAt == nil {
		fmt.Println("Source is already disabled")
		return nil
	}

	if err := store.UpdateSource(source.ID, sources.SourceUpdate{ClearEnabledAt: true}); err != nil {
		return fmt.Errorf("failed to disable source: %w", err)
	}

	fmt.Printf("✓ Disabled source: %s\n", source.Name)
	return nil
}

func handleSourcesImport(store *sources.SourceStore, configPath string, args []string) error {
	fs := flag.NewFlagSet("sources import", flag.ExitOnError)
	builtin := fs.Bool("defaults", false, "Import the built-in journal list instead of the config file's")
	fs.Parse(args)

	srcs := journal.DefaultSources()
	if !*builtin {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		srcs = cfg.SourceList()
	}

	created, err := store.Import(srcs)
	if err != nil {
		return fmt.Errorf("failed to import sources: %w", err)
	}

	fmt.Printf("✓ Imported %d sources (%d new, %d updated)\n", len(srcs), created, len(srcs)-created)
	return nil
}

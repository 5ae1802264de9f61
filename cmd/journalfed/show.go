package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sanpo/journalfed/journal"
)

func handleShow(configPath string, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	input := fs.String("input", "", "Path of the JSON result (default: output.json from config)")
	id := fs.String("journal", "", "Only show this journal")
	format := fs.String("format", "table", "Output format: table or json")
	fs.Parse(args)

	path := *input
	if path == "" {
		path = loadConfig(configPath).Output.JSON
	}

	result, err := journal.LoadResult(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *id != "" {
		record, ok := result.Find(*id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: journal not found: %s\n", *id)
			os.Exit(1)
		}
		result.Journals = []journal.JournalRecord{record}
	}

	switch *format {
	case "json":
		printResultJSON(result)
	default:
		fmt.Printf("Updated: %s\n\n", result.UpdatedAt.Format("2006-01-02 15:04"))
		printResultTable(result)
	}
}

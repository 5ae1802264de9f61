package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sanpo/journalfed/journal"
)

const (
	titleWidth   = 70
	authorsWidth = 40
)

// printResultTable prints journals and their articles in human-readable
// form
func printResultTable(result *journal.HarvestResult) {
	writeResultTable(os.Stdout, result)
}

func writeResultTable(w io.Writer, result *journal.HarvestResult) {
	if len(result.Journals) == 0 {
		fmt.Fprintln(w, "No journals to display.")
		return
	}

	for _, j := range result.Journals {
		issue := j.LatestIssue
		if issue == "" {
			issue = "-"
		}
		fmt.Fprintf(w, "%s [%s] %s\n", j.Name, j.ID, issue)

		if len(j.Articles) == 0 {
			fmt.Fprintln(w, "   データなし")
		}
		for _, a := range j.Articles {
			fmt.Fprintf(w, "   %s  %s\n", pad(a.Title, titleWidth), truncate(a.Authors, authorsWidth))
			if a.Link != "" {
				fmt.Fprintf(w, "   %s\n", a.Link)
			}
		}
		fmt.Fprintln(w)
	}
}

// printResultJSON prints the result in JSON format
func printResultJSON(result *journal.HarvestResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}

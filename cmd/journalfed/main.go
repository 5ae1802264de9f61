package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Parse global settings
	configPath := getEnv("JOURNALFED_CONFIG", "journalfed.yaml")
	dbPath := getEnv("JOURNALFED_DB", "")

	// Get subcommand
	subcommand := os.Args[1]

	switch subcommand {
	case "harvest":
		handleHarvest(configPath, dbPath, os.Args[2:])
	case "show":
		handleShow(configPath, os.Args[2:])
	case "sources":
		if len(os.Args) < 3 {
			printSourcesUsage()
			os.Exit(1)
		}
		action := os.Args[2]
		handleSourcesCommand(action, configPath, dbPath, os.Args[3:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("journalfed - Latest articles from academic journal listings")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  journalfed <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  harvest    Fetch every journal and write the result")
	fmt.Println("  show       Print the last harvest result")
	fmt.Println("  sources    Manage the journal registry")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  JOURNALFED_CONFIG  Path to config file (default: journalfed.yaml)")
	fmt.Println("  JOURNALFED_DB      Path to source registry database (default: output.database from config)")
}

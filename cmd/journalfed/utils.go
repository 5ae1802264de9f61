package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/sanpo/journalfed/config"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig loads the config file, exiting on error. A missing file means
// the defaults.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// truncate shortens s to fit width terminal columns. Wide characters count
// as two columns.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// pad fills s with spaces up to width terminal columns.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

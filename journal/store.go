package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoResult is returned by LoadResult when no harvest has been saved yet.
var ErrNoResult = errors.New("no harvest result saved")

// SaveResult writes result as indented JSON to path, creating parent
// directories as needed. The file is written to a temporary sibling first
// and renamed so readers never observe a partial file.
func SaveResult(path string, result *HarvestResult) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal harvest result: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write harvest result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace harvest result: %w", err)
	}

	return nil
}

// LoadResult reads a result previously written by SaveResult.
func LoadResult(path string) (*HarvestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoResult
		}
		return nil, fmt.Errorf("failed to read harvest result: %w", err)
	}

	var result HarvestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse harvest result: %w", err)
	}
	if result.Journals == nil {
		result.Journals = []JournalRecord{}
	}

	return &result, nil
}

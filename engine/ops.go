package engine

import (
	"fmt"
	"os"

	"promptdeck/db"
)

// ImportResult reports the outcome of a completed import.
type ImportResult struct {
	Added   int
	Skipped int
}

// ExportLibrary snapshots the full library into dir and returns the
// path of the written file.
func ExportLibrary(store *db.Store, dir string) (string, error) {
	prompts, err := store.ListPrompts()
	if err != nil {
		return "", fmt.Errorf("failed to read prompts for export: %w", err)
	}
	categories, err := store.Categories()
	if err != nil {
		return "", fmt.Errorf("failed to read categories for export: %w", err)
	}
	tags, err := store.PersistedTags()
	if err != nil {
		return "", fmt.Errorf("failed to read tags for export: %w", err)
	}
	return WriteSnapshot(Snapshot(prompts, categories, tags), dir)
}

// ImportLibrary reads an export file and merges it into the library.
// Parse and shape errors abort before any mutation; merge failures roll
// back, so the library is never left half-imported.
func ImportLibrary(store *db.Store, path string) (ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	doc, err := DecodeDocument(file)
	if err != nil {
		return ImportResult{}, err
	}

	added, skipped, err := store.ImportMerge(doc)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Added: added, Skipped: skipped}, nil
}

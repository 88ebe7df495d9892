package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"promptdeck/models"
)

// ErrMissingPrompts is returned when an import document has no prompts
// field or the field is not an array.
var ErrMissingPrompts = errors.New("import document has no prompts list")

// Snapshot builds a versioned export document from the three
// collections verbatim.
func Snapshot(prompts []models.Prompt, categories []string, tags []string) models.ExportDocument {
	return models.ExportDocument{
		Version:    models.ExportVersion,
		ExportedAt: time.Now().UnixMilli(),
		Prompts:    prompts,
		Categories: categories,
		Tags:       tags,
	}
}

// ExportFileName returns the conventional export filename for a date,
// e.g. prompts-export-2026-09-01.json.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("prompts-export-%s.json", t.Format("2006-01-02"))
}

// WriteSnapshot marshals the document as indented JSON into dir using
// the conventional filename and returns the written path.
func WriteSnapshot(doc models.ExportDocument, dir string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export document: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(time.UnixMilli(doc.ExportedAt)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// importDocument mirrors ExportDocument with a pointer prompts slice so
// a missing field is distinguishable from an empty one.
type importDocument struct {
	Version    int              `json:"version"`
	ExportedAt int64            `json:"exportedAt"`
	Prompts    *[]models.Prompt `json:"prompts"`
	Categories []string         `json:"categories"`
	Tags       []string         `json:"tags"`
}

// DecodeDocument parses an export document from r. The document is
// rejected when it is not valid JSON or when the prompts field is
// absent or not list-shaped; a subset document carrying only a prompts
// array is accepted.
func DecodeDocument(r io.Reader) (*models.ExportDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import data: %w", err)
	}

	var raw importDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import document: %w", err)
	}
	if raw.Prompts == nil {
		return nil, ErrMissingPrompts
	}

	return &models.ExportDocument{
		Version:    raw.Version,
		ExportedAt: raw.ExportedAt,
		Prompts:    *raw.Prompts,
		Categories: raw.Categories,
		Tags:       raw.Tags,
	}, nil
}

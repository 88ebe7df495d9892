package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/models"
)

func TestImportMerge_ExistingWinsOnCollision(t *testing.T) {
	store := setupTestStore(t)

	existing, err := store.CreatePrompt(PromptDraft{Title: "Old", Content: "old body"})
	require.NoError(t, err)

	doc := &models.ExportDocument{
		Version:    models.ExportVersion,
		ExportedAt: time.Now().UnixMilli(),
		Prompts: []models.Prompt{
			{
				ID:        existing.ID,
				Title:     "New",
				Content:   "new body",
				CreatedAt: existing.CreatedAt,
				UpdatedAt: existing.UpdatedAt,
			},
		},
	}

	added, skipped, err := store.ImportMerge(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, skipped)

	got, err := store.GetPrompt(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Title)
}

func TestImportMerge_AddsNewPrompts(t *testing.T) {
	store := setupTestStore(t)

	now := time.Now().UnixMilli()
	doc := &models.ExportDocument{
		Version:    models.ExportVersion,
		ExportedAt: now,
		Prompts: []models.Prompt{
			{ID: "import-1", Title: "One", Content: "body", Tags: []string{" a ", "a", "b"}, CreatedAt: now, UpdatedAt: now},
			{ID: "import-2", Title: "Two", Content: "body", Category: "Imported", CreatedAt: now, UpdatedAt: now},
		},
		Categories: []string{"Imported", "Spare"},
		Tags:       []string{"a", "b", "c"},
	}

	added, skipped, err := store.ImportMerge(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, skipped)

	one, err := store.GetPrompt("import-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, one.Tags)

	categories, err := store.Categories()
	require.NoError(t, err)
	assert.Contains(t, categories, "Imported")
	assert.Contains(t, categories, "Spare")

	tags, err := store.PersistedTags()
	require.NoError(t, err)
	assert.Subset(t, tags, []string{"a", "b", "c"})
}

func TestImportMerge_SkipsPromptsWithoutID(t *testing.T) {
	store := setupTestStore(t)

	doc := &models.ExportDocument{
		Version: models.ExportVersion,
		Prompts: []models.Prompt{
			{Title: "No ID", Content: "body"},
			{ID: "ok", Title: "OK", Content: "body"},
		},
	}

	added, skipped, err := store.ImportMerge(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, skipped)
}

func TestImportMerge_RepairsTimestamps(t *testing.T) {
	store := setupTestStore(t)

	doc := &models.ExportDocument{
		Version: models.ExportVersion,
		Prompts: []models.Prompt{
			{ID: "ts", Title: "T", Content: "C", CreatedAt: 5000, UpdatedAt: 100},
		},
	}

	_, _, err := store.ImportMerge(doc)
	require.NoError(t, err)

	got, err := store.GetPrompt("ts")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.UpdatedAt, got.CreatedAt)
}

func TestImportMerge_DuplicateIDsWithinDocument(t *testing.T) {
	store := setupTestStore(t)

	doc := &models.ExportDocument{
		Version: models.ExportVersion,
		Prompts: []models.Prompt{
			{ID: "dup", Title: "First", Content: "body"},
			{ID: "dup", Title: "Second", Content: "body"},
		},
	}

	added, skipped, err := store.ImportMerge(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, skipped)

	got, err := store.GetPrompt("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
}

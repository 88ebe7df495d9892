package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore opens a store backed by a temporary database file.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestCreatePrompt(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{
		Title:    "Code Review",
		Content:  "Review the following code",
		Category: "Coding",
		Tags:     []string{"code", "review"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, int64(0), created.Uses)
	assert.False(t, created.Favorite)

	// Read back through the store
	got, err := store.GetPrompt(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Code Review", got.Title)
	assert.Equal(t, "Coding", got.Category)
	assert.Equal(t, []string{"code", "review"}, got.Tags)
}

func TestCreatePrompt_UniqueIDs(t *testing.T) {
	store := setupTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		p, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "id %s assigned twice", p.ID)
		seen[p.ID] = true
	}
}

func TestCreatePrompt_RequiresTitleAndContent(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreatePrompt(PromptDraft{Title: "", Content: "body"})
	assert.Error(t, err)

	_, err = store.CreatePrompt(PromptDraft{Title: "title", Content: "   "})
	assert.Error(t, err)
}

func TestCreatePrompt_NormalizesTags(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{
		Title:   "T",
		Content: "C",
		Tags:    []string{"  code ", "code", "deep  learning", "", "Code"},
	})
	require.NoError(t, err)

	// Trimmed, inner whitespace collapsed, duplicates dropped,
	// case-sensitive identity preserved.
	assert.Equal(t, []string{"code", "deep learning", "Code"}, created.Tags)
}

func TestUpdatePrompt(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "Old", Content: "body", Category: "A"})
	require.NoError(t, err)

	updated, err := store.UpdatePrompt(created.ID, PromptDraft{
		Title:    "New",
		Content:  "new body",
		Category: "B",
		Tags:     []string{"x"},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.GreaterOrEqual(t, updated.UpdatedAt, created.UpdatedAt)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "B", updated.Category)
	assert.Equal(t, created.Uses, updated.Uses)
	assert.Equal(t, created.Favorite, updated.Favorite)
}

func TestUpdatePrompt_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.UpdatePrompt("missing", PromptDraft{Title: "T", Content: "C"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePrompt(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
	require.NoError(t, err)

	require.NoError(t, store.DeletePrompt(created.ID))

	_, err = store.GetPrompt(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	prompts, err := store.ListPrompts()
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestDeletePrompt_MissingIDIsNoOp(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
	require.NoError(t, err)

	require.NoError(t, store.DeletePrompt("does-not-exist"))

	prompts, err := store.ListPrompts()
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
	assert.Equal(t, created.ID, prompts[0].ID)
}

func TestToggleFavorite(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
	require.NoError(t, err)

	once, err := store.ToggleFavorite(created.ID)
	require.NoError(t, err)
	assert.True(t, once.Favorite)
	assert.Greater(t, once.UpdatedAt, created.UpdatedAt)

	twice, err := store.ToggleFavorite(created.ID)
	require.NoError(t, err)
	assert.False(t, twice.Favorite)
	assert.Greater(t, twice.UpdatedAt, once.UpdatedAt)
}

func TestRecordUse(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
	require.NoError(t, err)

	used, err := store.RecordUse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), used.Uses)
	assert.Greater(t, used.UpdatedAt, created.UpdatedAt)

	again, err := store.RecordUse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Uses)
}

func TestCategoryRegistryOnlyGrows(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C", Category: "Coding"})
	require.NoError(t, err)

	categories, err := store.Categories()
	require.NoError(t, err)
	assert.Contains(t, categories, "Coding")

	// Editing the category away does not shrink the registry
	_, err = store.UpdatePrompt(created.ID, PromptDraft{Title: "T", Content: "C", Category: "Writing"})
	require.NoError(t, err)

	categories, err = store.Categories()
	require.NoError(t, err)
	assert.Contains(t, categories, "Coding")
	assert.Contains(t, categories, "Writing")

	// Neither does deleting the last prompt using it
	require.NoError(t, store.DeletePrompt(created.ID))
	categories, err = store.Categories()
	require.NoError(t, err)
	assert.Contains(t, categories, "Writing")
}

func TestDerivedTagsFollowLivePrompts(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.CreatePrompt(PromptDraft{Title: "A", Content: "C", Tags: []string{"shared", "only-a"}})
	require.NoError(t, err)
	_, err = store.CreatePrompt(PromptDraft{Title: "B", Content: "C", Tags: []string{"shared"}})
	require.NoError(t, err)

	derived, err := store.DerivedTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"only-a", "shared"}, derived)

	// Deleting the only prompt with "only-a" drops it from the derived
	// set but not from the persisted registry.
	require.NoError(t, store.DeletePrompt(first.ID))

	derived, err = store.DerivedTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, derived)

	persisted, err := store.PersistedTags()
	require.NoError(t, err)
	assert.Contains(t, persisted, "only-a")
	assert.Contains(t, persisted, "shared")
}

func TestListPromptsOrder(t *testing.T) {
	store := setupTestStore(t)

	a, err := store.CreatePrompt(PromptDraft{Title: "A", Content: "C"})
	require.NoError(t, err)
	b, err := store.CreatePrompt(PromptDraft{Title: "B", Content: "C"})
	require.NoError(t, err)

	// Touch A so it becomes the most recently updated
	_, err = store.RecordUse(a.ID)
	require.NoError(t, err)

	prompts, err := store.ListPrompts()
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, a.ID, prompts[0].ID)
	assert.Equal(t, b.ID, prompts[1].ID)
}

func TestSeedIfEmpty(t *testing.T) {
	store := setupTestStore(t)

	seeded, err := store.SeedIfEmpty()
	require.NoError(t, err)
	assert.True(t, seeded)

	prompts, categories, tags := store.LoadAll()
	assert.Len(t, prompts, 3)
	assert.Len(t, categories, 3)
	assert.Len(t, tags, 5)

	// Seeding happens exactly once
	seeded, err = store.SeedIfEmpty()
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestSeedIfEmpty_NotAfterUserDeletesPrompts(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SeedIfEmpty()
	require.NoError(t, err)

	prompts, err := store.ListPrompts()
	require.NoError(t, err)
	for _, p := range prompts {
		require.NoError(t, store.DeletePrompt(p.ID))
	}

	// Registries are still populated, so the library is not considered
	// a first run anymore.
	seeded, err := store.SeedIfEmpty()
	require.NoError(t, err)
	assert.False(t, seeded)

	prompts, err = store.ListPrompts()
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestSeedIfEmpty_SkipsWhenAnyCollectionPopulated(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreatePrompt(PromptDraft{Title: "Mine", Content: "C"})
	require.NoError(t, err)

	seeded, err := store.SeedIfEmpty()
	require.NoError(t, err)
	assert.False(t, seeded)

	prompts, err := store.ListPrompts()
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
}

func TestUpdatedAtNeverPrecedesCreatedAt(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreatePrompt(PromptDraft{Title: "T", Content: "C"})
	require.NoError(t, err)

	p := created
	for i := 0; i < 3; i++ {
		p, err = store.RecordUse(p.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.UpdatedAt, p.CreatedAt)
	}
}

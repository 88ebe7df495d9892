package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"promptdeck/models"

	_ "modernc.org/sqlite" // Use pure Go SQLite driver (no CGO required)
)

// ErrNotFound is returned when a prompt id does not exist in the library.
var ErrNotFound = errors.New("prompt not found")

// Store owns the prompt collection and its category/tag registries.
// Every mutator persists synchronously before returning, so in-memory
// views can always be rebuilt from the database.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// PromptDraft carries the user-editable fields of a prompt.
type PromptDraft struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// Open initializes the SQLite database connection with optimal performance settings
func Open(dbPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Configure GORM with performance optimizations
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true, // Cache prepared statements for better performance
	}

	// Open SQLite connection using modernc.org/sqlite (pure Go, no CGO)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Create GORM DB instance using the existing connection
	gdb, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Enable Write-Ahead Logging (WAL) mode for better concurrency
	if err := gdb.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// NORMAL is safe in WAL mode and much faster than FULL
	if err := gdb.Exec("PRAGMA synchronous = NORMAL;").Error; err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	// SQLite only supports one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto-migrate the schema
	if err := gdb.AutoMigrate(&models.Prompt{}, &models.Category{}, &models.Tag{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database opened", zap.String("path", dbPath))
	return &Store{db: gdb, log: log}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// nextTimestamp returns the current epoch-millisecond time, advanced
// past prev so that updated_at strictly moves forward even when two
// mutations land within the same millisecond.
func nextTimestamp(prev int64) int64 {
	now := time.Now().UnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}

// CreatePrompt adds a new prompt to the library and registers any new
// category/tag names. The id, timestamps, use counter and favorite flag
// are assigned here and are not caller-controlled.
func (s *Store) CreatePrompt(draft PromptDraft) (*models.Prompt, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("title and content are required")
	}

	now := time.Now().UnixMilli()
	prompt := models.Prompt{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   draft.Content,
		Category:  strings.TrimSpace(draft.Category),
		Tags:      models.NormalizeTags(draft.Tags),
		Favorite:  false,
		Uses:      0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prompt).Error; err != nil {
			return fmt.Errorf("failed to create prompt: %w", err)
		}
		return registerNames(tx, prompt.Category, prompt.Tags)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("prompt created", zap.String("id", prompt.ID), zap.String("title", prompt.Title))
	return &prompt, nil
}

// UpdatePrompt replaces the editable fields of an existing prompt and
// refreshes updated_at. Id, created_at, uses and favorite are untouched.
func (s *Store) UpdatePrompt(id string, draft PromptDraft) (*models.Prompt, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" || strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("title and content are required")
	}

	prompt, err := s.GetPrompt(id)
	if err != nil {
		return nil, err
	}

	prompt.Title = title
	prompt.Content = draft.Content
	prompt.Category = strings.TrimSpace(draft.Category)
	prompt.Tags = models.NormalizeTags(draft.Tags)
	prompt.UpdatedAt = nextTimestamp(prompt.UpdatedAt)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(prompt).Error; err != nil {
			return fmt.Errorf("failed to update prompt: %w", err)
		}
		return registerNames(tx, prompt.Category, prompt.Tags)
	})
	if err != nil {
		return nil, err
	}
	return prompt, nil
}

// DeletePrompt removes a prompt permanently. Deleting an id that does
// not exist is a no-op. Registries are not cleaned up.
func (s *Store) DeletePrompt(id string) error {
	if err := s.db.Delete(&models.Prompt{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and bumps updated_at.
func (s *Store) ToggleFavorite(id string) (*models.Prompt, error) {
	prompt, err := s.GetPrompt(id)
	if err != nil {
		return nil, err
	}
	prompt.Favorite = !prompt.Favorite
	prompt.UpdatedAt = nextTimestamp(prompt.UpdatedAt)
	if err := s.db.Save(prompt).Error; err != nil {
		return nil, fmt.Errorf("failed to update favorite: %w", err)
	}
	return prompt, nil
}

// RecordUse increments the use counter after a successful clipboard
// copy and bumps updated_at.
func (s *Store) RecordUse(id string) (*models.Prompt, error) {
	prompt, err := s.GetPrompt(id)
	if err != nil {
		return nil, err
	}
	prompt.Uses++
	prompt.UpdatedAt = nextTimestamp(prompt.UpdatedAt)
	if err := s.db.Save(prompt).Error; err != nil {
		return nil, fmt.Errorf("failed to record use: %w", err)
	}
	return prompt, nil
}

// GetPrompt retrieves a prompt by its id.
func (s *Store) GetPrompt(id string) (*models.Prompt, error) {
	var prompt models.Prompt
	result := s.db.First(&prompt, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve prompt: %w", result.Error)
	}
	return &prompt, nil
}

// ListPrompts retrieves all prompts sorted by updated_at descending,
// id as tiebreak for a deterministic order.
func (s *Store) ListPrompts() ([]models.Prompt, error) {
	var prompts []models.Prompt
	result := s.db.Order("updated_at DESC, id ASC").Find(&prompts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve prompts: %w", result.Error)
	}
	return prompts, nil
}

// Categories returns the registered category names. The registry only
// grows: names persist even when no prompt uses them anymore.
func (s *Store) Categories() ([]string, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names, nil
}

// PersistedTags returns the stored tag registry. This exists for import
// bootstrapping; display and filtering use DerivedTags instead.
func (s *Store) PersistedTags() ([]string, error) {
	var tags []models.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve tags: %w", err)
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// DerivedTags recomputes the tag vocabulary from live prompt data,
// deduplicated and lexicographically sorted.
func (s *Store) DerivedTags() ([]string, error) {
	prompts, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range prompts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// LoadAll reads the three collections at once. A failed read of any one
// collection degrades to an empty slice for that collection; load
// failures are never fatal.
func (s *Store) LoadAll() (prompts []models.Prompt, categories []string, tags []string) {
	var err error
	if prompts, err = s.ListPrompts(); err != nil {
		s.log.Warn("failed to load prompts, starting empty", zap.Error(err))
		prompts = nil
	}
	if categories, err = s.Categories(); err != nil {
		s.log.Warn("failed to load categories, starting empty", zap.Error(err))
		categories = nil
	}
	if tags, err = s.PersistedTags(); err != nil {
		s.log.Warn("failed to load tags, starting empty", zap.Error(err))
		tags = nil
	}
	return prompts, categories, tags
}

// registerNames unions a category name and tag names into their
// registries. Idempotent; empty category is skipped.
func registerNames(tx *gorm.DB, category string, tags []string) error {
	if category != "" {
		row := models.Category{Name: category}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to register category: %w", err)
		}
	}
	for _, tag := range tags {
		row := models.Tag{Name: tag}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to register tag: %w", err)
		}
	}
	return nil
}

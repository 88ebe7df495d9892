package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"promptdeck/models"
)

// seedCategories and seedTags bootstrap the registries on first run.
var seedCategories = []string{"Coding", "Writing", "Productivity"}

var seedTags = []string{"code", "review", "summary", "email", "ideas"}

// seedDrafts are the example prompts installed on first run.
var seedDrafts = []struct {
	title    string
	content  string
	category string
	tags     []string
}{
	{
		title: "Code Review",
		content: "Review the following code for correctness, readability and performance. " +
			"Point out bugs first, then style issues. Suggest concrete fixes.\n\n{code}",
		category: "Coding",
		tags:     []string{"code", "review"},
	},
	{
		title: "Summarize Text",
		content: "Summarize the following text in at most five bullet points, " +
			"keeping the original tone and any numbers intact.\n\n{text}",
		category: "Writing",
		tags:     []string{"summary"},
	},
	{
		title: "Follow-up Email",
		content: "Write a short, friendly follow-up email about {topic}. " +
			"Mention the previous conversation, propose next steps and keep it under 120 words.",
		category: "Productivity",
		tags:     []string{"email", "ideas"},
	},
}

// SeedIfEmpty installs the default example data exactly once: only when
// prompts, categories and tags are all simultaneously empty at load
// time. Mutators never re-seed, so a user who deletes everything after
// this point keeps an empty library.
func (s *Store) SeedIfEmpty() (bool, error) {
	var promptCount, categoryCount, tagCount int64
	if err := s.db.Model(&models.Prompt{}).Count(&promptCount).Error; err != nil {
		return false, fmt.Errorf("failed to count prompts: %w", err)
	}
	if err := s.db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return false, fmt.Errorf("failed to count categories: %w", err)
	}
	if err := s.db.Model(&models.Tag{}).Count(&tagCount).Error; err != nil {
		return false, fmt.Errorf("failed to count tags: %w", err)
	}
	if promptCount > 0 || categoryCount > 0 || tagCount > 0 {
		return false, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range seedCategories {
			if err := tx.Create(&models.Category{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed category: %w", err)
			}
		}
		for _, name := range seedTags {
			if err := tx.Create(&models.Tag{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed tag: %w", err)
			}
		}
		now := time.Now().UnixMilli()
		for i, d := range seedDrafts {
			prompt := models.Prompt{
				ID:       uuid.NewString(),
				Title:    d.title,
				Content:  d.content,
				Category: d.category,
				Tags:     d.tags,
				// Stagger timestamps so the seeded list has a stable order
				CreatedAt: now - int64(i),
				UpdatedAt: now - int64(i),
			}
			if err := tx.Create(&prompt).Error; err != nil {
				return fmt.Errorf("failed to seed prompt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Info("seeded default library",
		zap.Int("prompts", len(seedDrafts)),
		zap.Int("categories", len(seedCategories)),
		zap.Int("tags", len(seedTags)))
	return true, nil
}

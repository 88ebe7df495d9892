package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"promptdeck/models"
)

// ImportMerge merges an export document into the library inside a
// single transaction. Existing prompts win on id collision: an incoming
// prompt whose id is already present is silently dropped. Categories
// and tags from the document are unioned into the registries. Any
// failure rolls the whole import back with no partial mutation.
func (s *Store) ImportMerge(doc *models.ExportDocument) (added int, skipped int, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existingIDs []string
		if err := tx.Model(&models.Prompt{}).Pluck("id", &existingIDs).Error; err != nil {
			return fmt.Errorf("failed to read existing prompts: %w", err)
		}
		have := make(map[string]struct{}, len(existingIDs))
		for _, id := range existingIDs {
			have[id] = struct{}{}
		}

		for _, incoming := range doc.Prompts {
			if incoming.ID == "" {
				skipped++
				continue
			}
			if _, exists := have[incoming.ID]; exists {
				skipped++
				continue
			}
			prompt := incoming
			prompt.Title = strings.TrimSpace(prompt.Title)
			prompt.Category = strings.TrimSpace(prompt.Category)
			prompt.Tags = models.NormalizeTags(prompt.Tags)
			if prompt.CreatedAt == 0 {
				prompt.CreatedAt = time.Now().UnixMilli()
			}
			if prompt.UpdatedAt < prompt.CreatedAt {
				prompt.UpdatedAt = prompt.CreatedAt
			}
			if err := tx.Create(&prompt).Error; err != nil {
				return fmt.Errorf("failed to import prompt %s: %w", prompt.ID, err)
			}
			have[prompt.ID] = struct{}{}
			added++
		}

		for _, name := range doc.Categories {
			if err := registerNames(tx, strings.TrimSpace(name), nil); err != nil {
				return err
			}
		}
		if err := registerNames(tx, "", models.NormalizeTags(doc.Tags)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	s.log.Info("import merged", zap.Int("added", added), zap.Int("skipped", skipped))
	return added, skipped, nil
}

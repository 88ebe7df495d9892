package models

import "strings"

// Prompt represents a reusable text prompt in the library
type Prompt struct {
	ID        string   `gorm:"primaryKey" json:"id"`
	Title     string   `gorm:"not null" json:"title"`
	Content   string   `gorm:"not null" json:"content"`
	Category  string   `json:"category,omitempty"` // empty means uncategorized
	Tags      []string `gorm:"serializer:json" json:"tags"`
	Favorite  bool     `json:"favorite"`
	Uses      int64    `json:"uses"`
	CreatedAt int64    `gorm:"not null;autoCreateTime:false" json:"createdAt"` // epoch milliseconds
	UpdatedAt int64    `gorm:"not null;autoUpdateTime:false" json:"updatedAt"` // epoch milliseconds
}

// Category is a registry entry for a known category name.
// Names stay registered even when no prompt uses them anymore.
type Category struct {
	Name string `gorm:"primaryKey" json:"name"`
}

// Tag is a persisted registry entry kept for import bootstrapping.
// The tag vocabulary shown to the user is always recomputed from live
// prompt data, never read from this registry.
type Tag struct {
	Name string `gorm:"primaryKey" json:"name"`
}

// ExportDocument is a full snapshot of the library, versioned for
// forward compatibility
type ExportDocument struct {
	Version    int      `json:"version"`
	ExportedAt int64    `json:"exportedAt"`
	Prompts    []Prompt `json:"prompts"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// ExportVersion is the current export document version
const ExportVersion = 1

// NormalizeTag trims a tag and collapses internal whitespace runs to a
// single space. Identity stays case-sensitive.
func NormalizeTag(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// NormalizeTags normalizes every tag, drops empties and collapses
// duplicates while preserving first-occurrence order.
func NormalizeTags(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		tag := NormalizeTag(t)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}

// HasTag reports whether the prompt carries the given (normalized) tag.
func (p Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

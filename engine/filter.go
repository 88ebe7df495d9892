package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"promptdeck/models"
)

// Category selector sentinels. Any other value filters on an exact
// category name.
const (
	CategoryAll           = "all"
	CategoryUncategorized = "uncategorized"
)

// TagMatch controls how a selected tag set is combined.
type TagMatch string

const (
	TagMatchAny TagMatch = "any"
	TagMatchAll TagMatch = "all"
)

// SortKey selects the ordering of the filtered list.
type SortKey string

const (
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
	SortTitle   SortKey = "title"
)

// Criteria is the ephemeral filter state. It is never persisted.
type Criteria struct {
	Search   string
	Category string // CategoryAll, CategoryUncategorized or a name
	Tags     []string
	TagMatch TagMatch
	Sort     SortKey

	// LegacyTagOverride reproduces the historical behavior where an
	// active tag selection alone decides visibility, bypassing the
	// category and search predicates. Off by default: the predicates
	// combine as a conjunction.
	LegacyTagOverride bool
}

// titleCollator performs locale-aware title comparison. The engine runs
// on a single event loop, so a shared collator is fine.
var titleCollator = collate.New(language.Und)

// Apply filters and sorts the prompt collection according to the
// criteria. It is a pure function: the input slice is not modified and
// there are no side effects, so it is safe to call on every render.
func Apply(prompts []models.Prompt, c Criteria) []models.Prompt {
	visible := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if matches(p, c) {
			visible = append(visible, p)
		}
	}
	sortPrompts(visible, c.Sort)
	return visible
}

// matches evaluates the filter predicates for one prompt.
func matches(p models.Prompt, c Criteria) bool {
	tagOK := matchesTags(p, c)
	if c.LegacyTagOverride && len(c.Tags) > 0 {
		// Historical short-circuit: the tag predicate is the answer.
		return tagOK
	}
	return matchesCategory(p, c.Category) && matchesSearch(p, c.Search) && tagOK
}

func matchesCategory(p models.Prompt, selector string) bool {
	switch selector {
	case "", CategoryAll:
		return true
	case CategoryUncategorized:
		return p.Category == ""
	default:
		return p.Category == selector
	}
}

// matchesSearch does a case-insensitive substring match against the
// concatenation of title, content, category and tags.
func matchesSearch(p models.Prompt, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(
		p.Title + " " + p.Content + " " + p.Category + " " + strings.Join(p.Tags, " "))
	return strings.Contains(haystack, needle)
}

func matchesTags(p models.Prompt, c Criteria) bool {
	if len(c.Tags) == 0 {
		return true
	}
	if c.TagMatch == TagMatchAll {
		for _, tag := range c.Tags {
			if !p.HasTag(tag) {
				return false
			}
		}
		return true
	}
	for _, tag := range c.Tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// sortPrompts orders the list in place. The sort is stable and falls
// back to id comparison on exactly equal keys, so the output order is
// deterministic.
func sortPrompts(prompts []models.Prompt, key SortKey) {
	less := func(a, b models.Prompt) bool {
		switch key {
		case SortCreated:
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt > b.CreatedAt
			}
		case SortTitle:
			if cmp := titleCollator.CompareString(a.Title, b.Title); cmp != 0 {
				return cmp < 0
			}
		default: // SortUpdated
			if a.UpdatedAt != b.UpdatedAt {
				return a.UpdatedAt > b.UpdatedAt
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(prompts, func(i, j int) bool {
		return less(prompts[i], prompts[j])
	})
}

// PartitionFavorites moves favorited prompts to the front of an
// already-sorted list, preserving relative order inside both halves.
// This is a display rule applied after sorting, not part of Apply.
func PartitionFavorites(prompts []models.Prompt) []models.Prompt {
	out := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.Favorite {
			out = append(out, p)
		}
	}
	for _, p := range prompts {
		if !p.Favorite {
			out = append(out, p)
		}
	}
	return out
}

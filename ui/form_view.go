package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"promptdeck/db"
	"promptdeck/models"
)

// form field indexes, in tab order
const (
	fieldTitle = iota
	fieldCategory
	fieldTags
	fieldContent
	fieldCount
)

// formState holds the create/edit form. An empty editingID means the
// form creates a new prompt.
type formState struct {
	editingID string
	title     textinput.Model
	category  textinput.Model
	tags      textinput.Model
	content   textarea.Model
	focus     int
}

func newFormState() formState {
	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 128

	category := textinput.New()
	category.Placeholder = "category (optional)"
	category.CharLimit = 64

	tags := textinput.New()
	tags.Placeholder = "tags, comma separated"
	tags.CharLimit = 256

	content := textarea.New()
	content.Placeholder = "prompt content"
	content.SetHeight(8)

	return formState{
		title:    title,
		category: category,
		tags:     tags,
		content:  content,
	}
}

// reset clears the form for creating a new prompt.
func (f *formState) reset(editingID string) {
	f.editingID = editingID
	f.title.SetValue("")
	f.category.SetValue("")
	f.tags.SetValue("")
	f.content.SetValue("")
	f.focus = fieldTitle
}

// load fills the form with an existing prompt for editing.
func (f *formState) load(p models.Prompt) {
	f.editingID = p.ID
	f.title.SetValue(p.Title)
	f.category.SetValue(p.Category)
	f.tags.SetValue(strings.Join(p.Tags, ", "))
	f.content.SetValue(p.Content)
	f.focus = fieldTitle
}

// focusFirst focuses the title field and blurs the rest.
func (f *formState) focusFirst() tea.Cmd {
	f.focus = fieldTitle
	return f.applyFocus()
}

// applyFocus focuses the active field and blurs the others.
func (f *formState) applyFocus() tea.Cmd {
	f.title.Blur()
	f.category.Blur()
	f.tags.Blur()
	f.content.Blur()
	switch f.focus {
	case fieldCategory:
		return f.category.Focus()
	case fieldTags:
		return f.tags.Focus()
	case fieldContent:
		return f.content.Focus()
	default:
		return f.title.Focus()
	}
}

// draft builds the store draft from the current field values.
func (f *formState) draft() db.PromptDraft {
	return db.PromptDraft{
		Title:    f.title.Value(),
		Content:  f.content.Value(),
		Category: f.category.Value(),
		Tags:     strings.Split(f.tags.Value(), ","),
	}
}

// updateForm handles the create/edit form screen
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			m.screen = screenList
			m.errorMessage = ""
			return m, nil

		case "tab", "shift+tab":
			if msg.String() == "tab" {
				m.form.focus = (m.form.focus + 1) % fieldCount
			} else {
				m.form.focus = (m.form.focus + fieldCount - 1) % fieldCount
			}
			return m, m.form.applyFocus()

		case "ctrl+s":
			draft := m.form.draft()
			var err error
			if m.form.editingID == "" {
				_, err = m.store.CreatePrompt(draft)
				if err == nil {
					m.statusMessage = fmt.Sprintf("Created %q", strings.TrimSpace(draft.Title))
				}
			} else {
				_, err = m.store.UpdatePrompt(m.form.editingID, draft)
				if err == nil {
					m.statusMessage = fmt.Sprintf("Updated %q", strings.TrimSpace(draft.Title))
				}
			}
			if err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			m.errorMessage = ""
			m.screen = screenList
			m.refresh()
			return m, nil
		}
	}

	// Route everything else to the focused field
	var cmd tea.Cmd
	switch m.form.focus {
	case fieldCategory:
		m.form.category, cmd = m.form.category.Update(msg)
	case fieldTags:
		m.form.tags, cmd = m.form.tags.Update(msg)
	case fieldContent:
		m.form.content, cmd = m.form.content.Update(msg)
	default:
		m.form.title, cmd = m.form.title.Update(msg)
	}
	return m, cmd
}

// viewForm renders the create/edit form
func (m Model) viewForm() string {
	var s string

	heading := "New prompt"
	if m.form.editingID != "" {
		heading = "Edit prompt"
	}
	s += titleStyle.Render(heading) + "\n\n"

	s += "Title:\n" + m.form.title.View() + "\n\n"
	s += "Category:\n" + m.form.category.View() + "\n\n"
	s += "Tags:\n" + m.form.tags.View() + "\n\n"
	s += "Content:\n" + m.form.content.View() + "\n"

	if m.errorMessage != "" {
		s += "\n" + errorStyle.Render("⚠ "+m.errorMessage)
	}

	s += "\n" + subtitleStyle.Render("tab next field • ctrl+s save • esc cancel")
	return docStyle.Render(s)
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"promptdeck/config"
	"promptdeck/db"
	"promptdeck/engine"
	"promptdeck/models"
)

// Custom message types for the asynchronous platform calls. Everything
// else mutates the store synchronously inside Update.

// copyResultMsg is sent when a clipboard write completes
type copyResultMsg struct {
	id    string
	title string
	err   error
}

// exportResultMsg is sent when an export file has been written
type exportResultMsg struct {
	path string
	err  error
}

// importResultMsg is sent when an import file has been read and merged
type importResultMsg struct {
	result engine.ImportResult
	err    error
}

// promptItem wraps a Prompt and implements the list.Item interface
type promptItem struct {
	prompt models.Prompt
}

// FilterValue implements list.Item. The built-in fuzzy filter is
// disabled; visibility is decided by the engine.
func (i promptItem) FilterValue() string {
	return i.prompt.Title
}

// Title implements list.DefaultItem
func (i promptItem) Title() string {
	title := i.prompt.Title
	if i.prompt.Favorite {
		title = "★ " + title
	}
	return title
}

// Description implements list.DefaultItem
func (i promptItem) Description() string {
	parts := []string{}
	if i.prompt.Category != "" {
		parts = append(parts, i.prompt.Category)
	} else {
		parts = append(parts, "uncategorized")
	}
	if len(i.prompt.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.prompt.Tags, " #"))
	}
	if i.prompt.Uses > 0 {
		parts = append(parts, fmt.Sprintf("%d uses", i.prompt.Uses))
	}
	parts = append(parts, humanize.Time(time.UnixMilli(i.prompt.UpdatedAt)))
	return strings.Join(parts, " • ")
}

var docStyle = lipgloss.NewStyle().Margin(1, 2)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF0000")).
	Bold(true)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00FFFF")).
	Bold(true)

var subtitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#888888"))

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00AA00"))

var selectedTagStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFD700")).
	Bold(true)

// screenState represents the current screen being displayed
type screenState int

const (
	screenList screenState = iota
	screenForm
	screenTags
	screenImport
)

// Model is the Bubble Tea application model. The store is injected so
// the UI owns no global state.
type Model struct {
	store *db.Store
	cfg   config.Config
	log   *zap.Logger

	screen screenState
	list   list.Model

	// filter state
	criteria     engine.Criteria
	searchInput  textinput.Model
	searching    bool
	categories   []string // cycle order: all, uncategorized, registry names
	categoryIdx  int
	tagVocab     []string
	selectedTags map[string]bool
	tagCursor    int

	// delete confirmation
	confirmDelete bool
	deleteTarget  *models.Prompt

	// import path prompt
	importInput textinput.Model

	// create/edit form, see form_view.go
	form formState

	errorMessage  string
	statusMessage string
	width         int
	height        int
	ready         bool
}

// NewModel builds the UI model and loads the initial collections from
// the store.
func NewModel(store *db.Store, cfg config.Config, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "promptdeck"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // the engine decides visibility
	l.SetShowHelp(false)

	search := textinput.New()
	search.Placeholder = "search title, content, category, tags"
	search.CharLimit = 128

	importInput := textinput.New()
	importInput.Placeholder = "path to prompts-export-*.json"
	importInput.CharLimit = 512

	m := Model{
		store:        store,
		cfg:          cfg,
		log:          log,
		screen:       screenList,
		list:         l,
		searchInput:  search,
		importInput:  importInput,
		selectedTags: make(map[string]bool),
		criteria: engine.Criteria{
			Category:          engine.CategoryAll,
			TagMatch:          engine.TagMatchAny,
			Sort:              engine.SortUpdated,
			LegacyTagOverride: cfg.LegacyTagFilter,
		},
		form: newFormState(),
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// refresh reloads the collections from the store and rebuilds the
// visible list through the filter engine.
func (m *Model) refresh() {
	prompts, categories, _ := m.store.LoadAll()

	m.categories = append([]string{engine.CategoryAll, engine.CategoryUncategorized}, categories...)
	if m.categoryIdx >= len(m.categories) {
		m.categoryIdx = 0
		m.criteria.Category = engine.CategoryAll
	}

	// Displayed tag vocabulary is derived from live prompt data, not
	// the persisted registry.
	vocab, err := m.store.DerivedTags()
	if err != nil {
		m.log.Warn("failed to derive tags", zap.Error(err))
		vocab = nil
	}
	m.tagVocab = vocab

	// Drop selected tags that vanished from the vocabulary
	selected := make([]string, 0, len(m.selectedTags))
	for _, tag := range m.tagVocab {
		if m.selectedTags[tag] {
			selected = append(selected, tag)
		}
	}
	m.criteria.Tags = selected

	visible := engine.Apply(prompts, m.criteria)
	visible = engine.PartitionFavorites(visible)

	items := make([]list.Item, len(visible))
	for i, p := range visible {
		items[i] = promptItem{prompt: p}
	}
	m.list.SetItems(items)
}

// selectedPrompt returns the prompt under the cursor, if any.
func (m *Model) selectedPrompt() *models.Prompt {
	item, ok := m.list.SelectedItem().(promptItem)
	if !ok {
		return nil
	}
	p := item.prompt
	return &p
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window size first (applies to every screen)
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := msg.Width - 4
		listHeight := msg.Height - 8
		if listHeight < 10 {
			listHeight = 10
		}
		m.list.SetSize(listWidth, listHeight)
	}

	switch m.screen {
	case screenForm:
		return m.updateForm(msg)
	case screenTags:
		return m.updateTags(msg)
	case screenImport:
		return m.updateImport(msg)
	}
	return m.updateList(msg)
}

// updateList handles the main list screen
func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Delete confirmation intercepts everything except its answers
		if m.confirmDelete {
			switch msg.String() {
			case "y", "enter":
				if m.deleteTarget != nil {
					if err := m.store.DeletePrompt(m.deleteTarget.ID); err != nil {
						m.errorMessage = err.Error()
					} else {
						m.statusMessage = fmt.Sprintf("Deleted %q", m.deleteTarget.Title)
						m.errorMessage = ""
					}
				}
				m.confirmDelete = false
				m.deleteTarget = nil
				m.refresh()
				return m, nil
			case "n", "esc", "ctrl+c":
				m.confirmDelete = false
				m.deleteTarget = nil
				return m, nil
			}
			return m, nil
		}

		// Live search input
		if m.searching {
			switch msg.String() {
			case "enter", "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.criteria.Search = m.searchInput.Value()
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			m.searching = true
			m.errorMessage = ""
			return m, m.searchInput.Focus()

		case "c":
			m.categoryIdx = (m.categoryIdx + 1) % len(m.categories)
			m.criteria.Category = m.categories[m.categoryIdx]
			m.refresh()
			return m, nil

		case "s":
			switch m.criteria.Sort {
			case engine.SortUpdated:
				m.criteria.Sort = engine.SortCreated
			case engine.SortCreated:
				m.criteria.Sort = engine.SortTitle
			default:
				m.criteria.Sort = engine.SortUpdated
			}
			m.refresh()
			return m, nil

		case "m":
			if m.criteria.TagMatch == engine.TagMatchAny {
				m.criteria.TagMatch = engine.TagMatchAll
			} else {
				m.criteria.TagMatch = engine.TagMatchAny
			}
			m.refresh()
			return m, nil

		case "t":
			m.screen = screenTags
			m.tagCursor = 0
			return m, nil

		case "f":
			if p := m.selectedPrompt(); p != nil {
				if _, err := m.store.ToggleFavorite(p.ID); err != nil {
					m.errorMessage = err.Error()
				} else {
					m.errorMessage = ""
				}
				m.refresh()
			}
			return m, nil

		case "y":
			if p := m.selectedPrompt(); p != nil {
				m.statusMessage = "Copying..."
				return m, copyPromptCmd(*p)
			}
			return m, nil

		case "a":
			m.form.reset("")
			m.screen = screenForm
			return m, m.form.focusFirst()

		case "e":
			if p := m.selectedPrompt(); p != nil {
				m.form.load(*p)
				m.screen = screenForm
				return m, m.form.focusFirst()
			}
			return m, nil

		case "d":
			if p := m.selectedPrompt(); p != nil {
				m.confirmDelete = true
				m.deleteTarget = p
			}
			return m, nil

		case "E":
			return m, exportCmd(m.store, m.cfg.DataDir)

		case "I":
			m.screen = screenImport
			m.importInput.SetValue("")
			m.errorMessage = ""
			return m, m.importInput.Focus()

		case "esc":
			// Clear all filters
			m.searchInput.SetValue("")
			m.criteria.Search = ""
			m.categoryIdx = 0
			m.criteria.Category = engine.CategoryAll
			m.selectedTags = make(map[string]bool)
			m.refresh()
			return m, nil
		}

	case copyResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", msg.err)
			m.statusMessage = ""
			return m, nil
		}
		// Record the use only after the clipboard write succeeded
		prompt, err := m.store.RecordUse(msg.id)
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.statusMessage = fmt.Sprintf("Copied %q (%d uses)", msg.title, prompt.Uses)
		m.refresh()
		return m, nil

	case exportResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
			m.statusMessage = ""
		} else {
			m.errorMessage = ""
			m.statusMessage = "Exported to " + msg.path
		}
		return m, nil

	case importResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Import failed: %v", msg.err)
			m.statusMessage = ""
		} else {
			m.errorMessage = ""
			m.statusMessage = fmt.Sprintf("Imported %d prompts (%d already present)",
				msg.result.Added, msg.result.Skipped)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateTags handles the tag selection overlay
func (m Model) updateTags(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "t", "enter":
			m.screen = screenList
			m.refresh()
			return m, nil
		case "up", "k":
			if m.tagCursor > 0 {
				m.tagCursor--
			}
		case "down", "j":
			if m.tagCursor < len(m.tagVocab)-1 {
				m.tagCursor++
			}
		case " ":
			if m.tagCursor < len(m.tagVocab) {
				tag := m.tagVocab[m.tagCursor]
				m.selectedTags[tag] = !m.selectedTags[tag]
			}
		case "m":
			if m.criteria.TagMatch == engine.TagMatchAny {
				m.criteria.TagMatch = engine.TagMatchAll
			} else {
				m.criteria.TagMatch = engine.TagMatchAny
			}
		}
	}
	return m, nil
}

// updateImport handles the import path prompt
func (m Model) updateImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.screen = screenList
			m.importInput.Blur()
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.importInput.Value())
			if path == "" {
				m.errorMessage = "Please enter a file path"
				return m, nil
			}
			m.screen = screenList
			m.importInput.Blur()
			m.statusMessage = "Importing..."
			m.errorMessage = ""
			return m, importCmd(m.store, path)
		}
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

// copyPromptCmd writes the prompt content to the clipboard off the
// event loop. There is no timeout and no cancellation; a stalled
// clipboard call just leaves the status pending without blocking input.
func copyPromptCmd(p models.Prompt) tea.Cmd {
	return func() tea.Msg {
		err := engine.CopyToClipboard(p.Content)
		return copyResultMsg{id: p.ID, title: p.Title, err: err}
	}
}

// exportCmd writes a snapshot of the whole library to dir.
func exportCmd(store *db.Store, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := engine.ExportLibrary(store, dir)
		return exportResultMsg{path: path, err: err}
	}
}

// importCmd reads and merges an export file off the event loop.
func importCmd(store *db.Store, path string) tea.Cmd {
	return func() tea.Msg {
		result, err := engine.ImportLibrary(store, path)
		return importResultMsg{result: result, err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	switch m.screen {
	case screenForm:
		return m.viewForm()
	case screenTags:
		return m.viewTags()
	case screenImport:
		return m.viewImport()
	}
	return m.viewList()
}

// viewList renders the prompt list screen
func (m Model) viewList() string {
	if !m.ready {
		return "Loading..."
	}

	var s string

	s += m.list.View()

	// Active filter summary
	filters := fmt.Sprintf("category: %s | sort: %s | tags: %s (%s)",
		m.criteria.Category, m.criteria.Sort, summarizeTags(m.criteria.Tags), m.criteria.TagMatch)
	s += "\n" + subtitleStyle.Render(filters)

	if m.searching {
		s += "\n" + m.searchInput.View()
	} else if m.criteria.Search != "" {
		s += "\n" + subtitleStyle.Render("search: "+m.criteria.Search)
	}

	if m.confirmDelete && m.deleteTarget != nil {
		s += "\n" + errorStyle.Render(
			fmt.Sprintf("Delete %q permanently? This cannot be undone. (y/n)", m.deleteTarget.Title))
	}

	if m.errorMessage != "" {
		s += "\n" + errorStyle.Render("⚠ "+m.errorMessage)
	}
	if m.statusMessage != "" {
		s += "\n" + statusStyle.Render("✓ "+m.statusMessage)
	}

	help := "a add • e edit • d delete • f fav • y copy • / search • c category • t tags • m any/all • s sort • E export • I import • q quit"
	s += "\n" + subtitleStyle.Render(help)

	return docStyle.Render(s)
}

// viewTags renders the tag selection overlay
func (m Model) viewTags() string {
	var s string
	s += titleStyle.Render("Filter by tags") + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("match mode: %s (press m to toggle)", m.criteria.TagMatch)) + "\n\n"

	if len(m.tagVocab) == 0 {
		s += subtitleStyle.Render("No tags yet. Tags appear here once prompts carry them.") + "\n"
	}
	for i, tag := range m.tagVocab {
		cursor := "  "
		if i == m.tagCursor {
			cursor = "> "
		}
		line := cursor + "[ ] " + tag
		if m.selectedTags[tag] {
			line = selectedTagStyle.Render(cursor + "[x] " + tag)
		}
		s += line + "\n"
	}

	s += "\n" + subtitleStyle.Render("space toggle • m any/all • enter/esc back")
	return docStyle.Render(s)
}

// viewImport renders the import path prompt
func (m Model) viewImport() string {
	var s string
	s += titleStyle.Render("Import prompts") + "\n\n"
	s += "Path to an export file (JSON):\n\n"
	s += m.importInput.View() + "\n"
	if m.errorMessage != "" {
		s += "\n" + errorStyle.Render("⚠ "+m.errorMessage)
	}
	s += "\n" + subtitleStyle.Render("Existing prompts are kept on id collision. Enter to import, Esc to cancel")
	return docStyle.Render(s)
}

// summarizeTags formats the selected tag set for the filter summary.
func summarizeTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ",")
}

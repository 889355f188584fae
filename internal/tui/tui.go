// Package tui is an interactive Bubble Tea list bound to a collection store.
// Every action goes straight through the store, so each one is persisted as
// it happens.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/ui"
)

// listItem adapts an Item to bubbles/list.Item
type listItem struct {
	ID       string
	Text     string
	Category string
	Assignee string
	Done     bool
}

func (i listItem) FilterValue() string { return i.Text + " " + i.Category + " " + i.Assignee }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(boxUnchecked)
	text := it.Text
	if it.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s %s", box, ui.Glyph(it.Category), text)
	if it.Assignee != "" {
		line += " " + accentStyle.Render("@"+it.Assignee)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// undoEntry remembers the last deleted item so it can be re-added.
type undoEntry[C model.Category] struct {
	fields model.Fields[C]
	done   bool
}

// Model is the Bubble Tea model. Build it with New.
type Model[C model.Category] struct {
	store    *collection.Store[C]
	name     string
	fallback C

	list list.Model

	// Inline add
	adding bool            // true when inline add is active
	ti     textinput.Model // shared text input model (used for add & edit)
	addErr string          // last add validation error (shown briefly)

	// Inline edit
	editing bool   // true when inline edit is active
	editID  string // id of item being edited
	editErr string

	// Undo support (single-level)
	undo *undoEntry[C]

	width, height int
}

var (
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	undoBind   = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"))
)

// New builds the model. name heads the list ("Tasks", "Quests"); fallback
// is the category given to items added inline.
func New[C model.Category](store *collection.Store[C], name string, fallback C) Model[C] {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	// Extend help with our bindings
	extra := func() []key.Binding { return []key.Binding{toggleBind, addBind, editBind, deleteBind, undoBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := Model[C]{
		store:    store,
		name:     name,
		fallback: fallback,
		list:     l,
		width:    80,
		height:   24,
	}
	// set up text input for inline add/edit
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 200
	m.refresh()
	return m
}

// Run starts the program full-screen and blocks until the user quits.
func Run[C model.Category](store *collection.Store[C], name string, fallback C) error {
	p := tea.NewProgram(New(store, name, fallback), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// refresh reloads list rows and the header from the store.
func (m *Model[C]) refresh() tea.Cmd {
	items := m.store.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{
			ID:       it.ID,
			Text:     it.Title,
			Category: string(it.Category),
			Assignee: it.Assignee(),
			Done:     it.Done(),
		})
	}
	st := collection.Summarize(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render(m.name),
		successStyle.Render("✔"), st.Completed,
		pendingStyle.Render("•"), st.Active,
		accentStyle.Render("Total"), st.Total,
	)
	return m.list.SetItems(li)
}

func (m Model[C]) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// Update and View implement Bubble Tea's Model
func (m Model[C]) Init() tea.Cmd { return nil }

func (m Model[C]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				f := model.Fields[C]{Title: m.ti.Value()}.Normalize(m.fallback)
				if err := f.Validate(); err != nil {
					m.addErr = "Title cannot be empty"
					return m, nil
				}
				m.store.Add(f)
				m.closeInput()
				m.adding = false
				cmd := m.refresh()
				return m, cmd
			case "esc":
				m.closeInput()
				m.adding = false
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// edit mode
	if m.editing {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				title := strings.TrimSpace(m.ti.Value())
				if title == "" {
					m.editErr = "Title cannot be empty"
					return m, nil
				}
				m.store.Update(m.editID, model.Patch[C]{Title: &title})
				m.closeInput()
				m.editing = false
				cmd := m.refresh()
				return m, cmd
			case "esc":
				m.closeInput()
				m.editing = false
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// while the filter prompt is open, keys belong to it
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				m.store.ToggleStatus(it.ID)
				cmd := m.refresh()
				return m, cmd
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				if full, found := m.store.Get(it.ID); found {
					m.undo = &undoEntry[C]{fields: model.FieldsOf(full), done: full.Done()}
				}
				m.store.Delete(it.ID)
				cmd := m.refresh()
				return m, cmd
			}
			return m, nil
		case "a":
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New item title..."
			m.ti.Focus()
			return m, textinput.Blink
		case "e":
			if it, ok := m.selected(); ok {
				m.editing = true
				m.editErr = ""
				m.editID = it.ID
				m.ti.SetValue(it.Text)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit item title..."
				m.ti.Focus()
				return m, textinput.Blink
			}
			return m, nil
		case "u":
			if m.undo != nil {
				restored := m.store.Add(m.undo.fields)
				if m.undo.done {
					m.store.ToggleStatus(restored.ID)
				}
				m.undo = nil
				cmd := m.refresh()
				return m, cmd
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model[C]) closeInput() {
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model[C]) View() string {
	listHeight := m.height - 4
	if m.adding || m.editing {
		listHeight = m.height - 6
	}
	m.list.SetSize(m.width-4, listHeight)

	content := m.list.View()
	if m.adding || m.editing {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		title := "Add new item"
		if m.editing {
			title = "Edit item"
		}
		if m.addErr != "" && m.adding {
			title += " — " + errorStyle.Render(m.addErr)
		}
		if m.editErr != "" && m.editing {
			title += " — " + errorStyle.Render(m.editErr)
		}
		inputLine := title + "\n" + m.ti.View()
		content = content + "\n" + bar.Render(inputLine)
	}
	return panelString(content)
}

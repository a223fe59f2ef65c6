// Package tui implements the interactive home view: a grid of the user's
// items with live search, date-range filtering, sorting, and two-press batch
// deletion, backed by the item collection service. The view only ever
// renders snapshots from the service; all state lives in the service itself.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keepitall/keepitall/internal/cli"
	"github.com/keepitall/keepitall/internal/collection"
	"github.com/keepitall/keepitall/internal/model"
)

// Mode represents the input mode of the home view.
type Mode int

// Input modes.
const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeFilter
	ModeDetail
)

// Model holds the home view state.
type Model struct {
	svc         *collection.Service
	detail      *model.Item
	searchInput textinput.Model
	filterInput textinput.Model
	status      string
	table       table.Model
	keymap      KeyMap
	sortKey     model.SortKey
	sortDir     model.SortDirection
	mode        Mode
	width       int
	height      int
}

// NewModel creates the home view for an owner's collection service.
func NewModel(svc *collection.Service) Model {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Name", Width: 24},
		{Title: "Make/Model", Width: 20},
		{Title: "Value", Width: 10},
		{Title: "Purchased", Width: 10},
	}

	km := DefaultKeyMap()

	// The table drives cursor movement itself, off our bindings.
	tk := table.DefaultKeyMap()
	tk.LineUp = km.Up
	tk.LineDown = km.Down

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithKeyMap(tk),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333")).
		BorderBottom(true).
		Bold(false)
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "search items..."
	search.CharLimit = 64

	filter := textinput.New()
	filter.Placeholder = "start end (e.g. 2024-01-01 2024-02-01)"
	filter.CharLimit = 32

	m := Model{
		svc:         svc,
		table:       t,
		searchInput: search,
		filterInput: filter,
		keymap:      km,
	}
	m.refreshRows()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(5, msg.Height-8))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			return m, tea.Quit
		}

		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeDetail:
			m.mode = ModeBrowse
			m.detail = nil
			return m, nil
		}

		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Delete):
		// First press arms delete mode, second press commits the batch.
		armed := m.svc.InDeleteMode()
		if err := m.svc.PressDelete(context.Background()); err != nil {
			m.status = cli.FormatWarning(err.Error())
		} else if armed {
			m.status = cli.FormatSuccess("deleted selected items")
		} else {
			m.status = cli.FormatWarning("select items to be deleted, press d again to confirm")
		}
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keymap.ToggleSelect):
		if item, ok := m.itemAtCursor(); ok {
			if err := m.svc.ToggleSelection(item.ID); err != nil {
				m.status = cli.FormatWarning("press d to enter delete mode first")
			}
			m.refreshRows()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Select):
		if m.svc.InDeleteMode() {
			// In delete mode a selection toggles membership instead of
			// opening item detail.
			if item, ok := m.itemAtCursor(); ok {
				_ = m.svc.ToggleSelection(item.ID)
				m.refreshRows()
			}
			return m, nil
		}
		if item, ok := m.itemAtCursor(); ok {
			m.detail = &item
			m.mode = ModeDetail
		}
		return m, nil

	case key.Matches(msg, m.keymap.Search):
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Filter):
		m.mode = ModeFilter
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.SortName):
		m.applySort(model.SortByName)
		return m, nil

	case key.Matches(msg, m.keymap.SortValue):
		m.applySort(model.SortByValue)
		return m, nil

	case key.Matches(msg, m.keymap.SortDate):
		m.applySort(model.SortByDate)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.mode = ModeBrowse
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Incremental search: every keystroke reruns the query against the
	// full persisted collection.
	m.svc.Search(m.searchInput.Value())
	m.refreshRows()
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeBrowse
		m.filterInput.Blur()
		return m, nil
	case "enter":
		m.mode = ModeBrowse
		m.filterInput.Blur()
		m.applyFilter(m.filterInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) applySort(k model.SortKey) {
	// Pressing the same sort key again flips the direction.
	if m.sortKey == k && m.sortDir == model.SortAscending {
		m.sortDir = model.SortDescending
	} else {
		m.sortDir = model.SortAscending
	}
	m.sortKey = k
	m.svc.Sort(k, m.sortDir)
	m.status = cli.InfoStyle.Render(fmt.Sprintf("sorted by %s (%s)", k, m.sortDir))
	m.refreshRows()
}

func (m *Model) applyFilter(input string) {
	fields := strings.Fields(input)
	if len(fields) != 2 {
		m.status = cli.FormatWarning("please select both start and end dates")
		return
	}

	start, err := model.ParseDate(fields[0])
	if err != nil {
		m.status = cli.FormatWarning(err.Error())
		return
	}
	end, err := model.ParseDate(fields[1])
	if err != nil {
		m.status = cli.FormatWarning(err.Error())
		return
	}

	if err := m.svc.FilterByDateRange(&start, &end); err != nil {
		m.status = cli.FormatWarning(err.Error())
		return
	}
	m.status = cli.InfoStyle.Render(fmt.Sprintf("showing %s to %s", fields[0], fields[1]))
	m.refreshRows()
}

func (m *Model) itemAtCursor() (model.Item, bool) {
	items := m.svc.Items()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(items) {
		return model.Item{}, false
	}
	return items[cursor], true
}

func (m *Model) refreshRows() {
	items := m.svc.Items()
	rows := make([]table.Row, len(items))
	for i, item := range items {
		mark := " "
		if m.svc.IsSelected(item.ID) {
			mark = "✗"
		}
		rows[i] = table.Row{
			mark,
			item.Name,
			strings.TrimSpace(item.Make + " " + item.Model),
			fmt.Sprintf("$%.2f", item.Value),
			item.PurchaseDate.Format(model.DateFormat),
		}
	}
	m.table.SetRows(rows)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.mode == ModeDetail && m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle(m.svc.Owner().Name + "'s items"))
	b.WriteString("\n")

	if m.svc.InDeleteMode() {
		b.WriteString(cli.ErrorStyle.Render(
			fmt.Sprintf("DELETE MODE: %d selected, press d to commit", m.svc.SelectedCount())))
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(cli.FormatTotal(m.svc.TotalValue()))
	b.WriteString("\n")

	switch m.mode {
	case ModeSearch:
		b.WriteString("Search: " + m.searchInput.View())
	case ModeFilter:
		b.WriteString("Filter: " + m.filterInput.View())
	default:
		if m.status != "" {
			b.WriteString(m.status)
		} else {
			b.WriteString(cli.SubtleStyle.Render("/ search · f filter · 1/2/3 sort · d delete · q quit"))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) detailView() string {
	item := m.detail
	lines := []string{
		fmt.Sprintf("Name:          %s", item.Name),
		fmt.Sprintf("Description:   %s", item.Description),
		fmt.Sprintf("Make:          %s", item.Make),
		fmt.Sprintf("Model:         %s", item.Model),
		fmt.Sprintf("Serial number: %s", item.SerialNumber),
		fmt.Sprintf("Value:         $%.2f", item.Value),
		fmt.Sprintf("Purchased:     %s", item.PurchaseDate.Format(model.DateFormat)),
		fmt.Sprintf("Comment:       %s", item.Comment),
	}
	if item.PhotoPath != "" {
		lines = append(lines, fmt.Sprintf("Photo:         %s", item.PhotoPath))
	}
	lines = append(lines, "", cli.SubtleStyle.Render("press any key to go back"))

	return cli.RenderBox(item.Name, strings.Join(lines, "\n"))
}

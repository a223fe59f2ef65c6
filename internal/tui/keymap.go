package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for the home view.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Select       key.Binding
	Delete       key.Binding
	ToggleSelect key.Binding
	Search       key.Binding
	Filter       key.Binding
	SortName     key.Binding
	SortValue    key.Binding
	SortDate     key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "view item"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete mode / commit"),
		),
		ToggleSelect: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/Space", "toggle selection"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter by date range"),
		),
		SortName: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "sort by name"),
		),
		SortValue: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "sort by value"),
		),
		SortDate: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sort by date"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

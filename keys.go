package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	SelectAll  key.Binding
	Copy       key.Binding
	Search     key.Binding
	Escape     key.Binding
	Sort       key.Binding
	Rebuild    key.Binding
	Refresh    key.Binding
	FullRow    key.Binding
	Serial     key.Binding
	AutoScroll key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll left")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll right")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+f", " "), key.WithHelp("pgdn", "page down")),
	Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	SelectAll:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
	Copy:       key.NewBinding(key.WithKeys("y", "ctrl+y"), key.WithHelp("y", "copy selection")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Escape:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by selected column")),
	Rebuild:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-sort")),
	Refresh:    key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "re-run query")),
	FullRow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full row selection")),
	Serial:     key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "row numbers")),
	AutoScroll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "drag autoscroll")),
}

// ShortHelp is shown in the status bar when nothing else is.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Copy, k.SelectAll, k.Sort, k.Refresh, k.Quit}
}

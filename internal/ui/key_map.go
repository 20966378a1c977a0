package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	create     key.Binding
	soundtrack key.Binding
	edit       key.Binding
	remove     key.Binding
	play       key.Binding
	refresh    key.Binding
	yes        key.Binding
	no         key.Binding
	next       key.Binding
	prev       key.Binding
	submit     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		create:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new")),
		soundtrack: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "new soundtrack")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		play:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.create, k.soundtrack, k.edit, k.remove, k.play},
		{k.refresh, k.quit},
	}
}

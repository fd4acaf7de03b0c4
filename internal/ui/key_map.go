package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Bindings avoid plain letters since the URL field takes text input.
type keyMap struct {
	submit   key.Binding
	next     key.Binding
	prev     key.Binding
	download key.Binding
	back     key.Binding
	forward  key.Binding
	clear    key.Binding
	theme    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		download: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "download")),
		back:     key.NewBinding(key.WithKeys("alt+left", "ctrl+o"), key.WithHelp("alt+←", "back")),
		forward:  key.NewBinding(key.WithKeys("alt+right", "ctrl+g"), key.WithHelp("alt+→", "forward")),
		clear:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		theme:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.back, k.forward, k.clear, k.theme, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.next, k.prev},
		{k.download, k.back, k.forward},
		{k.clear, k.theme, k.quit},
	}
}

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	left       key.Binding
	right      key.Binding
	enter      key.Binding
	playPause  key.Binding
	next       key.Binding
	previous   key.Binding
	forward    key.Binding
	rewind     key.Binding
	sheet      key.Binding
	transcript key.Binding
	summary    key.Binding
	refresh    key.Binding
	back       key.Binding
	help       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		playPause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		forward:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "+10s")),
		rewind:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "-10s")),
		sheet:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "player")),
		transcript: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transcript")),
		summary:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.playPause, k.sheet, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter},
		{k.playPause, k.next, k.previous, k.forward, k.rewind},
		{k.sheet, k.transcript, k.refresh, k.back},
		{k.help, k.quit},
	}
}

// transcriptKeys is the help shown on the transcript screen.
type transcriptKeys struct{ keyMap }

func (k transcriptKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.transcript, k.summary, k.up, k.down, k.back, k.quit}
}

func (k transcriptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

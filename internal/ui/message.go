package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundscript/internal/state"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgContentsLoaded MsgKind = iota
	MsgHomeChanged
	MsgTranscriptChanged
)

// contentsLoadedMsg is the constructor for [MsgContentsLoaded]
func contentsLoadedMsg() Msg {
	return Msg{kind: MsgContentsLoaded}
}

// homeChangedMsg is the constructor for [MsgHomeChanged]
func homeChangedMsg() Msg {
	return Msg{kind: MsgHomeChanged}
}

// transcriptChangedMsg is the constructor for [MsgTranscriptChanged].
//
// The holder identifies the screen so notifications from a closed screen are dropped.
func transcriptChangedMsg(holder *state.Transcript) Msg {
	return Msg{kind: MsgTranscriptChanged, data: holder}
}

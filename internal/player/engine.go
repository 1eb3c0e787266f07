package player

import (
	"fmt"
	"time"
)

// Status is the engine's readiness for the current item.
type Status int

const (
	StatusIdle Status = iota
	StatusBuffering
	StatusReady
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusBuffering:
		return "buffering"
	case StatusReady:
		return "ready"
	case StatusEnded:
		return "ended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// TransitionReason says why the current item changed.
type TransitionReason int

const (
	// TransitionAuto means the previous item finished and playback moved on by itself.
	TransitionAuto TransitionReason = iota
	// TransitionSeek means a caller jumped to another item.
	TransitionSeek
)

// EventKind discriminates an [Event].
type EventKind int

const (
	EventStatus EventKind = iota
	EventPlayWhenReady
	EventTransition
	EventError
)

// Event is a notification from an [Engine].
type Event struct {
	Kind          EventKind
	Status        Status
	PlayWhenReady bool
	Reason        TransitionReason
	Index         int
	Err           error
}

// Engine is a playlist-aware media player.
//
// Implementations must be safe for concurrent use and close the Events
// channel once Release has been called.
type Engine interface {
	SetItems(urls []string)
	Prepare()
	SeekToItem(index int, pos time.Duration)
	SeekTo(pos time.Duration)
	SetPlayWhenReady(play bool)
	PlayWhenReady() bool
	Status() Status
	CurrentIndex() int
	Position() time.Duration
	Duration() time.Duration
	Events() <-chan Event
	Release()
}

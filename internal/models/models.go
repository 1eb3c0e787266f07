package models

import (
	"fmt"
	"time"
)

// PlayerState is the coarse state reported by the player for the current item.
type PlayerState int

const (
	StateIdle PlayerState = iota
	StateReady
	StateBuffering
	StateError
	StateEnd
	StatePlaying
	StatePause
	StateNextTrack
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateBuffering:
		return "buffering"
	case StateError:
		return "error"
	case StateEnd:
		return "end"
	case StatePlaying:
		return "playing"
	case StatePause:
		return "pause"
	case StateNextTrack:
		return "next"
	default:
		return fmt.Sprintf("PlayerState(%d)", int(s))
	}
}

// Track is a content list entry.
//
// IsSelected and State are view-only and never serialized.
type Track struct {
	ID        string   `json:"_id"`
	Artist    string   `json:"artist,omitempty"`
	Audio     string   `json:"audio"`
	HeroImage string   `json:"heroImage,omitempty"`
	Images    []string `json:"images,omitempty"`
	Name      string   `json:"name"`

	IsSelected bool        `json:"-"`
	State      PlayerState `json:"-"`
}

// TrackDetail is a single content item with its transcript and summary.
type TrackDetail struct {
	ID            string   `json:"_id"`
	Artist        string   `json:"artist,omitempty"`
	Audio         string   `json:"audio"`
	HeroImage     string   `json:"heroImage,omitempty"`
	Images        []string `json:"images,omitempty"`
	Name          string   `json:"name"`
	Status        string   `json:"status,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Transcription string   `json:"transcription,omitempty"`
}

// Track returns the list entry view of the detail.
func (d TrackDetail) Track() Track {
	return Track{
		ID:        d.ID,
		Artist:    d.Artist,
		Audio:     d.Audio,
		HeroImage: d.HeroImage,
		Images:    d.Images,
		Name:      d.Name,
	}
}

// ContentResponse is the envelope of GET /creator/contents/{status}.
type ContentResponse struct {
	Data   []Track `json:"data"`
	Status string  `json:"status"`
}

// ContentDetailResponse is the envelope of GET /creator/content/{id}.
type ContentDetailResponse struct {
	Data   TrackDetail `json:"data"`
	Status string      `json:"status"`
}

// PlaybackState is a snapshot of the current item's progress.
type PlaybackState struct {
	CurrentPlaybackPosition time.Duration
	CurrentTrackDuration    time.Duration
}

// Progress returns the fraction of the item played, in [0, 1].
func (p PlaybackState) Progress() float64 {
	if p.CurrentTrackDuration <= 0 {
		return 0
	}
	f := float64(p.CurrentPlaybackPosition) / float64(p.CurrentTrackDuration)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Error is a single failure shown to the user.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
}

func (e Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %d %s", e.Tag, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

// ErrorState accumulates errors for a screen. Errors behaves as a set.
type ErrorState struct {
	IsErrorOccurred bool
	Errors          []Error
}

// SetError records e and marks the state as failed. Duplicates are ignored.
func (s *ErrorState) SetError(e Error) {
	s.IsErrorOccurred = true
	for _, existing := range s.Errors {
		if existing == e {
			return
		}
	}
	s.Errors = append(s.Errors, e)
}

// Last returns the most recently recorded error.
func (s ErrorState) Last() (Error, bool) {
	if len(s.Errors) == 0 {
		return Error{}, false
	}
	return s.Errors[len(s.Errors)-1], true
}

// ResetTracks clears selection and player state on every track in place.
func ResetTracks(tracks []Track) {
	for i := range tracks {
		tracks[i].IsSelected = false
		tracks[i].State = StateIdle
	}
}

// AudioURLs returns the media item list for tracks, in order.
func AudioURLs(tracks []Track) []string {
	urls := make([]string, len(tracks))
	for i, t := range tracks {
		urls[i] = t.Audio
	}
	return urls
}

// IndexOf returns the position of the track with id, or -1.
func IndexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Package models defines the data transfer objects exchanged with the content backend
// and the playback values shared between the player, the view-state holders and the UI.
//
// The package contains two categories of types:
//
// 1. Backend DTOs: JSON shapes returned by the creator content API
//   - [Track] : a list entry with audio URL and artwork
//   - [TrackDetail] : a single content item with transcript, summary and tags
//   - [ContentResponse] / [ContentDetailResponse] : the {data, status} envelopes
//
// 2. Playback values: produced by the player and consumed by screens
//   - [PlayerState] : the coarse state of the media engine
//   - [PlaybackState] : position and duration of the current item
//   - [ErrorState] : accumulated, deduplicated errors for a screen
package models

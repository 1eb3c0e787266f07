// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// Screens are addressed by [Route] and kept on a back stack:
//  1. home : 2-column grid of tracks with a mini player, or the full player sheet
//  2. transcript_summary/{contentId} : transcript and summary of one content item
//
// The (view) [Model] renders snapshots taken from the state holders. A blocking command waits on each holder's
// Changed channel and turns notifications into messages, so playback progress flows into the view without polling.
//
// Keyboard navigation uses vim-style bindings (h/j/k/l, enter, space, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

// Package state holds the view state behind each screen.
//
// [Home] owns the track list, the selection and the mini/full player state. It
// observes the [player.Player] state stream and republishes position and
// duration while a track plays. [Transcript] loads a single content detail.
//
// Holders are safe for concurrent use. Observers wait on Changed and then read
// a snapshot; notifications are coalesced, so a slow reader only ever sees the
// latest state.
package state

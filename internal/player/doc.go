// Package player coordinates audio playback for the track list.
//
// An [Engine] owns the playlist and the audio device and reports what happens
// through [Event] values. [Player] drives an engine on behalf of the screens
// and translates its events into the coarse [models.PlayerState] stream the
// view-state holders observe.
//
// [BeepEngine] is the production engine: it downloads each item, decodes it
// with gopxl/beep's mp3 decoder and plays it through the speaker package.
package player

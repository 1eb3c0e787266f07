package testing

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/soundscript/internal/player"
)

// FakeEngine is an in-memory [player.Engine]. Prepare completes immediately and
// Finish simulates the current item playing out.
type FakeEngine struct {
	mu            sync.Mutex
	items         []string
	index         int
	status        player.Status
	playWhenReady bool
	position      time.Duration
	duration      time.Duration
	released      bool
	calls         []string
	events        chan player.Event
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{events: make(chan player.Event, 256)}
}

func (f *FakeEngine) SetItems(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetItems(%d)", len(urls))
	f.items = append([]string(nil), urls...)
	f.index = 0
	f.setStatus(player.StatusIdle)
}

func (f *FakeEngine) Prepare() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Prepare")
	if f.status != player.StatusIdle || len(f.items) == 0 {
		return
	}
	f.setStatus(player.StatusBuffering)
	f.setStatus(player.StatusReady)
}

func (f *FakeEngine) SeekToItem(index int, pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SeekToItem(%d,%v)", index, pos)
	if index != f.index {
		f.index = index
		f.emit(player.Event{Kind: player.EventTransition, Reason: player.TransitionSeek, Index: index})
	}
	f.position = pos
	if f.status == player.StatusEnded {
		f.setStatus(player.StatusReady)
	}
}

func (f *FakeEngine) SeekTo(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SeekTo(%v)", pos)
	f.position = pos
}

func (f *FakeEngine) SetPlayWhenReady(play bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetPlayWhenReady(%v)", play)
	if f.playWhenReady == play {
		return
	}
	f.playWhenReady = play
	f.emit(player.Event{Kind: player.EventPlayWhenReady, PlayWhenReady: play})
}

func (f *FakeEngine) PlayWhenReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playWhenReady
}

func (f *FakeEngine) Status() player.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *FakeEngine) CurrentIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

func (f *FakeEngine) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *FakeEngine) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *FakeEngine) Events() <-chan player.Event { return f.events }

func (f *FakeEngine) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Release")
	if f.released {
		return
	}
	f.released = true
	close(f.events)
}

// SetProgress sets the values Position and Duration report.
func (f *FakeEngine) SetProgress(pos, dur time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position, f.duration = pos, dur
}

// Finish advances to the next item like a natural end of playback, or ends the list.
func (f *FakeEngine) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index < len(f.items)-1 {
		f.index++
		f.position = 0
		f.emit(player.Event{Kind: player.EventTransition, Reason: player.TransitionAuto, Index: f.index})
		return
	}
	f.playWhenReady = false
	f.setStatus(player.StatusEnded)
}

// Fail reports a playback error.
func (f *FakeEngine) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emit(player.Event{Kind: player.EventError, Err: err})
}

// Calls returns the recorded method calls in order.
func (f *FakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeEngine) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *FakeEngine) setStatus(s player.Status) {
	if f.status == s {
		return
	}
	f.status = s
	f.emit(player.Event{Kind: player.EventStatus, Status: s})
}

func (f *FakeEngine) emit(ev player.Event) {
	if !f.released {
		f.events <- ev
	}
}

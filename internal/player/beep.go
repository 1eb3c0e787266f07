package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	speakerBuffer     = 100 * time.Millisecond
	eventBuffer       = 64
	resampleQuality   = 4
)

// BeepEngine is an [Engine] that plays mp3 items through the system speaker.
//
// Items are downloaded whole so the decoder can seek.
type BeepEngine struct {
	client     *http.Client
	logger     *log.Logger
	sampleRate beep.SampleRate
	volume     float64

	mu            sync.Mutex
	items         []string
	index         int
	status        Status
	playWhenReady bool
	released      bool
	loadSeq       int
	cancelLoad    context.CancelFunc

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl

	speakerOnce sync.Once
	speakerErr  error

	events chan Event
}

// BeepOption configures a [BeepEngine].
type BeepOption func(*BeepEngine)

func WithHTTPClient(c *http.Client) BeepOption {
	return func(e *BeepEngine) { e.client = c }
}

func WithEngineLogger(l *log.Logger) BeepOption {
	return func(e *BeepEngine) { e.logger = l }
}

// WithSampleRate sets the speaker rate. Items at other rates are resampled.
func WithSampleRate(sr int) BeepOption {
	return func(e *BeepEngine) {
		if sr > 0 {
			e.sampleRate = beep.SampleRate(sr)
		}
	}
}

// WithVolume sets the gain in [effects.Volume] units (base 2, 0 is unchanged).
func WithVolume(v float64) BeepOption {
	return func(e *BeepEngine) { e.volume = v }
}

func NewBeepEngine(opts ...BeepOption) *BeepEngine {
	e := &BeepEngine{
		client:     http.DefaultClient,
		logger:     log.Default(),
		sampleRate: DefaultSampleRate,
		events:     make(chan Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *BeepEngine) SetItems(urls []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.items = append([]string(nil), urls...)
	e.index = 0
	e.setStatusLocked(StatusIdle)
}

// Prepare starts loading the current item if the engine is idle.
func (e *BeepEngine) Prepare() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusIdle || len(e.items) == 0 {
		return
	}
	e.loadLocked(e.index, 0)
}

func (e *BeepEngine) SeekToItem(index int, pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.items) {
		return
	}

	if index == e.index {
		switch e.status {
		case StatusReady:
			e.seekLocked(pos)
			return
		case StatusBuffering:
			return
		}
	}

	e.index = index
	e.emitLocked(Event{Kind: EventTransition, Reason: TransitionSeek, Index: index})
	e.loadLocked(index, pos)
}

func (e *BeepEngine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(pos)
}

func (e *BeepEngine) SetPlayWhenReady(play bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playWhenReady == play {
		return
	}
	e.playWhenReady = play
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = !play
		speaker.Unlock()
	}
	e.emitLocked(Event{Kind: EventPlayWhenReady, PlayWhenReady: play})
}

func (e *BeepEngine) PlayWhenReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playWhenReady
}

func (e *BeepEngine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *BeepEngine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

func (e *BeepEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return e.format.SampleRate.D(e.streamer.Position())
}

func (e *BeepEngine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return e.format.SampleRate.D(e.streamer.Len())
}

func (e *BeepEngine) Events() <-chan Event {
	return e.events
}

// Release stops playback and closes the event stream.
func (e *BeepEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return
	}
	e.stopLocked()
	e.released = true
	close(e.events)
}

// loadLocked fetches and decodes item index in the background and reports buffering then ready.
func (e *BeepEngine) loadLocked(index int, pos time.Duration) {
	e.stopLocked()
	seq := e.loadSeq

	ctx, cancel := context.WithCancel(context.Background())
	e.cancelLoad = cancel
	e.setStatusLocked(StatusBuffering)

	go e.load(ctx, seq, e.items[index], pos)
}

func (e *BeepEngine) load(ctx context.Context, seq int, url string, pos time.Duration) {
	streamer, format, err := e.fetch(ctx, url)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.loadSeq || e.released {
		if streamer != nil {
			streamer.Close()
		}
		return
	}

	if err != nil {
		e.setStatusLocked(StatusIdle)
		e.emitLocked(Event{Kind: EventError, Err: err})
		return
	}

	if err := e.initSpeaker(); err != nil {
		streamer.Close()
		e.setStatusLocked(StatusIdle)
		e.emitLocked(Event{Kind: EventError, Err: err})
		return
	}

	if pos > 0 {
		if err := streamer.Seek(min(format.SampleRate.N(pos), streamer.Len()-1)); err != nil {
			e.logger.Warn("initial seek failed", "url", url, "error", err)
		}
	}

	e.streamer = streamer
	e.format = format

	var s beep.Streamer = streamer
	if format.SampleRate != e.sampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, e.sampleRate, s)
	}
	s = beep.Seq(s, beep.Callback(func() { go e.finished(seq) }))

	e.ctrl = &beep.Ctrl{
		Streamer: &effects.Volume{Streamer: s, Base: 2, Volume: e.volume},
		Paused:   !e.playWhenReady,
	}
	speaker.Play(e.ctrl)

	e.setStatusLocked(StatusReady)
}

func (e *BeepEngine) fetch(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to read %s: %w", url, err)
	}

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return streamer, format, nil
}

// finished runs outside the speaker lock once the item identified by seq has played out.
func (e *BeepEngine) finished(seq int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.loadSeq || e.released {
		return
	}

	if e.index < len(e.items)-1 {
		e.index++
		e.emitLocked(Event{Kind: EventTransition, Reason: TransitionAuto, Index: e.index})
		e.loadLocked(e.index, 0)
		return
	}

	e.playWhenReady = false
	e.setStatusLocked(StatusEnded)
}

func (e *BeepEngine) initSpeaker() error {
	e.speakerOnce.Do(func() {
		e.speakerErr = speaker.Init(e.sampleRate, e.sampleRate.N(speakerBuffer))
	})
	return e.speakerErr
}

func (e *BeepEngine) seekLocked(pos time.Duration) {
	if e.streamer == nil {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()

	n := min(max(e.format.SampleRate.N(pos), 0), e.streamer.Len()-1)
	if err := e.streamer.Seek(n); err != nil {
		e.logger.Warn("seek failed", "position", pos, "error", err)
	}
}

// stopLocked cancels any pending load and tears down the current item.
func (e *BeepEngine) stopLocked() {
	e.loadSeq++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	if e.ctrl != nil {
		speaker.Clear()
		e.ctrl = nil
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
}

func (e *BeepEngine) setStatusLocked(s Status) {
	if e.status == s {
		return
	}
	e.status = s
	e.emitLocked(Event{Kind: EventStatus, Status: s})
}

func (e *BeepEngine) emitLocked(ev Event) {
	if e.released {
		return
	}
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("dropping player event", "kind", ev.Kind)
	}
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

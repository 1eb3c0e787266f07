package player

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
)

const stateBuffer = 32

// Player drives an [Engine] and publishes its state as [models.PlayerState] values.
type Player struct {
	engine Engine
	logger *log.Logger
	states chan models.PlayerState

	relayOnce   sync.Once
	releaseOnce sync.Once
}

// New wraps engine. The state stream starts with the first call to Init.
func New(engine Engine, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		engine: engine,
		logger: logger,
		states: make(chan models.PlayerState, stateBuffer),
	}
}

// Init replaces the playlist with urls and prepares the engine.
func (p *Player) Init(urls []string) {
	p.engine.SetItems(urls)
	p.engine.Prepare()
	p.relayOnce.Do(func() { go p.relay() })
}

// SetUpTrack moves to the start of item index, starting playback when play is true.
func (p *Player) SetUpTrack(index int, play bool) {
	if p.engine.Status() == StatusIdle {
		p.engine.Prepare()
	}
	p.engine.SeekToItem(index, 0)
	if play {
		p.engine.SetPlayWhenReady(true)
	}
}

// PlayPause toggles playback of the current item.
func (p *Player) PlayPause() {
	if p.engine.Status() == StatusIdle {
		p.engine.Prepare()
	}
	p.engine.SetPlayWhenReady(!p.engine.PlayWhenReady())
}

// SeekTo moves within the current item.
func (p *Player) SeekTo(pos time.Duration) {
	p.engine.SeekTo(max(pos, 0))
}

// Position is the playback position of the current item, never negative.
func (p *Player) Position() time.Duration {
	return max(p.engine.Position(), 0)
}

// Duration is the length of the current item, never negative.
func (p *Player) Duration() time.Duration {
	return max(p.engine.Duration(), 0)
}

// States returns the translated state stream. It is closed after Release.
func (p *Player) States() <-chan models.PlayerState {
	return p.states
}

// Release frees the engine. The player must not be used afterwards.
func (p *Player) Release() {
	p.releaseOnce.Do(func() {
		p.engine.Release()
		// Without a relay nobody else closes the stream.
		p.relayOnce.Do(func() { close(p.states) })
	})
}

func (p *Player) relay() {
	defer close(p.states)
	for ev := range p.engine.Events() {
		for _, s := range p.translate(ev) {
			p.states <- s
		}
	}
}

func (p *Player) translate(ev Event) []models.PlayerState {
	switch ev.Kind {
	case EventStatus:
		switch ev.Status {
		case StatusIdle:
			return []models.PlayerState{models.StateIdle}
		case StatusBuffering:
			return []models.PlayerState{models.StateBuffering}
		case StatusReady:
			return []models.PlayerState{models.StateReady, playState(p.engine.PlayWhenReady())}
		case StatusEnded:
			return []models.PlayerState{models.StateEnd}
		}
	case EventPlayWhenReady:
		if p.engine.Status() == StatusReady {
			return []models.PlayerState{playState(ev.PlayWhenReady)}
		}
	case EventTransition:
		if ev.Reason == TransitionAuto {
			return []models.PlayerState{models.StateNextTrack, models.StatePlaying}
		}
	case EventError:
		p.logger.Error("playback failed", "error", ev.Err)
		return []models.PlayerState{models.StateError}
	}
	return nil
}

func playState(play bool) models.PlayerState {
	if play {
		return models.StatePlaying
	}
	return models.StatePause
}

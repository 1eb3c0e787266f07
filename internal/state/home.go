package state

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/player"
	"github.com/desertthunder/soundscript/internal/repositories"
)

const DefaultPollInterval = time.Second

// HomeUIState is the snapshot rendered by the home screen and the players.
type HomeUIState struct {
	IsLoading  bool
	Error      models.ErrorState
	Podcasts   []models.Track
	Amplitudes []int
}

// AmplitudeSource provides waveform data for an audio URL.
type AmplitudeSource interface {
	Amplitudes(ctx context.Context, url string) ([]int, error)
}

// Home owns the track list, the selection and playback progress.
//
// The selected index is -1 until a track is chosen.
type Home struct {
	repo      repositories.TrackRepository
	player    *player.Player
	waveforms AmplitudeSource
	interval  time.Duration
	logger    *log.Logger
	changed   notifier

	observeOnce sync.Once

	mu            sync.Mutex
	ui            HomeUIState
	tracks        []models.Track
	selectedIndex int
	isTrackPlay   bool
	isAuto        bool
	playback      models.PlaybackState
	pollCancel    context.CancelFunc
	closed        bool
}

// NewHome creates the home holder. waveforms may be nil.
func NewHome(repo repositories.TrackRepository, p *player.Player, waveforms AmplitudeSource, interval time.Duration, logger *log.Logger) *Home {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Home{
		repo:          repo,
		player:        p,
		waveforms:     waveforms,
		interval:      interval,
		logger:        logger,
		changed:       newNotifier(),
		selectedIndex: -1,
	}
}

// FetchContents loads the track list and hands its audio to the player.
//
// A refetch clears the selection.
func (h *Home) FetchContents(ctx context.Context) {
	h.update(func() { h.ui.IsLoading = true })

	h.repo.GetContents(ctx).
		OnSuccess(func(resp models.ContentResponse) {
			tracks := append([]models.Track(nil), resp.Data...)
			models.ResetTracks(tracks)

			h.mu.Lock()
			h.stopPollingLocked()
			h.tracks = tracks
			h.selectedIndex = -1
			h.isAuto = false
			h.playback = models.PlaybackState{}
			h.ui.IsLoading = false
			h.ui.Podcasts = h.snapshotLocked()
			h.mu.Unlock()
			h.changed.notify()

			h.player.Init(models.AudioURLs(tracks))
			h.observeOnce.Do(func() { go h.observe() })
		}).
		OnError(func(code int, message string) {
			h.logger.Warn("contents request failed", "tag", TagHome, "code", code, "message", message)
			h.update(func() {
				h.ui.IsLoading = false
				h.ui.Error.SetError(models.Error{Code: code, Message: message, Tag: TagHome})
			})
		}).
		OnException(func(err error) {
			h.logger.Warn("contents request failed", "tag", TagHome, "error", err)
			h.update(func() {
				h.ui.IsLoading = false
				h.ui.Error.SetError(exceptionError(err, TagHome))
			})
		})
}

// FetchAmplitudes loads the waveform for url into the UI state. Failures are logged and leave the state unchanged.
// Results for a track that is no longer selected are dropped.
func (h *Home) FetchAmplitudes(ctx context.Context, url string) {
	if h.waveforms == nil || url == "" {
		return
	}

	amplitudes, err := h.waveforms.Amplitudes(ctx, url)
	if err != nil {
		h.logger.Warn("failed to load amplitudes", "url", url, "error", err)
		return
	}

	h.mu.Lock()
	if h.selectedIndex < 0 || h.selectedIndex >= len(h.tracks) || h.tracks[h.selectedIndex].Audio != url {
		h.mu.Unlock()
		h.logger.Debug("dropping amplitudes for a track that is no longer selected", "url", url)
		return
	}
	h.ui.Amplitudes = amplitudes
	h.mu.Unlock()
	h.changed.notify()
}

// UpdateState applies a player state to the selected track.
func (h *Home) UpdateState(s models.PlayerState) {
	h.mu.Lock()
	if h.closed || h.selectedIndex < 0 || h.selectedIndex >= len(h.tracks) {
		h.mu.Unlock()
		return
	}

	h.isTrackPlay = s == models.StatePlaying
	h.tracks[h.selectedIndex].State = s
	h.tracks[h.selectedIndex].IsSelected = true
	h.ui.Podcasts = h.snapshotLocked()
	h.startPollingLocked(s)

	if s == models.StateNextTrack {
		h.isAuto = true
	}
	h.mu.Unlock()
	h.changed.notify()

	switch s {
	case models.StateNextTrack:
		h.Next()
	case models.StateEnd:
		h.onTrackSelected(0)
	}
}

// Previous selects the track before the current one.
func (h *Home) Previous() {
	h.mu.Lock()
	i := h.selectedIndex
	h.mu.Unlock()

	if i > 0 {
		h.onTrackSelected(i - 1)
	}
}

// Next selects the track after the current one.
func (h *Home) Next() {
	h.mu.Lock()
	i, n := h.selectedIndex, len(h.tracks)
	h.mu.Unlock()

	if i < n-1 {
		h.onTrackSelected(i + 1)
	}
}

// PlayPause toggles playback of the selected track. Without a selection it does nothing.
func (h *Home) PlayPause() {
	h.mu.Lock()
	selected := h.selectedIndex >= 0 && !h.closed
	h.mu.Unlock()

	if !selected {
		h.logger.Debug("play/pause without a selected track")
		return
	}
	h.player.PlayPause()
}

// TrackClick selects track, matched by id.
func (h *Home) TrackClick(track models.Track) {
	h.mu.Lock()
	i := models.IndexOf(h.tracks, track.ID)
	h.mu.Unlock()

	h.onTrackSelected(i)
}

// Seek moves within the selected track and republishes progress.
func (h *Home) Seek(pos time.Duration) {
	h.mu.Lock()
	ok := h.selectedIndex >= 0 && !h.closed
	h.mu.Unlock()
	if !ok {
		return
	}

	h.player.SeekTo(pos)
	h.publishPlayback(context.Background())
}

// Close stops polling and releases the player.
func (h *Home) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.stopPollingLocked()
	h.mu.Unlock()

	h.player.Release()
}

// UIState returns a snapshot of the current state.
func (h *Home) UIState() HomeUIState {
	h.mu.Lock()
	defer h.mu.Unlock()

	ui := h.ui
	ui.Podcasts = append([]models.Track(nil), h.ui.Podcasts...)
	ui.Amplitudes = append([]int(nil), h.ui.Amplitudes...)
	ui.Error.Errors = append([]models.Error(nil), h.ui.Error.Errors...)
	return ui
}

// SelectedTrack returns the selected track, if any.
func (h *Home) SelectedTrack() (models.Track, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.selectedIndex < 0 || h.selectedIndex >= len(h.tracks) {
		return models.Track{}, false
	}
	return h.tracks[h.selectedIndex], true
}

func (h *Home) SelectedIndex() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selectedIndex
}

// Playback returns the last published position and duration.
func (h *Home) Playback() models.PlaybackState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playback
}

func (h *Home) Changed() <-chan struct{} { return h.changed.ch }

func (h *Home) onTrackSelected(i int) {
	h.mu.Lock()
	if h.closed || i < 0 || i >= len(h.tracks) {
		h.mu.Unlock()
		return
	}

	if h.selectedIndex == -1 {
		h.isTrackPlay = true
	}

	var setUp, play bool
	if h.selectedIndex == -1 || h.selectedIndex != i {
		models.ResetTracks(h.tracks)
		h.selectedIndex = i
		h.tracks[i].IsSelected = true
		h.ui.Podcasts = h.snapshotLocked()
		h.ui.Amplitudes = nil
		setUp, play = !h.isAuto, h.isTrackPlay
	}
	h.isAuto = false
	h.mu.Unlock()
	h.changed.notify()

	if setUp {
		h.player.SetUpTrack(i, play)
	}
}

func (h *Home) observe() {
	for s := range h.player.States() {
		h.UpdateState(s)
	}
}

// startPollingLocked replaces the polling job. The job publishes once and keeps
// publishing every interval only while s is Playing.
func (h *Home) startPollingLocked(s models.PlayerState) {
	h.stopPollingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	h.pollCancel = cancel
	go h.poll(ctx, s == models.StatePlaying)
}

func (h *Home) stopPollingLocked() {
	if h.pollCancel != nil {
		h.pollCancel()
		h.pollCancel = nil
	}
}

func (h *Home) poll(ctx context.Context, playing bool) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		h.publishPlayback(ctx)
		if !playing {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Home) publishPlayback(ctx context.Context) {
	ps := models.PlaybackState{
		CurrentPlaybackPosition: h.player.Position(),
		CurrentTrackDuration:    h.player.Duration(),
	}

	h.mu.Lock()
	if ctx.Err() != nil || h.closed {
		h.mu.Unlock()
		return
	}
	h.playback = ps
	h.mu.Unlock()
	h.changed.notify()
}

func (h *Home) snapshotLocked() []models.Track {
	return append([]models.Track(nil), h.tracks...)
}

func (h *Home) update(fn func()) {
	h.mu.Lock()
	fn()
	h.mu.Unlock()
	h.changed.notify()
}

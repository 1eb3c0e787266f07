package state

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/player"
	"github.com/desertthunder/soundscript/internal/services"
	"github.com/desertthunder/soundscript/internal/shared"
	tu "github.com/desertthunder/soundscript/internal/testing"
)

// fakeRepository returns canned results.
type fakeRepository struct {
	contents services.Result[models.ContentResponse]
	detail   services.Result[models.ContentDetailResponse]
	lastID   string
}

func (f *fakeRepository) GetContents(context.Context) services.Result[models.ContentResponse] {
	return f.contents
}

func (f *fakeRepository) GetContentDetail(_ context.Context, id string) services.Result[models.ContentDetailResponse] {
	f.lastID = id
	return f.detail
}

type fakeWaveforms struct {
	amplitudes []int
	err        error
}

func (f fakeWaveforms) Amplitudes(context.Context, string) ([]int, error) {
	return f.amplitudes, f.err
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func quietLogger() *log.Logger { return shared.NewLogger(io.Discard) }

func threeTracks() []models.Track {
	return []models.Track{
		{ID: "1", Name: "One", Audio: "http://a/1.mp3"},
		{ID: "2", Name: "Two", Audio: "http://a/2.mp3"},
		{ID: "3", Name: "Three", Audio: "http://a/3.mp3"},
	}
}

func newLoadedHome(t *testing.T) (*Home, *tu.FakeEngine) {
	t.Helper()
	engine := tu.NewFakeEngine()
	repo := &fakeRepository{contents: services.Success(models.ContentResponse{Data: threeTracks(), Status: "success"})}
	h := NewHome(repo, player.New(engine, quietLogger()), fakeWaveforms{amplitudes: []int{10, 20}}, 10*time.Millisecond, quietLogger())
	t.Cleanup(h.Close)

	h.FetchContents(context.Background())
	return h, engine
}

func trackState(h *Home, i int) models.PlayerState {
	return h.UIState().Podcasts[i].State
}

func TestHomeFetchContents(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		ui := h.UIState()
		if ui.IsLoading {
			t.Error("expected loading to be false")
		}
		if len(ui.Podcasts) != 3 {
			t.Fatalf("expected 3 podcasts, got %d", len(ui.Podcasts))
		}
		if h.SelectedIndex() != -1 {
			t.Errorf("expected no selection, got %d", h.SelectedIndex())
		}
		if _, ok := h.SelectedTrack(); ok {
			t.Error("expected no selected track")
		}
		if !slices.Contains(engine.Calls(), "SetItems(3)") {
			t.Errorf("expected player to be initialised, got %v", engine.Calls())
		}

		select {
		case <-h.Changed():
		default:
			t.Error("expected a change notification")
		}
	})

	t.Run("HTTP Error", func(t *testing.T) {
		repo := &fakeRepository{contents: services.Failure[models.ContentResponse](503, "Service Unavailable")}
		h := NewHome(repo, player.New(tu.NewFakeEngine(), quietLogger()), nil, 0, quietLogger())
		defer h.Close()

		h.FetchContents(context.Background())

		ui := h.UIState()
		if ui.IsLoading {
			t.Error("expected loading to be false after error")
		}
		if !ui.Error.IsErrorOccurred || len(ui.Error.Errors) != 1 {
			t.Fatalf("expected one error, got %+v", ui.Error)
		}
		if e := ui.Error.Errors[0]; e.Code != 503 || e.Tag != TagHome {
			t.Errorf("unexpected error %+v", e)
		}
	})

	t.Run("Exception", func(t *testing.T) {
		repo := &fakeRepository{contents: services.Exception[models.ContentResponse](errors.New("no route to host"))}
		h := NewHome(repo, player.New(tu.NewFakeEngine(), quietLogger()), nil, 0, quietLogger())
		defer h.Close()

		h.FetchContents(context.Background())

		last, ok := h.UIState().Error.Last()
		if !ok || !strings.Contains(last.Message, "no route") || last.Tag != TagHome {
			t.Errorf("unexpected error %+v", last)
		}
	})
}

func TestHomeSelection(t *testing.T) {
	t.Run("First Click Plays", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "2"})

		if h.SelectedIndex() != 1 {
			t.Fatalf("expected index 1, got %d", h.SelectedIndex())
		}
		calls := engine.Calls()
		if !slices.Contains(calls, "SeekToItem(1,0s)") || !slices.Contains(calls, "SetPlayWhenReady(true)") {
			t.Errorf("expected set up with play, got %v", calls)
		}

		eventually(t, "selected track to play", func() bool { return trackState(h, 1) == models.StatePlaying })

		tr, ok := h.SelectedTrack()
		if !ok || tr.ID != "2" || !tr.IsSelected {
			t.Errorf("unexpected selected track %+v", tr)
		}
	})

	t.Run("Same Track Does Nothing", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		before := len(engine.Calls())
		h.TrackClick(models.Track{ID: "1"})

		if len(engine.Calls()) != before {
			t.Errorf("expected no engine calls, got %v", engine.Calls()[before:])
		}
	})

	t.Run("Unknown Track Is Ignored", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "missing"})

		if h.SelectedIndex() != -1 {
			t.Errorf("expected no selection, got %d", h.SelectedIndex())
		}
	})

	t.Run("Switching Resets Other Tracks", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		eventually(t, "first track to play", func() bool { return trackState(h, 0) == models.StatePlaying })

		h.TrackClick(models.Track{ID: "3"})

		ui := h.UIState()
		if ui.Podcasts[0].IsSelected || ui.Podcasts[0].State != models.StateIdle {
			t.Errorf("expected first track to be reset, got %+v", ui.Podcasts[0])
		}
		if !ui.Podcasts[2].IsSelected {
			t.Error("expected third track to be selected")
		}
	})

	t.Run("Next And Previous Bounds", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.Previous()
		if h.SelectedIndex() != -1 {
			t.Errorf("previous without selection should do nothing, got %d", h.SelectedIndex())
		}

		h.TrackClick(models.Track{ID: "3"})
		h.Next()
		if h.SelectedIndex() != 2 {
			t.Errorf("next on last track should do nothing, got %d", h.SelectedIndex())
		}

		h.Previous()
		h.Previous()
		h.Previous()
		if h.SelectedIndex() != 0 {
			t.Errorf("expected index 0, got %d", h.SelectedIndex())
		}
	})

	t.Run("PlayPause", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.PlayPause()
		if slices.Contains(engine.Calls(), "SetPlayWhenReady(true)") {
			t.Error("play/pause without selection should not reach the engine")
		}

		h.TrackClick(models.Track{ID: "1"})
		eventually(t, "track to play", func() bool { return trackState(h, 0) == models.StatePlaying })

		h.PlayPause()
		eventually(t, "track to pause", func() bool { return trackState(h, 0) == models.StatePause })
	})
}

func TestHomePlayerStates(t *testing.T) {
	t.Run("Auto Advance Does Not Set Up Again", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		eventually(t, "track to play", func() bool { return trackState(h, 0) == models.StatePlaying })

		engine.Finish()

		eventually(t, "selection to follow the player", func() bool { return h.SelectedIndex() == 1 })
		eventually(t, "second track to play", func() bool { return trackState(h, 1) == models.StatePlaying })

		for _, c := range engine.Calls() {
			if strings.HasPrefix(c, "SeekToItem(1") {
				t.Errorf("automatic transition should not seek, got %v", engine.Calls())
			}
		}
	})

	t.Run("End Returns To First Track Paused", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "3"})
		eventually(t, "track to play", func() bool { return trackState(h, 2) == models.StatePlaying })

		engine.Finish()

		eventually(t, "selection to reset", func() bool { return h.SelectedIndex() == 0 })
		if engine.CurrentIndex() != 0 {
			t.Errorf("expected engine at item 0, got %d", engine.CurrentIndex())
		}
		if engine.PlayWhenReady() {
			t.Error("expected playback to stay paused after the list ends")
		}
	})

	t.Run("Error State", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		engine.Fail(errors.New("decode failed"))

		eventually(t, "error state", func() bool { return trackState(h, 0) == models.StateError })
	})

	t.Run("States Without Selection Are Ignored", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.UpdateState(models.StatePlaying)

		for _, tr := range h.UIState().Podcasts {
			if tr.State != models.StateIdle || tr.IsSelected {
				t.Errorf("unexpected track state %+v", tr)
			}
		}
	})
}

func TestHomePlayback(t *testing.T) {
	t.Run("Polls While Playing", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		eventually(t, "track to play", func() bool { return trackState(h, 0) == models.StatePlaying })

		engine.SetProgress(5*time.Second, time.Minute)
		eventually(t, "first progress", func() bool { return h.Playback().CurrentPlaybackPosition == 5*time.Second })

		engine.SetProgress(7*time.Second, time.Minute)
		eventually(t, "progress to update", func() bool { return h.Playback().CurrentPlaybackPosition == 7*time.Second })

		if h.Playback().CurrentTrackDuration != time.Minute {
			t.Errorf("expected duration 1m, got %v", h.Playback().CurrentTrackDuration)
		}
	})

	t.Run("Stops When Paused", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		eventually(t, "track to play", func() bool { return trackState(h, 0) == models.StatePlaying })

		engine.SetProgress(time.Second, time.Minute)
		eventually(t, "playing progress", func() bool { return h.Playback().CurrentPlaybackPosition == time.Second })

		h.PlayPause()
		eventually(t, "track to pause", func() bool { return trackState(h, 0) == models.StatePause })
		eventually(t, "paused progress", func() bool { return h.Playback().CurrentPlaybackPosition == time.Second })
		time.Sleep(30 * time.Millisecond)

		engine.SetProgress(9*time.Second, time.Minute)
		time.Sleep(50 * time.Millisecond)

		if got := h.Playback().CurrentPlaybackPosition; got != time.Second {
			t.Errorf("expected polling to stop while paused, got %v", got)
		}
	})

	t.Run("Seek Publishes Immediately", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.TrackClick(models.Track{ID: "1"})
		h.Seek(30 * time.Second)

		eventually(t, "seek position", func() bool { return h.Playback().CurrentPlaybackPosition == 30*time.Second })
	})

	t.Run("Amplitudes", func(t *testing.T) {
		h, _ := newLoadedHome(t)
		h.TrackClick(models.Track{ID: "1"})

		h.FetchAmplitudes(context.Background(), "http://a/1.mp3")

		if got := h.UIState().Amplitudes; !slices.Equal(got, []int{10, 20}) {
			t.Errorf("unexpected amplitudes %v", got)
		}
	})

	t.Run("Amplitudes For Previous Track Are Dropped", func(t *testing.T) {
		h, _ := newLoadedHome(t)
		h.TrackClick(models.Track{ID: "1"})
		h.TrackClick(models.Track{ID: "2"})

		h.FetchAmplitudes(context.Background(), "http://a/1.mp3")

		if got := h.UIState().Amplitudes; len(got) != 0 {
			t.Errorf("expected stale amplitudes to be dropped, got %v", got)
		}

		h.FetchAmplitudes(context.Background(), "http://a/2.mp3")
		if got := h.UIState().Amplitudes; !slices.Equal(got, []int{10, 20}) {
			t.Errorf("unexpected amplitudes %v", got)
		}
	})

	t.Run("Amplitudes Without Selection Are Dropped", func(t *testing.T) {
		h, _ := newLoadedHome(t)

		h.FetchAmplitudes(context.Background(), "http://a/1.mp3")

		if got := h.UIState().Amplitudes; len(got) != 0 {
			t.Errorf("expected no amplitudes, got %v", got)
		}
	})

	t.Run("Amplitude Failure Keeps State", func(t *testing.T) {
		repo := &fakeRepository{contents: services.Success(models.ContentResponse{Data: threeTracks()})}
		h := NewHome(repo, player.New(tu.NewFakeEngine(), quietLogger()), fakeWaveforms{err: errors.New("boom")}, 0, quietLogger())
		defer h.Close()

		h.FetchAmplitudes(context.Background(), "http://a/1.mp3")

		if got := h.UIState().Amplitudes; len(got) != 0 {
			t.Errorf("expected no amplitudes, got %v", got)
		}
	})

	t.Run("Close Releases Player", func(t *testing.T) {
		h, engine := newLoadedHome(t)

		h.Close()
		h.Close()

		if !slices.Contains(engine.Calls(), "Release") {
			t.Error("expected engine to be released")
		}

		h.TrackClick(models.Track{ID: "1"})
		if h.SelectedIndex() != -1 {
			t.Error("closed holder should ignore selection")
		}
	})
}

func TestTranscript(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepository{detail: services.Success(models.ContentDetailResponse{
			Data: models.TrackDetail{ID: "abc", Name: "Episode", Summary: "short", Transcription: "long"},
		})}
		tr := NewTranscript(repo, quietLogger())

		tr.FetchContentDetail(context.Background(), "abc")

		ui := tr.UIState()
		if ui.IsLoading || ui.TrackDetail == nil {
			t.Fatalf("unexpected state %+v", ui)
		}
		if repo.lastID != "abc" || ui.TrackDetail.Transcription != "long" {
			t.Errorf("unexpected detail %+v", ui.TrackDetail)
		}

		select {
		case <-tr.Changed():
		default:
			t.Error("expected change notification")
		}
	})

	t.Run("Error", func(t *testing.T) {
		repo := &fakeRepository{detail: services.Failure[models.ContentDetailResponse](404, "not found")}
		tr := NewTranscript(repo, nil)

		tr.FetchContentDetail(context.Background(), "abc")

		ui := tr.UIState()
		if ui.IsLoading {
			t.Error("expected loading false after error")
		}
		last, ok := ui.Error.Last()
		if !ok || last.Code != 404 || last.Tag != TagTranscript {
			t.Errorf("unexpected error %+v", last)
		}
		if ui.TrackDetail != nil {
			t.Error("expected no detail")
		}
	})

	t.Run("Exception", func(t *testing.T) {
		repo := &fakeRepository{detail: services.Exception[models.ContentDetailResponse](errors.New("timeout"))}
		tr := NewTranscript(repo, quietLogger())

		tr.FetchContentDetail(context.Background(), "abc")
		tr.FetchContentDetail(context.Background(), "abc")

		ui := tr.UIState()
		if len(ui.Error.Errors) != 1 {
			t.Errorf("expected repeated error to be recorded once, got %d", len(ui.Error.Errors))
		}
	})
}

package player

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/soundscript/internal/shared"
)

func newTestBeepEngine(t *testing.T, client *http.Client) *BeepEngine {
	t.Helper()
	e := NewBeepEngine(WithHTTPClient(client), WithEngineLogger(shared.NewLogger(io.Discard)))
	t.Cleanup(e.Release)
	return e
}

// waitEvent reads events until one of kind arrives.
func waitEvent(t *testing.T, e *BeepEngine, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-e.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func drain(e *BeepEngine) {
	for {
		select {
		case <-e.Events():
		default:
			return
		}
	}
}

func TestBeepEngineLoad(t *testing.T) {
	t.Run("Download Failure Reports Error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		e := newTestBeepEngine(t, srv.Client())
		e.SetItems([]string{srv.URL + "/missing.mp3"})
		e.Prepare()

		ev := waitEvent(t, e, EventError)
		if ev.Err == nil || !strings.Contains(ev.Err.Error(), "status 404") {
			t.Errorf("expected a status error, got %v", ev.Err)
		}
		if e.Status() != StatusIdle {
			t.Errorf("expected idle after a failed load, got %v", e.Status())
		}
	})

	t.Run("Decode Failure Reports Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "definitely not an mp3")
		}))
		defer srv.Close()

		e := newTestBeepEngine(t, srv.Client())
		e.SetItems([]string{srv.URL + "/bad.mp3"})
		e.Prepare()

		ev := waitEvent(t, e, EventError)
		if ev.Err == nil || !strings.Contains(ev.Err.Error(), "decode") {
			t.Errorf("expected a decode error, got %v", ev.Err)
		}
	})

	t.Run("Prepare Reports Buffering", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		e := newTestBeepEngine(t, srv.Client())
		e.SetItems([]string{srv.URL + "/a.mp3"})
		e.Prepare()

		ev := waitEvent(t, e, EventStatus)
		if ev.Status != StatusBuffering {
			t.Errorf("expected buffering first, got %v", ev.Status)
		}
	})

	t.Run("Replaced Load Is Dropped", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			http.NotFound(w, r)
		}))
		defer srv.Close()
		defer close(release)

		e := newTestBeepEngine(t, srv.Client())
		e.SetItems([]string{srv.URL + "/slow.mp3"})
		e.Prepare()
		e.SetItems(nil)
		drain(e)

		select {
		case ev := <-e.Events():
			if ev.Kind == EventError {
				t.Errorf("expected the replaced load to stay silent, got %v", ev.Err)
			}
		case <-time.After(100 * time.Millisecond):
		}
		if e.Status() != StatusIdle {
			t.Errorf("expected idle, got %v", e.Status())
		}
	})

	t.Run("Seek Without Stream Is Ignored", func(t *testing.T) {
		e := newTestBeepEngine(t, http.DefaultClient)

		e.SeekTo(5 * time.Second)

		if e.Position() != 0 || e.Duration() != 0 {
			t.Errorf("expected zero progress, got %v / %v", e.Position(), e.Duration())
		}
	})
}

func TestBeepEngineFinished(t *testing.T) {
	t.Run("Stale Sequence Is Ignored", func(t *testing.T) {
		e := newTestBeepEngine(t, http.DefaultClient)
		e.SetItems([]string{"http://a/1.mp3"})
		drain(e)

		e.mu.Lock()
		stale := e.loadSeq - 1
		e.mu.Unlock()

		e.finished(stale)

		if e.Status() != StatusIdle || e.CurrentIndex() != 0 {
			t.Errorf("expected no change, got %v at %d", e.Status(), e.CurrentIndex())
		}
	})

	t.Run("Last Item Ends Playback", func(t *testing.T) {
		e := newTestBeepEngine(t, http.DefaultClient)
		e.SetItems([]string{"http://a/1.mp3"})
		e.SetPlayWhenReady(true)
		drain(e)

		e.mu.Lock()
		seq := e.loadSeq
		e.mu.Unlock()

		e.finished(seq)

		if e.Status() != StatusEnded {
			t.Errorf("expected ended, got %v", e.Status())
		}
		if e.PlayWhenReady() {
			t.Error("expected play-when-ready to be cleared")
		}
	})

	t.Run("Advances To Next Item", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		e := newTestBeepEngine(t, srv.Client())
		e.SetItems([]string{srv.URL + "/1.mp3", srv.URL + "/2.mp3"})
		drain(e)

		e.mu.Lock()
		seq := e.loadSeq
		e.mu.Unlock()

		e.finished(seq)

		ev := waitEvent(t, e, EventTransition)
		if ev.Reason != TransitionAuto || ev.Index != 1 {
			t.Errorf("expected auto transition to 1, got %+v", ev)
		}
		if e.CurrentIndex() != 1 {
			t.Errorf("expected index 1, got %d", e.CurrentIndex())
		}

		e.finished(seq)
		if e.CurrentIndex() != 1 {
			t.Errorf("expected the old sequence to be ignored, got index %d", e.CurrentIndex())
		}
	})

	t.Run("Released Engine Ignores Finish", func(t *testing.T) {
		e := NewBeepEngine(WithEngineLogger(shared.NewLogger(io.Discard)))
		e.SetItems([]string{"http://a/1.mp3"})

		e.mu.Lock()
		seq := e.loadSeq
		e.mu.Unlock()

		e.Release()
		e.finished(seq)

		if e.Status() == StatusEnded {
			t.Error("expected released engine to ignore the finished item")
		}
	})
}

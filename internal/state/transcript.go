package state

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/repositories"
)

// TranscriptUIState is the snapshot rendered by the transcript screen.
type TranscriptUIState struct {
	IsLoading   bool
	Error       models.ErrorState
	TrackDetail *models.TrackDetail
}

// Transcript loads the detail of one content item.
type Transcript struct {
	repo    repositories.TrackRepository
	logger  *log.Logger
	changed notifier

	mu sync.Mutex
	ui TranscriptUIState
}

func NewTranscript(repo repositories.TrackRepository, logger *log.Logger) *Transcript {
	if logger == nil {
		logger = log.Default()
	}
	return &Transcript{repo: repo, logger: logger, changed: newNotifier()}
}

// FetchContentDetail loads the detail for id, recording failures in the error state.
func (t *Transcript) FetchContentDetail(ctx context.Context, id string) {
	t.update(func(ui *TranscriptUIState) { ui.IsLoading = true })

	t.repo.GetContentDetail(ctx, id).
		OnSuccess(func(resp models.ContentDetailResponse) {
			detail := resp.Data
			t.update(func(ui *TranscriptUIState) {
				ui.IsLoading = false
				ui.TrackDetail = &detail
			})
		}).
		OnError(func(code int, message string) {
			t.logger.Warn("content detail request failed", "tag", TagTranscript, "id", id, "code", code, "message", message)
			t.update(func(ui *TranscriptUIState) {
				ui.IsLoading = false
				ui.Error.SetError(models.Error{Code: code, Message: message, Tag: TagTranscript})
			})
		}).
		OnException(func(err error) {
			t.logger.Warn("content detail request failed", "tag", TagTranscript, "id", id, "error", err)
			t.update(func(ui *TranscriptUIState) {
				ui.IsLoading = false
				ui.Error.SetError(exceptionError(err, TagTranscript))
			})
		})
}

// UIState returns a snapshot of the current state.
func (t *Transcript) UIState() TranscriptUIState {
	t.mu.Lock()
	defer t.mu.Unlock()

	ui := t.ui
	ui.Error.Errors = append([]models.Error(nil), t.ui.Error.Errors...)
	return ui
}

func (t *Transcript) Changed() <-chan struct{} { return t.changed.ch }

func (t *Transcript) update(fn func(*TranscriptUIState)) {
	t.mu.Lock()
	fn(&t.ui)
	t.mu.Unlock()
	t.changed.notify()
}

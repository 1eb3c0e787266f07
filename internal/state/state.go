package state

import (
	"github.com/desertthunder/soundscript/internal/models"
)

const (
	TagHome       = "home"
	TagTranscript = "transcript"
)

// notifier is a coalescing change signal.
type notifier struct {
	ch chan struct{}
}

func newNotifier() notifier {
	return notifier{ch: make(chan struct{}, 1)}
}

func (n notifier) notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// exceptionError converts a transport failure into a displayable error.
func exceptionError(err error, tag string) models.Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return models.Error{Message: msg, Tag: tag}
}

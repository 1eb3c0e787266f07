package tasks

import (
	"fmt"

	"github.com/desertthunder/soundscript/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchList Phase = iota
	FetchDetails
	ComputeWaveforms
	ExportDetails
)

func (p Phase) String() string {
	switch p {
	case FetchList:
		return "fetch_list"
	case FetchDetails:
		return "fetch_details"
	case ComputeWaveforms:
		return "compute_waveforms"
	case ExportDetails:
		return "export_details"
	default:
		return ""
	}
}

func fetchingListUpdate(status string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s contents...", status),
	}
}

func fetchedListUpdate(tracks []models.Track, cached bool) ProgressUpdate {
	msg := fmt.Sprintf("Found %d tracks", len(tracks))
	if cached {
		msg += " (offline, from cache)"
	}
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    tracks,
	}
}

func detailCompletedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func detailFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func waveformUpdate(step, total int, name string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   ComputeWaveforms,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ waveform %s: %v", step, total, name, err),
		}
	}
	return ProgressUpdate{
		Phase:   ComputeWaveforms,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ waveform %s", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

package tasks

import (
	"fmt"

	"github.com/desertthunder/cinefav/internal/models"
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
	QueuePoster Phase = iota
	DownloadPoster
	SkipPoster
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case QueuePoster:
		return "queue_poster"
	case DownloadPoster:
		return "download_poster"
	case SkipPoster:
		return "skip_poster"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress delivers update without blocking. A nil channel discards it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func queuedPosterUpdate(step, total int, m models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueuePoster,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Queued poster for %s", m.Title),
	}
}

func posterSavedUpdate(step, total int, res PosterResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadPoster,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s → %s", res.Title, res.File),
		Data:    res,
	}
}

func posterFailedUpdate(step, total int, res PosterResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadPoster,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %s", res.Title, res.Error),
		Data:    res,
	}
}

func posterSkippedUpdate(step, total int, res PosterResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipPoster,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("- %s has no poster", res.Title),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}

package jobs

import (
	"toolbox/internal/progress"
)

// Kind identifies the type of work a job performs.
type Kind string

const (
	KindEncode       Kind = "encode"
	KindExtractAudio Kind = "extract_audio"
	KindTrim         Kind = "trim"
	KindGif          Kind = "gif"
	KindDownload     Kind = "download"
)

// IsDownload reports whether the kind runs yt-dlp rather than ffmpeg.
func (k Kind) IsDownload() bool {
	return k == KindDownload
}

// Outcome is the terminal result of a job.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// EventType distinguishes progress reports from terminal events.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// Event is one notification about a job. Delivery is fire-and-forget: slow
// or absent consumers never stall the job itself.
type Event struct {
	JobID string
	Kind  Kind
	Type  EventType

	// Progress payloads, populated for EventProgress depending on kind.
	Encode   *progress.EncodeUpdate
	Download *progress.DownloadUpdate

	// OutputPath is set on EventCompleted.
	OutputPath string
	// Message carries the failure description on EventFailed.
	Message string
}

// Status is a snapshot of the manager's slot.
type Status struct {
	Active bool
	JobID  string
	Kind   Kind
	PID    int
}

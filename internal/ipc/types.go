package ipc

import (
	"time"

	"toolbox/internal/media/ffprobe"
	"toolbox/internal/toolargs"
)

// EncodeSpec mirrors the toolargs spec for IPC callers.
type EncodeSpec = toolargs.EncodeSpec

// ExtractAudioSpec mirrors the toolargs spec for IPC callers.
type ExtractAudioSpec = toolargs.ExtractAudioSpec

// TrimSpec mirrors the toolargs spec for IPC callers.
type TrimSpec = toolargs.TrimSpec

// GifSpec mirrors the toolargs spec for IPC callers.
type GifSpec = toolargs.GifSpec

// DownloadSpec mirrors the toolargs spec for IPC callers.
type DownloadSpec = toolargs.DownloadSpec

// MediaInfo mirrors the ffprobe summary for IPC callers.
type MediaInfo = ffprobe.Metadata

// StartEncodeRequest launches a transcode job.
type StartEncodeRequest struct {
	Spec EncodeSpec `json:"spec"`
}

// StartExtractAudioRequest launches an audio extraction job.
type StartExtractAudioRequest struct {
	Spec ExtractAudioSpec `json:"spec"`
}

// StartTrimRequest launches a lossless trim job.
type StartTrimRequest struct {
	Spec TrimSpec `json:"spec"`
}

// StartGifRequest launches a GIF conversion job.
type StartGifRequest struct {
	Spec GifSpec `json:"spec"`
}

// StartDownloadRequest launches a download job.
type StartDownloadRequest struct {
	Spec DownloadSpec `json:"spec"`
}

// StartJobResponse reports the launched job.
type StartJobResponse struct {
	JobID      string `json:"job_id"`
	OutputPath string `json:"output_path,omitempty"`
}

// CancelRequest asks the daemon to terminate the active job.
type CancelRequest struct{}

// CancelResponse reports whether a job was there to cancel.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// ProgressInfo is the latest progress report of the active job.
type ProgressInfo struct {
	JobID   string  `json:"job_id"`
	Kind    string  `json:"kind"`
	Percent float64 `json:"percent"`
	Stage   string  `json:"stage,omitempty"`
	Time    string  `json:"time,omitempty"`
	Speed   string  `json:"speed,omitempty"`
	Size    string  `json:"size,omitempty"`
	ETA     string  `json:"eta,omitempty"`
}

// ResultInfo is the most recent terminal job outcome.
type ResultInfo struct {
	JobID      string    `json:"job_id"`
	Kind       string    `json:"kind"`
	Outcome    string    `json:"outcome"`
	OutputPath string    `json:"output_path,omitempty"`
	Message    string    `json:"message,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// DependencyStatus reports availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusResponse carries the daemon status snapshot.
type StatusResponse struct {
	Running      bool               `json:"running"`
	Active       bool               `json:"active"`
	JobID        string             `json:"job_id,omitempty"`
	Kind         string             `json:"kind,omitempty"`
	PID          int                `json:"pid,omitempty"`
	Progress     *ProgressInfo      `json:"progress,omitempty"`
	LastResult   *ResultInfo        `json:"last_result,omitempty"`
	LockPath     string             `json:"lock_path"`
	HistoryPath  string             `json:"history_path"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// HistoryRequest fetches recent job outcomes.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryEntry is one recorded job outcome.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	JobID      string    `json:"job_id"`
	Kind       string    `json:"kind"`
	Outcome    string    `json:"outcome"`
	OutputPath string    `json:"output_path,omitempty"`
	Message    string    `json:"message,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// HistoryResponse lists recorded job outcomes, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// HistoryClearRequest removes all recorded outcomes.
type HistoryClearRequest struct{}

// HistoryClearResponse confirms the clear.
type HistoryClearResponse struct {
	Cleared bool `json:"cleared"`
}

// InspectRequest probes a media file.
type InspectRequest struct {
	Path string `json:"path"`
}

// InspectResponse carries the media summary.
type InspectResponse struct {
	Media MediaInfo `json:"media"`
}

// EncodersRequest probes ffmpeg for hardware encoder support.
type EncodersRequest struct{}

// EncodersResponse reports available hardware encoder families.
type EncodersResponse struct {
	NVENC bool `json:"nvenc"`
	AMF   bool `json:"amf"`
	QSV   bool `json:"qsv"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse confirms shutdown.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

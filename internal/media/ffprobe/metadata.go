package ffprobe

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the display-oriented summary of a media file.
type Metadata struct {
	Resolution      string
	Width           int
	Height          int
	Duration        string // HH:MM:SS
	DurationSeconds float64
	Bitrate         string // like "2500 kbps", empty when unknown
	FPS             float64
	VideoCodec      string
	AudioStreams    int
	Container       string
	SizeBytes       int64
}

// Summarize shapes a probe result into display metadata.
func (r Result) Summarize() Metadata {
	meta := Metadata{
		Resolution:   "Unknown",
		Duration:     "00:00:00",
		AudioStreams: r.AudioStreamCount(),
		Container:    r.Format.FormatName,
		SizeBytes:    r.SizeBytes(),
	}

	if video, ok := r.VideoStream(); ok {
		meta.VideoCodec = video.CodecName
		if video.Width > 0 && video.Height > 0 {
			meta.Width = video.Width
			meta.Height = video.Height
			meta.Resolution = fmt.Sprintf("%dx%d", video.Width, video.Height)
		}
		meta.FPS = parseFrameRate(video.AvgFrameRate)
	}

	if seconds := r.DurationSeconds(); seconds > 0 {
		meta.DurationSeconds = seconds
		total := int(seconds)
		meta.Duration = fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
	}
	if rate := r.BitRate(); rate > 0 {
		meta.Bitrate = fmt.Sprintf("%d kbps", rate/1000)
	}
	return meta
}

// parseFrameRate converts ffprobe's rational frame rate ("30000/1001") to a
// float. Zero denominators, which ffprobe uses for unknown rates, yield 0.
func parseFrameRate(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		return 0
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

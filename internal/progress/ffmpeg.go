package progress

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	durationPattern = regexp.MustCompile(`Duration:\s*(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	timePattern     = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	speedPattern    = regexp.MustCompile(`speed=\s*(\d+\.?\d*)x`)
)

// EncodeUpdate is one parsed ffmpeg progress report.
type EncodeUpdate struct {
	Percent int
	Time    string
	Speed   string
}

// FFmpegParser extracts progress from ffmpeg's stderr records.
//
// The total duration is taken from the first "Duration:" record and cached;
// later occurrences (chapter markers, attached streams) are ignored. Until a
// duration is known, progress reports carry 0%.
type FFmpegParser struct {
	durationSeconds float64
	haveDuration    bool
}

// NewFFmpegParser constructs a parser for a single ffmpeg run.
func NewFFmpegParser() *FFmpegParser {
	return &FFmpegParser{}
}

// OverrideDuration fixes the total duration up front, for runs where the
// timeline ffmpeg reports does not match the span actually being processed
// (trims, concatenation).
func (p *FFmpegParser) OverrideDuration(seconds float64) {
	if seconds > 0 {
		p.durationSeconds = seconds
		p.haveDuration = true
	}
}

// Parse inspects one record. The boolean result reports whether the record
// contained a progress update worth delivering.
func (p *FFmpegParser) Parse(record string) (EncodeUpdate, bool) {
	if !p.haveDuration {
		if m := durationPattern.FindStringSubmatch(record); m != nil {
			p.durationSeconds = clockSeconds(m[1], m[2], m[3])
			p.haveDuration = p.durationSeconds > 0
		}
	}

	m := timePattern.FindStringSubmatch(record)
	if m == nil {
		return EncodeUpdate{}, false
	}
	current := clockSeconds(m[1], m[2], m[3])

	percent := 0
	if p.haveDuration && p.durationSeconds > 0 {
		percent = int(math.Round(math.Min(current/p.durationSeconds*100, 99)))
	}

	speed := "N/A"
	if sm := speedPattern.FindStringSubmatch(record); sm != nil {
		speed = sm[1] + "x"
	}

	return EncodeUpdate{
		Percent: percent,
		Time:    fmt.Sprintf("%02d:%02d:%02d", int(current)/3600, int(current)%3600/60, int(current)%60),
		Speed:   speed,
	}, true
}

func clockSeconds(h, m, s string) float64 {
	hours, _ := strconv.ParseFloat(h, 64)
	minutes, _ := strconv.ParseFloat(m, 64)
	seconds, _ := strconv.ParseFloat(s, 64)
	return hours*3600 + minutes*60 + seconds
}

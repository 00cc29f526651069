package toolargs

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Crop is an optional crop rectangle for GIF conversion.
type Crop struct {
	X int
	Y int
	W int
	H int
}

// GifSpec describes a video-to-GIF conversion.
type GifSpec struct {
	Input        string
	OutputFolder string

	FPS   int     // defaults to 15
	Width int     // output width in pixels, defaults to 480
	Speed float64 // playback speed multiplier, defaults to 1.0
	Crop  *Crop

	// Optional trim range. Start alone seeks; start and end together bound
	// the clip length.
	StartSeconds float64
	EndSeconds   float64

	// SourceDuration is the input's duration, used for progress when no
	// trim range narrows it.
	SourceDuration float64
}

// EffectiveDuration returns the span ffmpeg will actually process, for
// progress percentage computation.
func (s GifSpec) EffectiveDuration() float64 {
	if s.EndSeconds > s.StartSeconds {
		return math.Max(s.EndSeconds-s.StartSeconds, 0.1)
	}
	if s.SourceDuration > 0 {
		return s.SourceDuration
	}
	return 100
}

// Build returns the ffmpeg argument vector and the derived output path.
// A palettegen/paletteuse chain is used so the GIF gets a per-clip palette
// instead of the generic 256 colors.
func (s GifSpec) Build() ([]string, string, error) {
	if strings.TrimSpace(s.Input) == "" {
		return nil, "", errors.New("gif input required")
	}

	fps := s.FPS
	if fps <= 0 {
		fps = 15
	}
	width := s.Width
	if width <= 0 {
		width = 480
	}

	var cropFilter string
	if s.Crop != nil && s.Crop.W > 0 && s.Crop.H > 0 {
		cropFilter = fmt.Sprintf(",crop=%d:%d:%d:%d", s.Crop.W, s.Crop.H, s.Crop.X, s.Crop.Y)
	}
	var speedFilter string
	if speed := s.Speed; !math.IsNaN(speed) && !math.IsInf(speed, 0) && math.Abs(speed-1.0) > 0.00001 && speed > 0 {
		speedFilter = fmt.Sprintf(",setpts=PTS/%g", speed)
	}

	// Filter order: crop, speed, fps, scale, then palette.
	filters := fmt.Sprintf(
		"[0:v]%s%sfps=%d,scale=%d:-1:flags=lanczos[v];[v]split[v1][v2];[v1]palettegen=stats_mode=diff[p];[v2][p]paletteuse=dither=sierra2_4a[out]",
		cropFilter, speedFilter, fps, width)

	outputPath := outputPathFor(s.Input, s.OutputFolder, inputStem(s.Input)+"_converted.gif")

	args := []string{"-y"}
	if s.StartSeconds > 0 && !math.IsInf(s.StartSeconds, 0) {
		args = append(args, "-ss", fmt.Sprintf("%.3f", s.StartSeconds))
	}
	args = append(args, "-i", s.Input)
	if s.EndSeconds > s.StartSeconds && !math.IsInf(s.EndSeconds, 0) {
		args = append(args, "-t", fmt.Sprintf("%.3f", s.EndSeconds-s.StartSeconds))
	}
	args = append(args,
		"-filter_complex", filters,
		"-map", "[out]",
		outputPath)
	return args, outputPath, nil
}

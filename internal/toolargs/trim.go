package toolargs

import (
	"errors"
	"strconv"
	"strings"
)

// TrimSpec describes a lossless trim operation.
type TrimSpec struct {
	Input        string
	OutputFolder string
	StartSeconds float64
	EndSeconds   float64
}

// Build returns the ffmpeg argument vector, the derived output path, and the
// effective trim duration in seconds used for progress percentages.
//
// Bounds are repaired rather than rejected: a negative start is clamped to
// zero and an end at or before the start yields a one second clip.
func (s TrimSpec) Build() ([]string, string, float64, error) {
	if strings.TrimSpace(s.Input) == "" {
		return nil, "", 0, errors.New("trim input required")
	}

	start := s.StartSeconds
	if start < 0 {
		start = 0
	}
	end := s.EndSeconds
	if end < start+1 {
		end = start + 1
	}
	duration := end - start

	outputPath := outputPathFor(s.Input, s.OutputFolder, inputStem(s.Input)+"_trimmed.mp4")

	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", s.Input,
		"-t", formatSeconds(duration),
		"-c", "copy",
		outputPath,
	}
	return args, outputPath, duration, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package ffprobe

import (
	"context"
	"os/exec"
	"strings"
)

// HardwareEncoders reports which hardware encoder families an ffmpeg build
// advertises.
type HardwareEncoders struct {
	NVENC bool
	AMF   bool
	QSV   bool
}

// DetectEncoders asks ffmpeg for its encoder list and scans it for the
// hardware families. ffmpeg prints the list to stdout but errors to stderr,
// so both are searched.
func DetectEncoders(ctx context.Context, ffmpegBinary string) (HardwareEncoders, error) {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	output, err := exec.CommandContext(ctx, binary, "-encoders").CombinedOutput()
	if err != nil {
		return HardwareEncoders{}, err
	}
	return scanEncoders(string(output)), nil
}

func scanEncoders(listing string) HardwareEncoders {
	return HardwareEncoders{
		NVENC: strings.Contains(listing, "h264_nvenc") || strings.Contains(listing, "hevc_nvenc"),
		AMF:   strings.Contains(listing, "h264_amf") || strings.Contains(listing, "hevc_amf"),
		QSV:   strings.Contains(listing, "h264_qsv") || strings.Contains(listing, "hevc_qsv"),
	}
}

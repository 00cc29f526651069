package toolargs

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"toolbox/internal/textutil"
)

var bitratePattern = regexp.MustCompile(`^\d+[kKmM]$`)

// downloadUserAgent is sent to servers that reject the default yt-dlp agent.
const downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DownloadMode selects whether the download keeps video or extracts audio.
type DownloadMode string

const (
	ModeVideo DownloadMode = "video"
	ModeAudio DownloadMode = "audio"
)

// PostCodec is a re-encode target applied by yt-dlp's postprocessor.
type PostCodec string

const (
	PostCopy PostCodec = "copy"
	PostH264 PostCodec = "h264"
	PostH265 PostCodec = "h265"
	PostVP9  PostCodec = "vp9"
	PostAV1  PostCodec = "av1"
)

func (c PostCodec) encoderName() (string, error) {
	switch c {
	case PostCopy:
		return "copy", nil
	case PostH264:
		return "libx264", nil
	case PostH265:
		return "libx265", nil
	case PostVP9:
		return "libvpx-vp9", nil
	case PostAV1:
		return "libaom-av1", nil
	default:
		return "", fmt.Errorf("unsupported post-processing codec %q", string(c))
	}
}

// DownloadSpec describes a yt-dlp download.
type DownloadSpec struct {
	URL          string
	OutputFolder string
	FileName     string // optional fixed name; dots are flattened for the output template

	Mode DownloadMode // defaults to video

	// Video mode options.
	Format   Container // target container for merged streams
	FormatID string    // explicit yt-dlp format id
	Quality  string    // "best" or a max height like "1080"

	// Audio mode options.
	AudioFormat  AudioFormat // defaults to mp3
	AudioBitrate string

	// Optional re-encode applied by yt-dlp's postprocessor.
	VideoCodec   PostCodec
	VideoBitrate string // like "2500k", validated
	FPS          string

	// FFmpegLocation points yt-dlp at a specific ffmpeg binary.
	FFmpegLocation string
}

// FileNameBase returns the template-safe base name used in the output
// template. Filesystem-unsafe characters are stripped and dots flattened so
// yt-dlp's extension substitution is not confused.
func (s DownloadSpec) FileNameBase() string {
	name := textutil.SanitizeFileName(s.FileName)
	if name == "" {
		return ""
	}
	return strings.ReplaceAll(name, ".", "_")
}

// ExpectedExt returns the extension the finished file should carry, used to
// reconstruct the output path when yt-dlp never announced one.
func (s DownloadSpec) ExpectedExt() string {
	if s.Mode == ModeAudio {
		if s.AudioFormat != "" {
			return string(s.AudioFormat)
		}
		return string(FormatMP3)
	}
	if s.Format != "" {
		return string(s.Format)
	}
	return string(ContainerMP4)
}

// Build returns the yt-dlp argument vector. The URL must be http or https;
// yt-dlp accepts other schemes but nothing good comes of passing it local
// paths from user input.
func (s DownloadSpec) Build() ([]string, error) {
	parsed, err := url.Parse(strings.TrimSpace(s.URL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid download url %q", s.URL)
	}
	mode := s.Mode
	if mode == "" {
		mode = ModeVideo
	}
	if mode != ModeVideo && mode != ModeAudio {
		return nil, fmt.Errorf("unsupported download mode %q", string(s.Mode))
	}

	var template string
	if base := s.FileNameBase(); base != "" {
		template = fmt.Sprintf("%s/%s.%%(ext)s", s.OutputFolder, base)
	} else {
		template = fmt.Sprintf("%s/%%(title)s.%%(ext)s", s.OutputFolder)
	}
	args := []string{"-o", template}

	if s.FFmpegLocation != "" {
		if _, err := os.Stat(s.FFmpegLocation); err == nil {
			args = append(args, "--ffmpeg-location", s.FFmpegLocation)
		}
	}

	if mode == ModeAudio {
		audioFormat := s.AudioFormat
		if audioFormat == "" {
			audioFormat = FormatMP3
		}
		if _, err := audioFormat.encoderName(); err != nil {
			return nil, err
		}
		args = append(args, "-x", "--audio-format", string(audioFormat))
		if s.AudioBitrate != "" {
			args = append(args, "--audio-quality", s.AudioBitrate)
		}
	} else {
		if s.Format != "" {
			if !s.Format.valid() {
				return nil, fmt.Errorf("unsupported container %q", string(s.Format))
			}
			args = append(args, "--merge-output-format", string(s.Format))
		}

		switch {
		case s.FormatID != "":
			if !strings.Contains(s.FormatID, "+") {
				args = append(args, "-f", s.FormatID+"+bestaudio/best")
			} else {
				args = append(args, "-f", s.FormatID)
			}
		case s.Quality == "best":
			args = append(args, "-f", "bestvideo+bestaudio/best")
		case s.Quality != "":
			container := s.Format
			if container == "" {
				container = ContainerMP4
			}
			// Prefer a stream at or below the requested height in the chosen
			// container, with progressively looser fallbacks.
			selector := fmt.Sprintf(
				"bv*[height<=%[1]s][ext=%[2]s]+ba/b[height<=%[1]s][ext=%[2]s]/bv*[height<=%[1]s]+ba/b[height<=%[1]s]/best",
				s.Quality, string(container))
			args = append(args, "-f", selector)
		}

		ppArgs, err := s.postprocessorArgs()
		if err != nil {
			return nil, err
		}
		if len(ppArgs) > 0 {
			args = append(args, "--postprocessor-args", "ffmpeg:"+strings.Join(ppArgs, " "))
		}
	}

	args = append(args,
		"--progress",
		"--no-cache-dir",
		"--no-check-certificates",
		"--force-ipv4",
		"--force-overwrites",
		"--user-agent", downloadUserAgent,
		s.URL)
	return args, nil
}

func (s DownloadSpec) postprocessorArgs() ([]string, error) {
	needsReencode := (s.FPS != "" && s.FPS != "none") ||
		(s.VideoBitrate != "" && s.VideoBitrate != "none") ||
		(s.VideoCodec != "" && s.VideoCodec != PostCopy)
	if !needsReencode {
		return nil, nil
	}

	var args []string
	if s.VideoCodec != "" {
		encoder, err := s.VideoCodec.encoderName()
		if err != nil {
			return nil, err
		}
		args = append(args, "-c:v", encoder)
	}
	if s.VideoBitrate != "" && s.VideoBitrate != "none" {
		if !bitratePattern.MatchString(s.VideoBitrate) {
			return nil, fmt.Errorf("invalid video bitrate %q", s.VideoBitrate)
		}
		args = append(args, "-b:v", s.VideoBitrate)
	}
	if s.FPS != "" && s.FPS != "none" {
		args = append(args, "-r", s.FPS)
	}
	args = append(args, "-c:a", "copy")
	return args, nil
}

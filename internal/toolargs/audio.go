package toolargs

import (
	"errors"
	"fmt"
	"strings"
)

// AudioFormat is a supported audio extraction target.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatAAC  AudioFormat = "aac"
	FormatFLAC AudioFormat = "flac"
	FormatWAV  AudioFormat = "wav"
	FormatOGG  AudioFormat = "ogg"
	FormatOpus AudioFormat = "opus"
)

// extension returns the container extension for the format. aac lands in an
// m4a container; everything else matches its format name.
func (f AudioFormat) extension() (string, error) {
	switch f {
	case FormatAAC:
		return "m4a", nil
	case FormatMP3, FormatFLAC, FormatWAV, FormatOGG, FormatOpus:
		return string(f), nil
	default:
		return "", fmt.Errorf("unsupported audio format %q", string(f))
	}
}

func (f AudioFormat) encoderName() (string, error) {
	switch f {
	case FormatMP3:
		return "libmp3lame", nil
	case FormatAAC:
		return "aac", nil
	case FormatFLAC:
		return "flac", nil
	case FormatWAV:
		return "pcm_s16le", nil
	case FormatOGG:
		return "libvorbis", nil
	case FormatOpus:
		return "libopus", nil
	default:
		return "", fmt.Errorf("unsupported audio format %q", string(f))
	}
}

// MP3RateMode selects CBR or VBR mp3 encoding.
type MP3RateMode string

const (
	MP3CBR MP3RateMode = "cbr"
	MP3VBR MP3RateMode = "vbr"
)

// ExtractAudioSpec describes an audio extraction operation.
type ExtractAudioSpec struct {
	Input        string
	OutputFolder string
	Format       AudioFormat // defaults to mp3
	SampleRate   string      // 44100, 48000, or 96000
	Bitrate      string

	// FLACLevel selects the flac compression level, "0" through "8".
	FLACLevel string

	MP3Mode    MP3RateMode // defaults to cbr
	MP3Quality string
}

// Build returns the ffmpeg argument vector and the derived output path.
func (s ExtractAudioSpec) Build() ([]string, string, error) {
	if strings.TrimSpace(s.Input) == "" {
		return nil, "", errors.New("extract audio input required")
	}
	format := s.Format
	if format == "" {
		format = FormatMP3
	}
	ext, err := format.extension()
	if err != nil {
		return nil, "", err
	}
	encoder, err := format.encoderName()
	if err != nil {
		return nil, "", err
	}
	outputPath := outputPathFor(s.Input, s.OutputFolder, inputStem(s.Input)+"_audio."+ext)

	args := []string{"-y", "-i", s.Input, "-vn", "-c:a", encoder}

	switch s.SampleRate {
	case "":
	case "44100", "48000", "96000":
		args = append(args, "-ar", s.SampleRate)
	default:
		return nil, "", fmt.Errorf("unsupported sample rate %q", s.SampleRate)
	}

	if s.FLACLevel != "" {
		if format != FormatFLAC {
			return nil, "", fmt.Errorf("flac level set for %s output", string(format))
		}
		if len(s.FLACLevel) != 1 || s.FLACLevel < "0" || s.FLACLevel > "8" {
			return nil, "", fmt.Errorf("flac compression level %q out of range", s.FLACLevel)
		}
		args = append(args, "-compression_level", s.FLACLevel)
	}

	switch s.MP3Mode {
	case "", MP3CBR:
		if s.Bitrate != "" {
			args = append(args, "-b:a", s.Bitrate)
		}
	case MP3VBR:
		if format != FormatMP3 {
			return nil, "", fmt.Errorf("vbr mode set for %s output", string(format))
		}
		if s.MP3Quality != "" {
			args = append(args, "-q:a", s.MP3Quality)
		}
	default:
		return nil, "", fmt.Errorf("unsupported mp3 mode %q", string(s.MP3Mode))
	}

	args = append(args, outputPath)
	return args, outputPath, nil
}

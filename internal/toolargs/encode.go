package toolargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EncodeSpec describes a transcode operation.
type EncodeSpec struct {
	Input        string
	OutputFolder string
	OutputSuffix string    // defaults to "_encoded"
	Format       Container // defaults to mp4

	Codec      VideoCodec // empty leaves the encoder to ffmpeg defaults
	Resolution Resolution // empty keeps the source resolution
	Preset     string
	RateMode   RateMode // defaults to crf
	CRF        int
	BitrateK   int // video bitrate in kbit/s when RateMode is bitrate
	FPS        string

	AudioCodec   AudioCodec
	AudioBitrate string

	// Extra -i inputs muxed alongside the main file.
	ExtraAudioInputs    []string
	ExtraSubtitleInputs []string

	Threads    int
	CustomArgs string
}

// Build returns the ffmpeg argument vector and the derived output path.
func (s EncodeSpec) Build() ([]string, string, error) {
	if strings.TrimSpace(s.Input) == "" {
		return nil, "", errors.New("encode input required")
	}
	format := s.Format
	if format == "" {
		format = ContainerMP4
	}
	subtitleCodec, err := format.subtitleCodec()
	if err != nil {
		return nil, "", err
	}
	rateMode := s.RateMode
	if rateMode == "" {
		rateMode = RateCRF
	}
	if rateMode != RateCRF && rateMode != RateBitrate {
		return nil, "", fmt.Errorf("unsupported rate mode %q", string(rateMode))
	}

	suffix := s.OutputSuffix
	if suffix == "" {
		suffix = "_encoded"
	}
	outputPath := outputPathFor(s.Input, s.OutputFolder, inputStem(s.Input)+suffix+"."+string(format))

	args := []string{"-i", s.Input}
	for _, extra := range s.ExtraAudioInputs {
		args = append(args, "-i", extra)
	}
	for _, extra := range s.ExtraSubtitleInputs {
		args = append(args, "-i", extra)
	}

	args = append(args, "-y", "-map", "0:v:0")
	if s.AudioCodec == AudioNone {
		args = append(args, "-an")
	} else {
		args = append(args, "-map", "0:a:0")
	}
	args = append(args, "-map", "0:s?")

	switch s.Codec {
	case "":
	case VideoCopy:
		args = append(args, "-c:v", "copy")
	default:
		encoder, err := s.Codec.encoderName()
		if err != nil {
			return nil, "", err
		}
		args = append(args, "-c:v", encoder)

		if s.Resolution != "" {
			height, err := s.Resolution.scaleHeight()
			if err != nil {
				return nil, "", err
			}
			if height != "" {
				args = append(args, "-vf", "scale=-2:"+height)
			}
		}
		if s.Preset != "" {
			args = append(args, "-preset", s.Preset)
		}
		if rateMode == RateBitrate {
			if s.BitrateK > 0 {
				args = append(args, "-b:v", fmt.Sprintf("%dk", s.BitrateK))
			}
		} else if s.CRF > 0 {
			args = append(args, "-crf", strconv.Itoa(s.CRF))
		}
		if s.FPS != "" && s.FPS != "source" {
			args = append(args, "-r", s.FPS)
		}
	}

	switch s.AudioCodec {
	case "", AudioNone:
	case AudioCopy:
		args = append(args, "-c:a", "copy")
	default:
		encoder, err := s.AudioCodec.encoderName()
		if err != nil {
			return nil, "", err
		}
		args = append(args, "-c:a", encoder)
		if s.AudioBitrate != "" {
			args = append(args, "-b:a", s.AudioBitrate)
		}
	}

	args = append(args, "-c:s", subtitleCodec)

	if s.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(s.Threads))
	}
	if s.CustomArgs != "" {
		args = append(args, strings.Fields(s.CustomArgs)...)
	}

	args = append(args, outputPath)
	return args, outputPath, nil
}

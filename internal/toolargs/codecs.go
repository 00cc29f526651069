package toolargs

import "fmt"

// Container is an output container the toolbox can produce. The set is
// closed; Build methods reject anything else instead of guessing.
type Container string

const (
	ContainerMP4  Container = "mp4"
	ContainerMKV  Container = "mkv"
	ContainerMOV  Container = "mov"
	ContainerWebM Container = "webm"
)

// subtitleCodec returns the -c:s value for the container. mp4 and mov need
// text subtitles converted; the rest pass through.
func (c Container) subtitleCodec() (string, error) {
	switch c {
	case ContainerMP4, ContainerMOV:
		return "mov_text", nil
	case ContainerMKV, ContainerWebM:
		return "copy", nil
	default:
		return "", fmt.Errorf("unsupported container %q", string(c))
	}
}

func (c Container) valid() bool {
	switch c {
	case ContainerMP4, ContainerMKV, ContainerMOV, ContainerWebM:
		return true
	default:
		return false
	}
}

// VideoCodec names a supported video encoding choice.
type VideoCodec string

const (
	VideoCopy      VideoCodec = "copy"
	VideoH264      VideoCodec = "h264"
	VideoH265      VideoCodec = "h265"
	VideoVP9       VideoCodec = "vp9"
	VideoH264NVENC VideoCodec = "h264_nvenc"
	VideoHEVCNVENC VideoCodec = "hevc_nvenc"
	VideoH264AMF   VideoCodec = "h264_amf"
	VideoHEVCAMF   VideoCodec = "hevc_amf"
	VideoH264QSV   VideoCodec = "h264_qsv"
	VideoHEVCQSV   VideoCodec = "hevc_qsv"
)

// encoderName returns the ffmpeg encoder for the codec. VideoCopy has no
// encoder and is handled by callers before reaching here.
func (c VideoCodec) encoderName() (string, error) {
	switch c {
	case VideoH264:
		return "libx264", nil
	case VideoH265:
		return "libx265", nil
	case VideoVP9:
		return "libvpx-vp9", nil
	case VideoH264NVENC, VideoHEVCNVENC, VideoH264AMF, VideoHEVCAMF, VideoH264QSV, VideoHEVCQSV:
		return string(c), nil
	default:
		return "", fmt.Errorf("unsupported video codec %q", string(c))
	}
}

// AudioCodec names a supported audio encoding choice for transcodes.
type AudioCodec string

const (
	AudioNone AudioCodec = "none"
	AudioCopy AudioCodec = "copy"
	AudioAAC  AudioCodec = "aac"
	AudioOpus AudioCodec = "opus"
	AudioMP3  AudioCodec = "mp3"
	AudioAC3  AudioCodec = "ac3"
	AudioFLAC AudioCodec = "flac"
	AudioPCM  AudioCodec = "pcm_s16le"
)

func (c AudioCodec) encoderName() (string, error) {
	switch c {
	case AudioAAC:
		return "aac", nil
	case AudioOpus:
		return "libopus", nil
	case AudioMP3:
		return "libmp3lame", nil
	case AudioAC3:
		return "ac3", nil
	case AudioFLAC:
		return "flac", nil
	case AudioPCM:
		return "pcm_s16le", nil
	default:
		return "", fmt.Errorf("unsupported audio codec %q", string(c))
	}
}

// Resolution is a rung on the supported scaling ladder.
type Resolution string

const (
	ResolutionSource Resolution = "source"
	Resolution4320p  Resolution = "4320p"
	Resolution2160p  Resolution = "2160p"
	Resolution1080p  Resolution = "1080p"
	Resolution720p   Resolution = "720p"
	Resolution480p   Resolution = "480p"
	Resolution360p   Resolution = "360p"
)

// scaleHeight returns the target height for -vf scale, or "" when the
// source resolution is kept.
func (r Resolution) scaleHeight() (string, error) {
	switch r {
	case ResolutionSource:
		return "", nil
	case Resolution4320p:
		return "4320", nil
	case Resolution2160p:
		return "2160", nil
	case Resolution1080p:
		return "1080", nil
	case Resolution720p:
		return "720", nil
	case Resolution480p:
		return "480", nil
	case Resolution360p:
		return "360", nil
	default:
		return "", fmt.Errorf("unsupported resolution %q", string(r))
	}
}

// RateMode selects the video rate control strategy.
type RateMode string

const (
	RateCRF     RateMode = "crf"
	RateBitrate RateMode = "bitrate"
)

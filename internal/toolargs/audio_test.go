package toolargs

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestExtractAudioBuildMP3Default(t *testing.T) {
	args, output, err := ExtractAudioSpec{Input: "/in/song.mkv"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if output != filepath.Join("/in", "song_audio.mp3") {
		t.Fatalf("output = %q", output)
	}
	assertArgPair(t, args, "-c:a", "libmp3lame")
	if !slices.Contains(args, "-vn") {
		t.Fatal("extraction must drop video")
	}
}

func TestExtractAudioAACUsesM4AContainer(t *testing.T) {
	_, output, err := ExtractAudioSpec{Input: "talk.mp4", Format: "aac"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if filepath.Ext(output) != ".m4a" {
		t.Fatalf("aac extraction should use m4a container, got %q", output)
	}
}

func TestExtractAudioFLACCompressionLevel(t *testing.T) {
	args, _, err := ExtractAudioSpec{Input: "in.mkv", Format: "flac", FLACLevel: "8"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-compression_level", "8")

	if _, _, err := (ExtractAudioSpec{Input: "in.mkv", Format: "flac", FLACLevel: "9"}).Build(); err == nil {
		t.Fatal("out-of-range compression level must be rejected")
	}
}

func TestExtractAudioMP3VBRBeatsBitrate(t *testing.T) {
	args, _, err := ExtractAudioSpec{
		Input:      "in.mkv",
		Format:     "mp3",
		MP3Mode:    "vbr",
		MP3Quality: "2",
		Bitrate:    "192k",
	}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-q:a", "2")
	if slices.Contains(args, "-b:a") {
		t.Fatal("vbr mode must not also set a bitrate")
	}
}

func TestExtractAudioSampleRateValidation(t *testing.T) {
	args, _, err := ExtractAudioSpec{Input: "in.mkv", SampleRate: "48000"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-ar", "48000")

	if _, _, err := (ExtractAudioSpec{Input: "in.mkv", SampleRate: "12345"}).Build(); err == nil {
		t.Fatal("unsupported sample rate must be rejected")
	}
}

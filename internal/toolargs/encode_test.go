package toolargs

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestEncodeBuildDefaults(t *testing.T) {
	spec := EncodeSpec{
		Input:      "/media/in/movie.mkv",
		Format:     "mp4",
		Codec:      "h264",
		CRF:        23,
		AudioCodec: "aac",
	}
	args, output, err := spec.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if output != filepath.Join("/media/in", "movie_encoded.mp4") {
		t.Fatalf("output = %q", output)
	}
	assertArgPair(t, args, "-c:v", "libx264")
	assertArgPair(t, args, "-crf", "23")
	assertArgPair(t, args, "-c:a", "aac")
	assertArgPair(t, args, "-c:s", "mov_text")
	if args[len(args)-1] != output {
		t.Fatalf("output path must be the final argument, got %q", args[len(args)-1])
	}
}

func TestEncodeBuildBitrateMode(t *testing.T) {
	spec := EncodeSpec{
		Input:    "clip.mov",
		Format:   "mkv",
		Codec:    "h265",
		RateMode: "bitrate",
		BitrateK: 2500,
		CRF:      23, // ignored in bitrate mode
	}
	args, _, err := spec.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-b:v", "2500k")
	if slices.Contains(args, "-crf") {
		t.Fatal("bitrate mode must not emit -crf")
	}
	assertArgPair(t, args, "-c:s", "copy")
}

func TestEncodeBuildResolutionAndFPS(t *testing.T) {
	spec := EncodeSpec{
		Input:      "clip.mp4",
		Codec:      "vp9",
		Resolution: "720p",
		FPS:        "30",
		Preset:     "slow",
	}
	args, _, err := spec.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-vf", "scale=-2:720")
	assertArgPair(t, args, "-r", "30")
	assertArgPair(t, args, "-preset", "slow")
}

func TestEncodeBuildSourcePassthrough(t *testing.T) {
	args, _, err := EncodeSpec{Input: "clip.mp4", Codec: "copy", Resolution: "source", FPS: "source"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-c:v", "copy")
	if slices.Contains(args, "-vf") || slices.Contains(args, "-r") {
		t.Fatal("source resolution and fps must not emit filters")
	}
}

func TestEncodeBuildNoAudio(t *testing.T) {
	args, _, err := EncodeSpec{Input: "clip.mp4", Codec: "h264", AudioCodec: "none"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !slices.Contains(args, "-an") {
		t.Fatal("audio 'none' must emit -an")
	}
	if slices.Contains(args, "0:a:0") {
		t.Fatal("audio 'none' must not map an audio stream")
	}
}

func TestEncodeBuildRejectsUnknownCodec(t *testing.T) {
	if _, _, err := (EncodeSpec{Input: "clip.mp4", Codec: "fancy-future-codec"}).Build(); err == nil {
		t.Fatal("unknown codec must be rejected")
	}
}

func TestEncodeBuildRequiresInput(t *testing.T) {
	if _, _, err := (EncodeSpec{}).Build(); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestEncodeBuildCustomArgs(t *testing.T) {
	args, _, err := EncodeSpec{Input: "clip.mp4", Codec: "h264", CustomArgs: "-movflags +faststart"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-movflags", "+faststart")
}

func assertArgPair(t *testing.T, args []string, flag, value string) {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			if i+1 >= len(args) {
				t.Fatalf("flag %s has no value in %v", flag, args)
			}
			if args[i+1] != value {
				t.Fatalf("flag %s = %q, want %q (args: %s)", flag, args[i+1], value, strings.Join(args, " "))
			}
			return
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
}

package toolargs

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestGifBuildDefaults(t *testing.T) {
	args, output, err := GifSpec{Input: "/v/clip.mp4"}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if output != filepath.Join("/v", "clip_converted.gif") {
		t.Fatalf("output = %q", output)
	}

	filters := argValue(t, args, "-filter_complex")
	if !strings.Contains(filters, "fps=15") || !strings.Contains(filters, "scale=480:-1") {
		t.Fatalf("default fps/width missing from filters: %q", filters)
	}
	if !strings.Contains(filters, "palettegen") || !strings.Contains(filters, "paletteuse") {
		t.Fatalf("palette chain missing: %q", filters)
	}
	if slices.Contains(args, "-ss") || slices.Contains(args, "-t") {
		t.Fatal("no trim range must mean no seek arguments")
	}
}

func TestGifBuildTrimRange(t *testing.T) {
	args, _, err := GifSpec{Input: "clip.mp4", StartSeconds: 2.5, EndSeconds: 7.5}.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertArgPair(t, args, "-ss", "2.500")
	assertArgPair(t, args, "-t", "5.000")
}

func TestGifBuildCropAndSpeed(t *testing.T) {
	spec := GifSpec{
		Input: "clip.mp4",
		Crop:  &Crop{X: 10, Y: 20, W: 640, H: 360},
		Speed: 2,
	}
	args, _, err := spec.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	filters := argValue(t, args, "-filter_complex")
	if !strings.Contains(filters, "crop=640:360:10:20") {
		t.Fatalf("crop filter missing: %q", filters)
	}
	if !strings.Contains(filters, "setpts=PTS/2") {
		t.Fatalf("speed filter missing: %q", filters)
	}
	// crop must come before the speed change so coordinates stay valid.
	if strings.Index(filters, "crop=") > strings.Index(filters, "setpts=") {
		t.Fatalf("filter order wrong: %q", filters)
	}
}

func TestGifEffectiveDuration(t *testing.T) {
	if d := (GifSpec{StartSeconds: 10, EndSeconds: 25}).EffectiveDuration(); d != 15 {
		t.Fatalf("trim range duration = %v", d)
	}
	if d := (GifSpec{SourceDuration: 90}).EffectiveDuration(); d != 90 {
		t.Fatalf("source duration = %v", d)
	}
	if d := (GifSpec{}).EffectiveDuration(); d != 100 {
		t.Fatalf("fallback duration = %v", d)
	}
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

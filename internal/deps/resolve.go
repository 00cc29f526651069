package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Tool identifies one of the external binaries the toolbox can launch.
type Tool string

const (
	ToolFFmpeg  Tool = "ffmpeg"
	ToolFFprobe Tool = "ffprobe"
	ToolYtDlp   Tool = "yt-dlp"
)

// ResolveTool returns the absolute path of the binary to launch for tool.
//
// A non-empty override from configuration wins outright and is resolved via
// PATH semantics so both bare names and explicit paths work. Otherwise the
// lookup prefers a binary next to the running executable, matching how
// bundled builds ship their tools, and falls back to PATH.
func ResolveTool(tool Tool, override string) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		resolved, err := exec.LookPath(trimmed)
		if err != nil {
			return "", fmt.Errorf("configured %s binary %q not found: %w", tool, trimmed, err)
		}
		return resolved, nil
	}

	if candidate, ok := sidecarCandidate(string(tool)); ok {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}

	resolved, err := exec.LookPath(string(tool))
	if err != nil {
		return "", fmt.Errorf("binary %q not found: %w", tool, err)
	}
	return resolved, nil
}

// CheckTool reports availability of a tool under the same resolution policy
// as ResolveTool, for status output.
func CheckTool(tool Tool, override, description string) Status {
	result := Status{
		Name:        string(tool),
		Description: description,
	}
	resolved, err := ResolveTool(tool, override)
	if err != nil {
		result.Command = strings.TrimSpace(override)
		if result.Command == "" {
			result.Command = string(tool)
		}
		result.Available = false
		result.Detail = err.Error()
		return result
	}
	result.Command = resolved
	result.Available = true
	return result
}

func sidecarCandidate(name string) (string, bool) {
	self, err := os.Executable()
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(self)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

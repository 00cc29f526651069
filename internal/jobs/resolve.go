package jobs

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveDownloadOutput determines the final file a download produced.
//
// The recorded path from tool output wins when it points at an actual file.
// When it is a directory or extensionless (yt-dlp was interrupted between
// its path announcements, or never made one), a path is reconstructed from
// the requested filename and expected extension; if that file does not
// exist either, the download directory is scanned for a file whose stem
// matches, since yt-dlp may have picked a different container.
func resolveDownloadOutput(recorded, downloadDir, fileNameBase, expectedExt string) string {
	resolved := recorded
	if resolved == "" {
		resolved = downloadDir
	}

	if !needsReconstruction(resolved) {
		return resolved
	}

	base := strings.ReplaceAll(strings.TrimSpace(fileNameBase), ".", "_")
	if base == "" {
		base = "downloaded_file"
	}

	constructed := filepath.Join(downloadDir, base+"."+strings.TrimPrefix(expectedExt, "."))
	if _, err := os.Stat(constructed); err == nil {
		return constructed
	}

	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		return resolved
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == base {
			return filepath.Join(downloadDir, name)
		}
	}
	return resolved
}

func needsReconstruction(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return true
	}
	return filepath.Ext(path) == ""
}

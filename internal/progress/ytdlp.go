package progress

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	downloadPercentPattern = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%`)
	downloadSizePattern    = regexp.MustCompile(`of\s+~?(\d+\.?\d*[KMG]iB)`)
	downloadSpeedPattern   = regexp.MustCompile(`at\s+(\d+\.?\d*[KMG]iB/s)`)
	downloadETAPattern     = regexp.MustCompile(`ETA\s+(\d{2}:\d{2})`)
	tagPattern             = regexp.MustCompile(`^\[([^\]]+)\]`)
	alreadyDownloaded      = regexp.MustCompile(`\[download\]\s+(.+?)\s+has already been downloaded`)
)

// DownloadUpdate is one parsed yt-dlp progress report.
type DownloadUpdate struct {
	Percent    float64
	HasPercent bool
	Size       string
	Speed      string
	ETA        string
	Status     string
}

// YtDlpParser extracts progress and the final output path from yt-dlp
// records. yt-dlp interleaves downloader and postprocessor output, so the
// last Destination or merge target seen wins as the recorded path.
type YtDlpParser struct {
	outputPath string
}

// NewYtDlpParser constructs a parser for a single yt-dlp run.
func NewYtDlpParser() *YtDlpParser {
	return &YtDlpParser{}
}

// OutputPath returns the most recent output path yt-dlp reported, or empty
// if none was seen.
func (p *YtDlpParser) OutputPath() string {
	return p.outputPath
}

// Parse inspects one record. The boolean result reports whether the record
// produced an update worth delivering.
func (p *YtDlpParser) Parse(record string) (DownloadUpdate, bool) {
	var update DownloadUpdate

	if m := downloadPercentPattern.FindStringSubmatch(record); m != nil {
		if value, err := strconv.ParseFloat(m[1], 64); err == nil {
			update.Percent = value
			update.HasPercent = true
		}
	}
	if m := downloadSizePattern.FindStringSubmatch(record); m != nil {
		update.Size = m[1]
	}
	if m := downloadSpeedPattern.FindStringSubmatch(record); m != nil {
		update.Speed = m[1]
	}
	if m := downloadETAPattern.FindStringSubmatch(record); m != nil {
		update.ETA = m[1]
	}

	// Path tracking. Downloader and postprocessors both report paths, e.g.
	// "[download] Destination: x.webm" then "[ExtractAudio] Destination: x.mp3".
	if idx := strings.Index(record, "Destination:"); idx >= 0 {
		if candidate := trimPathCandidate(record[idx+len("Destination:"):]); candidate != "" {
			p.outputPath = candidate
			update.Status = "Creating output file..."
		}
	} else if idx := strings.Index(record, "Merging formats into"); idx >= 0 {
		if candidate := trimPathCandidate(record[idx+len("Merging formats into"):]); candidate != "" {
			p.outputPath = candidate
			update.Status = "Merging audio and video..."
		}
	}
	if m := alreadyDownloaded.FindStringSubmatch(record); m != nil {
		p.outputPath = m[1]
	}

	switch {
	case strings.Contains(record, "Deleting original file"):
		update.Status = "Cleaning up temporary files..."
	case strings.Contains(record, "Fixing video timestamp"):
		update.Status = "Finalizing media timestamps..."
	}

	if m := tagPattern.FindStringSubmatch(record); m != nil {
		switch tag := m[1]; {
		case tag == "Merger":
			update.Status = "Merging audio and video..."
		case tag == "ExtractAudio":
			update.Status = "Extracting audio..."
		case tag == "info":
			switch {
			case strings.Contains(record, "Downloading webpage"):
				update.Status = "Fetching metadata..."
			case strings.Contains(record, "Downloading m3u8"):
				update.Status = "Preparing stream..."
			default:
				update.Status = "Extracting metadata..."
			}
		case tag == "download" && !update.HasPercent:
			if strings.Contains(record, "Destination:") {
				update.Status = "Creating output file..."
			} else if strings.Contains(record, "Downloading") {
				update.Status = "Starting download..."
			}
		}
	}

	if idx := strings.Index(record, "ERROR:"); idx >= 0 {
		update.Status = "Error: " + strings.TrimSpace(record[idx+len("ERROR:"):])
	}

	if update.HasPercent && update.Status == "" {
		if update.Percent >= 99.9 {
			update.Status = "Finalizing download..."
		} else {
			update.Status = "Downloading..."
		}
	}

	return update, update.HasPercent || update.Status != ""
}

func trimPathCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}

// Package progress turns raw tool output into structured progress updates.
//
// ffmpeg and yt-dlp both rewrite their status line in place using carriage
// returns, and yt-dlp switches between CR-only and LF-only framing depending
// on whether it thinks it has a terminal. The record scanner therefore splits
// on either delimiter so progress is parsed no matter how the tool frames
// its output.
package progress

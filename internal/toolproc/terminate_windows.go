//go:build windows

package toolproc

import (
	"os/exec"
	"strconv"
)

func configureSysProcAttr(cmd *exec.Cmd) {}

// killTree asks taskkill to remove the process and its children. ffmpeg and
// yt-dlp both spawn helpers on Windows, so /T matters.
func killTree(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}

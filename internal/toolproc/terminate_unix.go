//go:build unix

package toolproc

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree signals the process group so helper processes spawned by the tool
// die with it. Falls back to signalling the single process when the group
// signal fails.
func killTree(pid int) error {
	if err := unix.Kill(-pid, unix.SIGKILL); err == nil {
		return nil
	}
	return unix.Kill(pid, unix.SIGKILL)
}

package toolproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Spec describes a tool invocation.
type Spec struct {
	Binary string
	Args   []string
	Dir    string
}

// Process is a handle to a running tool.
//
// PID reports the operating system process id when it is known; a handle
// whose process could not be identified still streams output and waits
// normally, it just cannot be terminated early.
type Process interface {
	PID() (int, bool)
	Stdout() io.Reader
	Stderr() io.Reader
	Wait() error
}

// Launcher starts external tool processes with piped output streams.
type Launcher interface {
	Launch(ctx context.Context, spec Spec) (Process, error)
}

// CommandLauncher launches real processes via os/exec. Children are placed
// in their own process group on unix so Terminate can reach helpers the
// tool spawns.
type CommandLauncher struct{}

// Launch starts the tool described by spec with stdout and stderr piped.
func (CommandLauncher) Launch(ctx context.Context, spec Spec) (Process, error) {
	binary := strings.TrimSpace(spec.Binary)
	if binary == "" {
		return nil, errors.New("tool binary required")
	}

	cmd := exec.CommandContext(ctx, binary, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	configureSysProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	return &processHandle{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type processHandle struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *processHandle) PID() (int, bool) {
	if p.cmd.Process == nil {
		return 0, false
	}
	pid := p.cmd.Process.Pid
	if pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (p *processHandle) Stdout() io.Reader { return p.stdout }
func (p *processHandle) Stderr() io.Reader { return p.stderr }

func (p *processHandle) Wait() error {
	return p.cmd.Wait()
}

// ExitCode extracts the process exit code from a Wait error. The second
// return is false when the error carries no exit status, for example when
// the process never started or was killed by a signal without a code.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, true
		}
	}
	return 0, false
}

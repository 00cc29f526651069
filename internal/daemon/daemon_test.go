package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"toolbox/internal/config"
	"toolbox/internal/jobs"
	"toolbox/internal/toolargs"
	"toolbox/internal/toolproc"
)

type fakeProcess struct {
	pid     int
	stdout  io.Reader
	stderr  io.Reader
	waitErr error
	release chan struct{}
}

func (f *fakeProcess) PID() (int, bool) {
	if f.pid <= 0 {
		return 0, false
	}
	return f.pid, true
}

func (f *fakeProcess) Stdout() io.Reader { return f.stdout }
func (f *fakeProcess) Stderr() io.Reader { return f.stderr }

func (f *fakeProcess) Wait() error {
	if f.release != nil {
		<-f.release
	}
	return f.waitErr
}

type fakeLauncher struct {
	proc     *fakeProcess
	launched []toolproc.Spec
}

func (f *fakeLauncher) Launch(_ context.Context, spec toolproc.Spec) (toolproc.Process, error) {
	f.launched = append(f.launched, spec)
	return f.proc, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.DownloadDir = filepath.Join(root, "downloads")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.History.Enabled = true
	cfg.History.RetentionDays = 90

	stub := filepath.Join(root, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub tool: %v", err)
	}
	cfg.Tools.FFmpeg = stub
	cfg.Tools.FFprobe = stub
	cfg.Tools.YtDlp = stub
	return &cfg
}

func newTestDaemon(t *testing.T, launcher *fakeLauncher, kill func(int) error) *Daemon {
	t.Helper()
	if kill == nil {
		kill = func(int) error { return nil }
	}
	manager := jobs.NewManager(nil,
		jobs.WithLauncher(launcher),
		jobs.WithTerminator(toolproc.NewTerminator(nil, toolproc.WithKillFunc(kill))))

	d, err := New(testConfig(t), nil, WithManager(manager))
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func waitForResult(t *testing.T, d *Daemon) *ResultSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if result := d.Status().LastResult; result != nil {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for job result")
	return nil
}

func TestEncodeJobRecordsHistory(t *testing.T) {
	stderr := strings.Join([]string{
		"  Duration: 00:01:40.00, start: 0.000000",
		"frame= 100 time=00:00:50.00 speed=2.0x",
	}, "\n")
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:    200,
		stdout: strings.NewReader(""),
		stderr: strings.NewReader(stderr),
	}}
	d := newTestDaemon(t, launcher, nil)

	input := filepath.Join(t.TempDir(), "clip.mp4")
	jobID, outputPath, err := d.StartEncode(toolargs.EncodeSpec{
		Input: input,
		Codec: "h264",
	})
	if err != nil {
		t.Fatalf("start encode: %v", err)
	}
	if outputPath == "" {
		t.Fatalf("expected output path")
	}

	result := waitForResult(t, d)
	if result.JobID != jobID {
		t.Fatalf("result for wrong job: %q", result.JobID)
	}
	if result.Outcome != jobs.OutcomeSucceeded {
		t.Fatalf("expected succeeded outcome, got %q (%s)", result.Outcome, result.Message)
	}
	if result.OutputPath != outputPath {
		t.Fatalf("expected output %q, got %q", outputPath, result.OutputPath)
	}

	entries, err := d.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	if entries[0].JobID != jobID || entries[0].Outcome != jobs.OutcomeSucceeded {
		t.Fatalf("unexpected history entry %#v", entries[0])
	}

	if len(launcher.launched) != 1 {
		t.Fatalf("expected one launch, got %d", len(launcher.launched))
	}
	if got := launcher.launched[0].Binary; got != d.cfg.Tools.FFmpeg {
		t.Fatalf("expected configured ffmpeg %q, got %q", d.cfg.Tools.FFmpeg, got)
	}
}

func TestCancelRecordsCancelledOutcome(t *testing.T) {
	release := make(chan struct{})
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     201,
		stdout:  strings.NewReader(""),
		stderr:  strings.NewReader(""),
		release: release,
	}}
	var killed bool
	d := newTestDaemon(t, launcher, func(int) error {
		killed = true
		close(release)
		return nil
	})

	if _, _, err := d.StartTrim(toolargs.TrimSpec{
		Input:        filepath.Join(t.TempDir(), "clip.mp4"),
		StartSeconds: 0,
		EndSeconds:   10,
	}); err != nil {
		t.Fatalf("start trim: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !d.Status().Job.Active {
		if time.Now().After(deadline) {
			t.Fatalf("job never became active")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !d.Cancel() {
		t.Fatalf("cancel should report an active job")
	}
	result := waitForResult(t, d)
	if result.Outcome != jobs.OutcomeCancelled {
		t.Fatalf("expected cancelled outcome, got %q", result.Outcome)
	}
	if !killed {
		t.Fatalf("expected kill to be invoked")
	}

	entries, err := d.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].Outcome != jobs.OutcomeCancelled {
		t.Fatalf("expected one cancelled history entry, got %#v", entries)
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	launcher := &fakeLauncher{proc: &fakeProcess{
		stdout: strings.NewReader(""),
		stderr: strings.NewReader(""),
	}}
	d := newTestDaemon(t, launcher, nil)

	other, err := New(d.cfg, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := other.Start(context.Background()); err == nil {
		other.Stop()
		t.Fatalf("expected second instance start to fail")
	}
}

func TestHistoryUnavailableWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.Stop)

	if _, err := d.History(context.Background(), 10); err == nil {
		t.Fatalf("expected history error when disabled")
	}
}

func TestStatusReportsDependencies(t *testing.T) {
	launcher := &fakeLauncher{proc: &fakeProcess{
		stdout: strings.NewReader(""),
		stderr: strings.NewReader(""),
	}}
	d := newTestDaemon(t, launcher, nil)

	status := d.Status()
	if !status.Running {
		t.Fatalf("expected running daemon")
	}
	if len(status.Dependencies) != 3 {
		t.Fatalf("expected three dependency checks, got %d", len(status.Dependencies))
	}
	for _, dep := range status.Dependencies {
		if !dep.Available {
			t.Fatalf("expected stub tool %q to be available: %s", dep.Name, dep.Detail)
		}
	}
}

package jobs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

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
	proc      *fakeProcess
	launchErr error
	launched  []toolproc.Spec
}

func (f *fakeLauncher) Launch(_ context.Context, spec toolproc.Spec) (toolproc.Process, error) {
	f.launched = append(f.launched, spec)
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	return f.proc, nil
}

func newTestManager(t *testing.T, launcher *fakeLauncher, kill func(int) error) *Manager {
	t.Helper()
	if kill == nil {
		kill = func(int) error { return nil }
	}
	return NewManager(nil,
		WithLauncher(launcher),
		WithTerminator(toolproc.NewTerminator(nil, toolproc.WithKillFunc(kill))))
}

func collectEvents(t *testing.T, m *Manager, want EventType) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-m.Events():
			events = append(events, ev)
			if ev.Type == want {
				return events
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event, saw %d events", want, len(events))
		}
	}
}

func TestEncodeJobEmitsProgressAndCompletes(t *testing.T) {
	stderr := strings.Join([]string{
		"  Duration: 00:01:40.00, start: 0.000000",
		"frame= 100 time=00:00:25.00 speed=1.5x",
		"frame= 200 time=00:00:50.00 speed=1.5x",
	}, "\n")
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:    100,
		stdout: strings.NewReader(""),
		stderr: strings.NewReader(stderr),
	}}
	m := newTestManager(t, launcher, nil)

	jobID, err := m.Start(context.Background(), Request{
		Kind:       KindEncode,
		Spec:       toolproc.Spec{Binary: "ffmpeg"},
		OutputPath: "/tmp/out.mp4",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	events := collectEvents(t, m, EventCompleted)
	m.Wait()

	var progressCount int
	for _, ev := range events {
		if ev.JobID != jobID {
			t.Fatalf("event for wrong job: %q", ev.JobID)
		}
		if ev.Type == EventProgress {
			progressCount++
			if ev.Encode == nil {
				t.Fatal("encode progress event missing payload")
			}
		}
	}
	if progressCount != 2 {
		t.Fatalf("progress events = %d, want 2", progressCount)
	}

	final := events[len(events)-1]
	if final.OutputPath != "/tmp/out.mp4" {
		t.Fatalf("output path = %q", final.OutputPath)
	}
	if status := m.Status(); status.Active {
		t.Fatal("slot should be free after completion")
	}
}

func TestSpawnFailureClearsSlot(t *testing.T) {
	launcher := &fakeLauncher{launchErr: errors.New("no such binary")}
	m := newTestManager(t, launcher, nil)

	if _, err := m.Start(context.Background(), Request{Kind: KindEncode, Spec: toolproc.Spec{Binary: "ffmpeg"}}); err == nil {
		t.Fatal("expected spawn failure")
	}
	if status := m.Status(); status.Active {
		t.Fatal("slot must be released after spawn failure")
	}
	if m.Cancel() {
		t.Fatal("cancel with empty slot should report false")
	}
}

func TestCancelBeatsProcessFailure(t *testing.T) {
	release := make(chan struct{})
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     200,
		stdout:  strings.NewReader(""),
		stderr:  strings.NewReader(""),
		waitErr: errors.New("killed"),
		release: release,
	}}
	killed := make(chan int, 1)
	m := newTestManager(t, launcher, func(pid int) error {
		killed <- pid
		close(release)
		return nil
	})

	outputPath := filepath.Join(t.TempDir(), "partial.mp4")
	if err := os.WriteFile(outputPath, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Start(context.Background(), Request{
		Kind:       KindEncode,
		Spec:       toolproc.Spec{Binary: "ffmpeg"},
		OutputPath: outputPath,
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Give the status a moment to carry the pid, then cancel.
	waitForActive(t, m)
	if !m.Cancel() {
		t.Fatal("expected cancel to target the active job")
	}

	events := collectEvents(t, m, EventCancelled)
	m.Wait()

	if pid := <-killed; pid != 200 {
		t.Fatalf("killed pid = %d", pid)
	}
	for _, ev := range events {
		if ev.Type == EventFailed {
			t.Fatal("cancelled job must not also report failure")
		}
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Fatal("partial output should be removed after cancel")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	m := newTestManager(t, &fakeLauncher{}, nil)
	if m.Cancel() {
		t.Fatal("cancel with no active job should be a no-op")
	}
	if m.Cancel() {
		t.Fatal("repeated cancel should stay a no-op")
	}
}

func TestSecondStartOverwritesSlot(t *testing.T) {
	releaseFirst := make(chan struct{})
	first := &fakeProcess{pid: 300, stdout: strings.NewReader(""), stderr: strings.NewReader(""), release: releaseFirst}
	launcher := &fakeLauncher{proc: first}
	m := newTestManager(t, launcher, nil)

	firstID, err := m.Start(context.Background(), Request{Kind: KindEncode, Spec: toolproc.Spec{Binary: "ffmpeg"}})
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	waitForActive(t, m)

	launcher.proc = &fakeProcess{pid: 301, stdout: strings.NewReader(""), stderr: strings.NewReader("")}
	secondID, err := m.Start(context.Background(), Request{Kind: KindDownload, Spec: toolproc.Spec{Binary: "yt-dlp"}, DownloadDir: t.TempDir()})
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if firstID == secondID {
		t.Fatal("job ids must be unique")
	}

	// The slot now tracks the second job even though the first still runs.
	status := m.Status()
	if !status.Active || status.JobID != secondID {
		t.Fatalf("slot tracks %q, want %q", status.JobID, secondID)
	}

	close(releaseFirst)
	m.Wait()
}

func TestFailedJobCarriesDiagnostics(t *testing.T) {
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     400,
		stdout:  strings.NewReader(""),
		stderr:  strings.NewReader("ERROR: Unsupported URL: gopher://example\n"),
		waitErr: errors.New("exit status 1"),
	}}
	m := newTestManager(t, launcher, nil)

	if _, err := m.Start(context.Background(), Request{Kind: KindDownload, Spec: toolproc.Spec{Binary: "yt-dlp"}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := collectEvents(t, m, EventFailed)
	m.Wait()

	final := events[len(events)-1]
	if !strings.Contains(final.Message, "Unsupported URL") {
		t.Fatalf("failure message missing diagnostics: %q", final.Message)
	}
}

func TestDownloadResolvesRecordedPath(t *testing.T) {
	dir := t.TempDir()
	finalFile := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(finalFile, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout := strings.Join([]string{
		"[download] Destination: " + finalFile,
		"[download] 100.0% of 5.00MiB",
	}, "\n")
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:    500,
		stdout: strings.NewReader(stdout),
		stderr: strings.NewReader(""),
	}}
	m := newTestManager(t, launcher, nil)

	if _, err := m.Start(context.Background(), Request{
		Kind:        KindDownload,
		Spec:        toolproc.Spec{Binary: "yt-dlp"},
		DownloadDir: dir,
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := collectEvents(t, m, EventCompleted)
	m.Wait()

	final := events[len(events)-1]
	if final.OutputPath != finalFile {
		t.Fatalf("output path = %q, want %q", final.OutputPath, finalFile)
	}
}

func TestCancelledDownloadRemovesAnnouncedPartial(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(partial, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     600,
		stdout:  strings.NewReader("[download] Destination: " + partial + "\n"),
		stderr:  strings.NewReader(""),
		waitErr: errors.New("killed"),
		release: release,
	}}
	m := newTestManager(t, launcher, func(int) error {
		close(release)
		return nil
	})

	// The path is discovered from tool output; the request carries none.
	if _, err := m.Start(context.Background(), Request{
		Kind:        KindDownload,
		Spec:        toolproc.Spec{Binary: "yt-dlp"},
		DownloadDir: dir,
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForActive(t, m)
	if !m.Cancel() {
		t.Fatal("expected cancel to target the active job")
	}

	collectEvents(t, m, EventCancelled)
	m.Wait()

	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatalf("announced partial download still exists after cancel: stat err = %v", err)
	}
}

func TestCancelDeletesPartialBeforeProcessExit(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(partial, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     700,
		stdout:  strings.NewReader("[download] Destination: " + partial + "\n"),
		stderr:  strings.NewReader(""),
		release: release,
	}}
	// The kill is acknowledged but the process keeps running.
	m := newTestManager(t, launcher, func(int) error { return nil })

	if _, err := m.Start(context.Background(), Request{
		Kind:        KindDownload,
		Spec:        toolproc.Spec{Binary: "yt-dlp"},
		DownloadDir: dir,
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	// The destination announcement produces a progress event, so the recorded
	// path is published once one arrives.
	collectEvents(t, m, EventProgress)
	if !m.Cancel() {
		t.Fatal("expected cancel to target the active job")
	}

	// The process has not exited, yet cancel already removed the partial.
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatalf("partial output should be removed at cancel time: stat err = %v", err)
	}

	close(release)
	collectEvents(t, m, EventCancelled)
	m.Wait()
}

func TestTerminalEventPrecedesSlotClear(t *testing.T) {
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:    800,
		stdout: strings.NewReader(""),
		stderr: strings.NewReader(""),
	}}
	m := newTestManager(t, launcher, nil)

	if _, err := m.Start(context.Background(), Request{
		Kind:       KindEncode,
		Spec:       toolproc.Spec{Binary: "ffmpeg"},
		OutputPath: "/tmp/out.mp4",
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !m.Status().Active {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if m.Status().Active {
		t.Fatal("job never resolved")
	}

	// Once the slot reads idle the terminal event must already be buffered.
	select {
	case ev := <-m.Events():
		if ev.Type != EventCompleted {
			t.Fatalf("event type = %s, want %s", ev.Type, EventCompleted)
		}
	default:
		t.Fatal("slot cleared before the terminal event was emitted")
	}
	m.Wait()
}

func TestCancelStopsStreamReadersEarly(t *testing.T) {
	pr, pw := io.Pipe()
	release := make(chan struct{})
	launcher := &fakeLauncher{proc: &fakeProcess{
		pid:     900,
		stdout:  strings.NewReader(""),
		stderr:  pr,
		waitErr: errors.New("killed"),
		release: release,
	}}
	m := newTestManager(t, launcher, func(int) error {
		close(release)
		return nil
	})

	if _, err := m.Start(context.Background(), Request{
		Kind:       KindEncode,
		Spec:       toolproc.Spec{Binary: "ffmpeg"},
		OutputPath: "/tmp/out.mp4",
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := io.WriteString(pw, "  Duration: 00:01:40.00, start: 0.000000\nframe= 100 time=00:00:25.00 speed=1.5x\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	collectEvents(t, m, EventProgress)

	if !m.Cancel() {
		t.Fatal("expected cancel to target the active job")
	}
	// One more record lets the reader observe the flag; the pipe itself is
	// never closed, so resolution proves the reader stopped early.
	if _, err := io.WriteString(pw, "frame= 200 time=00:00:50.00 speed=1.5x\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	collectEvents(t, m, EventCancelled)
	m.Wait()
}

func waitForActive(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if status := m.Status(); status.Active && status.PID != 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never became active with a pid")
}

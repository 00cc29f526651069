package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"toolbox/internal/config"
	"toolbox/internal/daemon"
	"toolbox/internal/ipc"
	"toolbox/internal/jobs"
	"toolbox/internal/logging"
	"toolbox/internal/toolproc"
)

type fakeProcess struct{}

func (fakeProcess) PID() (int, bool)  { return 400, true }
func (fakeProcess) Stdout() io.Reader { return strings.NewReader("") }
func (fakeProcess) Stderr() io.Reader {
	return strings.NewReader("  Duration: 00:00:10.00, start: 0.000000\n")
}
func (fakeProcess) Wait() error { return nil }

type fakeLauncher struct{}

func (fakeLauncher) Launch(context.Context, toolproc.Spec) (toolproc.Process, error) {
	return fakeProcess{}, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Enabled = true

	stub := filepath.Join(base, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub tool: %v", err)
	}
	cfgVal.Tools.FFmpeg = stub
	cfgVal.Tools.FFprobe = stub
	cfgVal.Tools.YtDlp = stub

	cfg := &cfgVal

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	manager := jobs.NewManager(logger,
		jobs.WithLauncher(fakeLauncher{}),
		jobs.WithTerminator(toolproc.NewTerminator(nil, toolproc.WithKillFunc(func(int) error { return nil }))))

	d, err := daemon.New(cfg, logger, daemon.WithManager(manager))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Stop()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon running: yes")
	requireContains(t, out, "Active job: none")
	requireContains(t, out, "ffmpeg")
}

func TestCLITrimAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	input := filepath.Join(t.TempDir(), "clip.mp4")
	out, _, err := runCLI(t, []string{"trim", input, "--start", "0", "--end", "5"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	requireContains(t, out, "Trim started")
	requireContains(t, out, "_trimmed.mp4")

	deadline := time.Now().Add(5 * time.Second)
	for {
		out, _, err = runCLI(t, []string{"history"}, env.socketPath, env.configPath)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if strings.Contains(out, "succeeded") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never appeared in history: %q", out)
		}
		time.Sleep(10 * time.Millisecond)
	}

	out, _, err = runCLI(t, []string{"history", "--clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "History cleared")
}

func TestCLICancelWithoutJob(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cancel"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	requireContains(t, out, "No active job")
}

func TestCLIDialErrorMentionsDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(t.TempDir(), "missing.sock")
	_, _, err := runCLI(t, []string{"status"}, missing, env.configPath)
	if err == nil {
		t.Fatal("expected dial error")
	}
	if !strings.Contains(err.Error(), "connect to daemon") {
		t.Fatalf("unexpected error: %v", err)
	}
}

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"toolbox/internal/logging"
	"toolbox/internal/progress"
	"toolbox/internal/toolproc"
)

// Request describes a job to run.
type Request struct {
	Kind Kind
	Spec toolproc.Spec

	// OutputPath is the destination known before launch. ffmpeg jobs always
	// know it; downloads discover theirs from tool output instead. It seeds
	// the job's recorded output path, which cancellation cleanup deletes.
	OutputPath string

	// TotalDuration overrides the duration ffmpeg reports, for runs whose
	// processed span differs from the input timeline (trims, concatenation).
	TotalDuration float64

	// Download output resolution inputs, used when the recorded path turns
	// out to be a directory or extensionless.
	DownloadDir  string
	FileNameBase string
	ExpectedExt  string
}

// Manager owns the single active-job slot.
//
// The mutex guards only the slot fields and is never held across process
// I/O; launching, stream parsing, waiting, and killing all happen unlocked.
type Manager struct {
	launcher   toolproc.Launcher
	terminator *toolproc.Terminator
	logger     *slog.Logger

	events chan Event

	mu     sync.Mutex
	active *activeJob
	wg     sync.WaitGroup
}

type activeJob struct {
	id   string
	kind Kind
	req  Request
	proc toolproc.Process

	// recordedPath is the latest known destination. Seeded from the request
	// and overwritten as the tool announces paths mid-stream; cancellation
	// deletes whatever it points at.
	recordedPath string
	cancelling   bool
}

// Option configures the manager.
type Option func(*Manager)

// WithLauncher injects a custom process launcher (primarily for tests).
func WithLauncher(l toolproc.Launcher) Option {
	return func(m *Manager) {
		if l != nil {
			m.launcher = l
		}
	}
}

// WithTerminator injects a custom terminator (primarily for tests).
func WithTerminator(t *toolproc.Terminator) Option {
	return func(m *Manager) {
		if t != nil {
			m.terminator = t
		}
	}
}

// NewManager constructs a job manager.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		launcher:   toolproc.CommandLauncher{},
		terminator: toolproc.NewTerminator(logger),
		logger:     logging.WithComponent(logger, "jobs"),
		events:     make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events returns the notification stream. Events are dropped, not queued,
// when the channel is full.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Status reports the slot snapshot.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Status{}
	}
	status := Status{Active: true, JobID: m.active.id, Kind: m.active.kind}
	if m.active.proc != nil {
		if pid, ok := m.active.proc.PID(); ok {
			status.PID = pid
		}
	}
	return status
}

// Start launches the requested job and returns its id. The slot is claimed
// before the process spawns; a spawn failure releases it again. Starting
// while another job is active overwrites the slot, the earlier process keeps
// running unsupervised.
func (m *Manager) Start(ctx context.Context, req Request) (string, error) {
	job := &activeJob{
		id:           uuid.NewString(),
		kind:         req.Kind,
		req:          req,
		recordedPath: req.OutputPath,
	}

	m.mu.Lock()
	if m.active != nil {
		m.logger.Warn("replacing active job",
			logging.String("previous_job_id", m.active.id),
			logging.String("job_id", job.id))
	}
	m.active = job
	m.mu.Unlock()

	proc, err := m.launcher.Launch(ctx, req.Spec)
	if err != nil {
		m.mu.Lock()
		if m.active == job {
			m.active = nil
		}
		m.mu.Unlock()
		return "", fmt.Errorf("launch %s job: %w", req.Kind, err)
	}

	m.mu.Lock()
	job.proc = proc
	m.mu.Unlock()

	m.logger.Info("job started",
		logging.String("job_id", job.id),
		logging.String("kind", string(req.Kind)),
		logging.String("binary", req.Spec.Binary))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(job, proc)
	}()

	return job.id, nil
}

// Cancel requests termination of the active job. It is idempotent: with no
// active job it does nothing and reports false.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	job := m.active
	if job == nil {
		m.mu.Unlock()
		return false
	}
	job.cancelling = true
	proc := job.proc
	recordedPath := job.recordedPath
	m.mu.Unlock()

	m.logger.Info("cancelling job", logging.String("job_id", job.id))
	// Best effort. A kill failure is logged by the terminator; the job's
	// eventual exit still resolves as cancelled.
	_ = m.terminator.Terminate(proc)
	// The terminate signal is asynchronous, so delete the partial output now
	// as well; the resolver repeats this once the process actually exits.
	m.removePartialOutput(recordedPath)
	return true
}

// Wait blocks until all started jobs have resolved. Used on shutdown and in
// tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(job *activeJob, proc toolproc.Process) {
	var diag progress.DiagnosticBuffer

	// Stream readers check this between records so a cancelled job stops
	// consuming output without waiting for the pipes to close.
	cancelRequested := func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return job.cancelling
	}

	if job.kind.IsDownload() {
		parser := progress.NewYtDlpParser()
		var wg sync.WaitGroup
		var parserMu sync.Mutex
		parse := func(record string, captureDiag bool) bool {
			parserMu.Lock()
			update, ok := parser.Parse(record)
			if captureDiag {
				diag.Append(record)
			}
			path := parser.OutputPath()
			parserMu.Unlock()
			if path != "" {
				m.setRecordedPath(job, path)
			}
			if ok {
				m.emit(Event{JobID: job.id, Kind: job.kind, Type: EventProgress, Download: &update})
			}
			return !cancelRequested()
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := progress.Stream(proc.Stdout(), func(r string) bool { return parse(r, false) }); err != nil {
				m.logger.Warn("stdout stream error", logging.String("job_id", job.id), logging.Error(err))
			}
		}()
		go func() {
			defer wg.Done()
			if err := progress.Stream(proc.Stderr(), func(r string) bool { return parse(r, true) }); err != nil {
				m.logger.Warn("stderr stream error", logging.String("job_id", job.id), logging.Error(err))
			}
		}()
		wg.Wait()
	} else {
		parser := progress.NewFFmpegParser()
		if job.req.TotalDuration > 0 {
			parser.OverrideDuration(job.req.TotalDuration)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			// ffmpeg writes nothing useful to stdout here, but the pipe
			// still has to be drained.
			defer wg.Done()
			_ = progress.Stream(proc.Stdout(), func(string) bool { return !cancelRequested() })
		}()
		go func() {
			defer wg.Done()
			if err := progress.Stream(proc.Stderr(), func(record string) bool {
				diag.Append(record)
				if update, ok := parser.Parse(record); ok {
					m.emit(Event{JobID: job.id, Kind: job.kind, Type: EventProgress, Encode: &update})
				}
				return !cancelRequested()
			}); err != nil {
				m.logger.Warn("stderr stream error", logging.String("job_id", job.id), logging.Error(err))
			}
		}()
		wg.Wait()
	}

	waitErr := proc.Wait()

	// Resolve the outcome. The cancel flag is read exactly once; the slot
	// stays occupied until after the terminal event has been emitted.
	m.mu.Lock()
	cancelled := job.cancelling
	recordedPath := job.recordedPath
	m.mu.Unlock()

	switch {
	case cancelled:
		m.resolveCancelled(job, recordedPath)
	case waitErr == nil:
		m.resolveSucceeded(job, recordedPath)
	default:
		m.resolveFailed(job, waitErr, &diag)
	}

	m.mu.Lock()
	if m.active == job {
		m.active = nil
	}
	m.mu.Unlock()
}

func (m *Manager) setRecordedPath(job *activeJob, path string) {
	m.mu.Lock()
	job.recordedPath = path
	m.mu.Unlock()
}

// removePartialOutput deletes a half-written output file. Failures are logged
// and swallowed; cleanup is not part of the job contract.
func (m *Manager) removePartialOutput(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("remove partial output",
			logging.String("path", path), logging.Error(err))
	}
}

func (m *Manager) resolveCancelled(job *activeJob, recordedPath string) {
	m.removePartialOutput(recordedPath)
	m.logger.Info("job cancelled", logging.String("job_id", job.id))
	m.emit(Event{JobID: job.id, Kind: job.kind, Type: EventCancelled})
}

func (m *Manager) resolveSucceeded(job *activeJob, recordedPath string) {
	outputPath := job.req.OutputPath
	if job.kind.IsDownload() {
		outputPath = resolveDownloadOutput(recordedPath, job.req.DownloadDir, job.req.FileNameBase, job.req.ExpectedExt)
	}
	m.logger.Info("job completed",
		logging.String("job_id", job.id),
		logging.String("output", outputPath))
	m.emit(Event{JobID: job.id, Kind: job.kind, Type: EventCompleted, OutputPath: outputPath})
}

func (m *Manager) resolveFailed(job *activeJob, waitErr error, diag *progress.DiagnosticBuffer) {
	var message string
	if code, ok := toolproc.ExitCode(waitErr); ok {
		message = fmt.Sprintf("%s exited with code %d", job.req.Spec.Binary, code)
	} else {
		message = fmt.Sprintf("%s process error: %v", job.req.Spec.Binary, waitErr)
	}
	if !diag.Empty() {
		message = fmt.Sprintf("%s: %s", message, diag.String())
	}
	m.logger.Error("job failed", logging.String("job_id", job.id), logging.String("message", message))
	m.emit(Event{JobID: job.id, Kind: job.kind, Type: EventFailed, Message: message})
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		// Consumers that fall behind lose events rather than stall the job.
	}
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"toolbox/internal/config"
	"toolbox/internal/deps"
	"toolbox/internal/history"
	"toolbox/internal/jobs"
	"toolbox/internal/logging"
	"toolbox/internal/media/ffprobe"
	"toolbox/internal/toolargs"
	"toolbox/internal/toolproc"
)

// Daemon coordinates job execution and enforces single-instance operation.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *jobs.Manager

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.Mutex
	store      *history.Store
	progress   *ProgressSnapshot
	lastResult *ResultSnapshot
	jobCancels map[string]context.CancelFunc
}

// ProgressSnapshot is the most recent progress report of the active job.
type ProgressSnapshot struct {
	JobID   string
	Kind    jobs.Kind
	Percent float64
	Stage   string
	Time    string
	Speed   string
	Size    string
	ETA     string
}

// ResultSnapshot is the most recent terminal outcome.
type ResultSnapshot struct {
	JobID      string
	Kind       jobs.Kind
	Outcome    jobs.Outcome
	OutputPath string
	Message    string
	FinishedAt time.Time
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Job          jobs.Status
	Progress     *ProgressSnapshot
	LastResult   *ResultSnapshot
	LockPath     string
	HistoryPath  string
	Dependencies []deps.Status
}

// Option configures the daemon.
type Option func(*Daemon)

// WithManager injects a custom job manager (primarily for tests).
func WithManager(m *jobs.Manager) Option {
	return func(d *Daemon) {
		if m != nil {
			d.manager = m
		}
	}
}

// New constructs a daemon.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "toolboxd.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		manager:    jobs.NewManager(logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		done:       make(chan struct{}),
		jobCancels: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the daemon lock, opens the history store, and begins
// consuming job events.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another toolbox daemon instance is already running")
	}

	if d.cfg.History.Enabled {
		store, err := history.Open(d.cfg.HistoryDBPath())
		if err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("open history: %w", err)
		}
		d.mu.Lock()
		d.store = store
		d.mu.Unlock()
		if removed, pruneErr := store.Prune(ctx, d.cfg.History.RetentionDays); pruneErr != nil {
			d.logger.Warn("history prune failed", logging.Error(pruneErr))
		} else if removed > 0 {
			d.logger.Info("history pruned", logging.Int64("removed", removed))
		}
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	consumerCtx := d.ctx
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.consumeEvents(consumerCtx)
	}()

	d.running.Store(true)
	d.logger.Info("toolbox daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Done is closed when the daemon has stopped.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Stop cancels the active job if any, stops event consumption, and releases
// the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.manager.Cancel()
	d.manager.Wait()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()

	d.mu.Lock()
	store := d.store
	d.store = nil
	d.mu.Unlock()
	if store != nil {
		if err := store.Close(); err != nil {
			d.logger.Warn("close history", logging.Error(err))
		}
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.stopOnce.Do(func() { close(d.done) })
	d.logger.Info("toolbox daemon stopped")
}

// StartEncode launches a transcode job.
func (d *Daemon) StartEncode(spec toolargs.EncodeSpec) (string, string, error) {
	binary, err := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg)
	if err != nil {
		return "", "", err
	}
	args, outputPath, err := spec.Build()
	if err != nil {
		return "", "", err
	}
	jobID, err := d.startJob(jobs.Request{
		Kind:       jobs.KindEncode,
		Spec:       newToolSpec(binary, args),
		OutputPath: outputPath,
	}, d.encodeTimeout())
	return jobID, outputPath, err
}

// StartExtractAudio launches an audio extraction job.
func (d *Daemon) StartExtractAudio(spec toolargs.ExtractAudioSpec) (string, string, error) {
	binary, err := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg)
	if err != nil {
		return "", "", err
	}
	args, outputPath, err := spec.Build()
	if err != nil {
		return "", "", err
	}
	jobID, err := d.startJob(jobs.Request{
		Kind:       jobs.KindExtractAudio,
		Spec:       newToolSpec(binary, args),
		OutputPath: outputPath,
	}, d.encodeTimeout())
	return jobID, outputPath, err
}

// StartTrim launches a lossless trim job.
func (d *Daemon) StartTrim(spec toolargs.TrimSpec) (string, string, error) {
	binary, err := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg)
	if err != nil {
		return "", "", err
	}
	args, outputPath, duration, err := spec.Build()
	if err != nil {
		return "", "", err
	}
	jobID, err := d.startJob(jobs.Request{
		Kind:       jobs.KindTrim,
		Spec:       newToolSpec(binary, args),
		OutputPath: outputPath,
		// ffmpeg reports the source timeline; progress must be measured
		// against the trimmed span.
		TotalDuration: duration,
	}, d.encodeTimeout())
	return jobID, outputPath, err
}

// StartGif launches a video-to-GIF conversion job. The input is probed
// first so progress has a duration to measure against when no trim range
// bounds the clip.
func (d *Daemon) StartGif(ctx context.Context, spec toolargs.GifSpec) (string, string, error) {
	binary, err := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg)
	if err != nil {
		return "", "", err
	}
	if spec.SourceDuration <= 0 {
		if probeBinary, probeErr := deps.ResolveTool(deps.ToolFFprobe, d.cfg.Tools.FFprobe); probeErr == nil {
			if result, inspectErr := ffprobe.Inspect(ctx, probeBinary, spec.Input); inspectErr == nil {
				spec.SourceDuration = result.DurationSeconds()
			}
		}
	}
	args, outputPath, err := spec.Build()
	if err != nil {
		return "", "", err
	}
	jobID, err := d.startJob(jobs.Request{
		Kind:          jobs.KindGif,
		Spec:          newToolSpec(binary, args),
		OutputPath:    outputPath,
		TotalDuration: spec.EffectiveDuration(),
	}, d.encodeTimeout())
	return jobID, outputPath, err
}

// StartDownload launches a yt-dlp download job.
func (d *Daemon) StartDownload(spec toolargs.DownloadSpec) (string, error) {
	binary, err := deps.ResolveTool(deps.ToolYtDlp, d.cfg.Tools.YtDlp)
	if err != nil {
		return "", err
	}
	if spec.OutputFolder == "" {
		spec.OutputFolder = d.cfg.Paths.DownloadDir
	}
	if spec.FFmpegLocation == "" {
		if ffmpegPath, resolveErr := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg); resolveErr == nil {
			spec.FFmpegLocation = ffmpegPath
		}
	}
	args, err := spec.Build()
	if err != nil {
		return "", err
	}
	return d.startJob(jobs.Request{
		Kind:         jobs.KindDownload,
		Spec:         newToolSpec(binary, args),
		DownloadDir:  spec.OutputFolder,
		FileNameBase: spec.FileNameBase(),
		ExpectedExt:  spec.ExpectedExt(),
	}, d.downloadTimeout())
}

func (d *Daemon) startJob(req jobs.Request, timeout time.Duration) (string, error) {
	base := d.ctx
	if base == nil {
		base = context.Background()
	}
	jobCtx := base
	var cancel context.CancelFunc
	if timeout > 0 {
		jobCtx, cancel = context.WithTimeout(base, timeout)
	}

	jobID, err := d.manager.Start(jobCtx, req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return "", err
	}
	if cancel != nil {
		d.mu.Lock()
		d.jobCancels[jobID] = cancel
		d.mu.Unlock()
	}
	return jobID, nil
}

// Cancel requests termination of the active job.
func (d *Daemon) Cancel() bool {
	return d.manager.Cancel()
}

// Status returns the current daemon status including tool availability.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	progress := d.progress
	lastResult := d.lastResult
	d.mu.Unlock()

	return Status{
		Running:     d.running.Load(),
		Job:         d.manager.Status(),
		Progress:    progress,
		LastResult:  lastResult,
		LockPath:    d.lockPath,
		HistoryPath: d.cfg.HistoryDBPath(),
		Dependencies: []deps.Status{
			deps.CheckTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg, "Transcoding and conversions"),
			deps.CheckTool(deps.ToolFFprobe, d.cfg.Tools.FFprobe, "Media inspection"),
			deps.CheckTool(deps.ToolYtDlp, d.cfg.Tools.YtDlp, "Video downloads"),
		},
	}
}

// History returns the most recent terminal outcomes.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Entry, error) {
	d.mu.Lock()
	store := d.store
	d.mu.Unlock()
	if store == nil {
		return nil, errors.New("history unavailable")
	}
	return store.List(ctx, limit)
}

// ClearHistory removes all history entries.
func (d *Daemon) ClearHistory(ctx context.Context) error {
	d.mu.Lock()
	store := d.store
	d.mu.Unlock()
	if store == nil {
		return errors.New("history unavailable")
	}
	return store.Clear(ctx)
}

// Inspect probes a media file and summarizes it.
func (d *Daemon) Inspect(ctx context.Context, path string) (ffprobe.Metadata, error) {
	binary, err := deps.ResolveTool(deps.ToolFFprobe, d.cfg.Tools.FFprobe)
	if err != nil {
		return ffprobe.Metadata{}, err
	}
	result, err := ffprobe.Inspect(ctx, binary, path)
	if err != nil {
		return ffprobe.Metadata{}, err
	}
	return result.Summarize(), nil
}

// Encoders reports the hardware encoder families the configured ffmpeg
// build supports.
func (d *Daemon) Encoders(ctx context.Context) (ffprobe.HardwareEncoders, error) {
	binary, err := deps.ResolveTool(deps.ToolFFmpeg, d.cfg.Tools.FFmpeg)
	if err != nil {
		return ffprobe.HardwareEncoders{}, err
	}
	return ffprobe.DetectEncoders(ctx, binary)
}

func (d *Daemon) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.manager.Events():
			d.handleEvent(ev)
		}
	}
}

func (d *Daemon) handleEvent(ev jobs.Event) {
	switch ev.Type {
	case jobs.EventProgress:
		snapshot := &ProgressSnapshot{JobID: ev.JobID, Kind: ev.Kind}
		if ev.Encode != nil {
			snapshot.Percent = float64(ev.Encode.Percent)
			snapshot.Time = ev.Encode.Time
			snapshot.Speed = ev.Encode.Speed
		}
		if ev.Download != nil {
			if ev.Download.HasPercent {
				snapshot.Percent = ev.Download.Percent
			}
			snapshot.Stage = ev.Download.Status
			snapshot.Speed = ev.Download.Speed
			snapshot.Size = ev.Download.Size
			snapshot.ETA = ev.Download.ETA
		}
		d.mu.Lock()
		d.progress = snapshot
		d.mu.Unlock()
		return
	case jobs.EventCompleted, jobs.EventFailed, jobs.EventCancelled:
		d.finishJob(ev)
	}
}

func (d *Daemon) finishJob(ev jobs.Event) {
	result := &ResultSnapshot{
		JobID:      ev.JobID,
		Kind:       ev.Kind,
		OutputPath: ev.OutputPath,
		Message:    ev.Message,
		FinishedAt: time.Now().UTC(),
	}
	switch ev.Type {
	case jobs.EventCompleted:
		result.Outcome = jobs.OutcomeSucceeded
	case jobs.EventCancelled:
		result.Outcome = jobs.OutcomeCancelled
	default:
		result.Outcome = jobs.OutcomeFailed
	}

	d.mu.Lock()
	d.lastResult = result
	d.progress = nil
	store := d.store
	cancel := d.jobCancels[ev.JobID]
	delete(d.jobCancels, ev.JobID)
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if store != nil {
		entry := history.Entry{
			JobID:      ev.JobID,
			Kind:       ev.Kind,
			Outcome:    result.Outcome,
			OutputPath: ev.OutputPath,
			Message:    ev.Message,
			FinishedAt: result.FinishedAt,
		}
		if err := store.Record(context.Background(), entry); err != nil {
			d.logger.Warn("record history entry", logging.Error(err))
		}
	}
}

func (d *Daemon) encodeTimeout() time.Duration {
	return time.Duration(d.cfg.Tools.EncodeTimeout) * time.Second
}

func (d *Daemon) downloadTimeout() time.Duration {
	return time.Duration(d.cfg.Tools.DownloadTimeout) * time.Second
}

func newToolSpec(binary string, args []string) toolproc.Spec {
	return toolproc.Spec{Binary: binary, Args: args}
}

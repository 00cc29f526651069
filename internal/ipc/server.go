package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"toolbox/internal/daemon"
	"toolbox/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Toolbox", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger
}

func (s *service) StartEncode(req StartEncodeRequest, resp *StartJobResponse) error {
	jobID, outputPath, err := s.daemon.StartEncode(req.Spec)
	if err != nil {
		return err
	}
	s.log().Info("encode started via IPC", logging.String("job_id", jobID))
	resp.JobID = jobID
	resp.OutputPath = outputPath
	return nil
}

func (s *service) StartExtractAudio(req StartExtractAudioRequest, resp *StartJobResponse) error {
	jobID, outputPath, err := s.daemon.StartExtractAudio(req.Spec)
	if err != nil {
		return err
	}
	s.log().Info("audio extraction started via IPC", logging.String("job_id", jobID))
	resp.JobID = jobID
	resp.OutputPath = outputPath
	return nil
}

func (s *service) StartTrim(req StartTrimRequest, resp *StartJobResponse) error {
	jobID, outputPath, err := s.daemon.StartTrim(req.Spec)
	if err != nil {
		return err
	}
	s.log().Info("trim started via IPC", logging.String("job_id", jobID))
	resp.JobID = jobID
	resp.OutputPath = outputPath
	return nil
}

func (s *service) StartGif(req StartGifRequest, resp *StartJobResponse) error {
	jobID, outputPath, err := s.daemon.StartGif(s.ctx, req.Spec)
	if err != nil {
		return err
	}
	s.log().Info("gif conversion started via IPC", logging.String("job_id", jobID))
	resp.JobID = jobID
	resp.OutputPath = outputPath
	return nil
}

func (s *service) StartDownload(req StartDownloadRequest, resp *StartJobResponse) error {
	jobID, err := s.daemon.StartDownload(req.Spec)
	if err != nil {
		return err
	}
	s.log().Info("download started via IPC", logging.String("job_id", jobID))
	resp.JobID = jobID
	return nil
}

func (s *service) Cancel(_ CancelRequest, resp *CancelResponse) error {
	resp.Cancelled = s.daemon.Cancel()
	if resp.Cancelled {
		s.log().Info("job cancelled via IPC")
	}
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.Active = status.Job.Active
	resp.JobID = status.Job.JobID
	resp.Kind = string(status.Job.Kind)
	resp.PID = status.Job.PID
	resp.LockPath = status.LockPath
	resp.HistoryPath = status.HistoryPath
	if status.Progress != nil {
		resp.Progress = &ProgressInfo{
			JobID:   status.Progress.JobID,
			Kind:    string(status.Progress.Kind),
			Percent: status.Progress.Percent,
			Stage:   status.Progress.Stage,
			Time:    status.Progress.Time,
			Speed:   status.Progress.Speed,
			Size:    status.Progress.Size,
			ETA:     status.Progress.ETA,
		}
	}
	if status.LastResult != nil {
		resp.LastResult = &ResultInfo{
			JobID:      status.LastResult.JobID,
			Kind:       string(status.LastResult.Kind),
			Outcome:    string(status.LastResult.Outcome),
			OutputPath: status.LastResult.OutputPath,
			Message:    status.LastResult.Message,
			FinishedAt: status.LastResult.FinishedAt,
		}
	}
	if len(status.Dependencies) > 0 {
		resp.Dependencies = make([]DependencyStatus, 0, len(status.Dependencies))
		for _, dep := range status.Dependencies {
			resp.Dependencies = append(resp.Dependencies, DependencyStatus{
				Name:        dep.Name,
				Command:     dep.Command,
				Description: dep.Description,
				Available:   dep.Available,
				Detail:      dep.Detail,
			})
		}
	}
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:         entry.ID,
			JobID:      entry.JobID,
			Kind:       string(entry.Kind),
			Outcome:    string(entry.Outcome),
			OutputPath: entry.OutputPath,
			Message:    entry.Message,
			FinishedAt: entry.FinishedAt,
		})
	}
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	if err := s.daemon.ClearHistory(s.ctx); err != nil {
		return err
	}
	resp.Cleared = true
	s.log().Info("history cleared via IPC")
	return nil
}

func (s *service) Inspect(req InspectRequest, resp *InspectResponse) error {
	if req.Path == "" {
		return errors.New("inspect path required")
	}
	media, err := s.daemon.Inspect(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.Media = media
	return nil
}

func (s *service) Encoders(_ EncodersRequest, resp *EncodersResponse) error {
	encoders, err := s.daemon.Encoders(s.ctx)
	if err != nil {
		return err
	}
	resp.NVENC = encoders.NVENC
	resp.AMF = encoders.AMF
	resp.QSV = encoders.QSV
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Info("daemon stop requested via IPC")
	go s.daemon.Stop()
	resp.Stopped = true
	return nil
}

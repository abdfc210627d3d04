package ipc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"factwatch/internal/api"
	"factwatch/internal/daemon"
	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
	"factwatch/internal/logs"
)

// ServiceName is the JSON-RPC service the daemon registers.
const ServiceName = "Factwatch"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path     string
	logger   *slog.Logger
	listener net.Listener
	rpc      *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer replaces any stale socket at path and registers the daemon
// service. Call Serve to accept connections.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	server := rpc.NewServer()
	if err := server.RegisterName(ServiceName, &service{daemon: d, logger: logger, ctx: serverCtx}); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}
	return &Server{
		path:     path,
		logger:   logger,
		listener: listener,
		rpc:      server,
		ctx:      serverCtx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Serve accepts connections in the background until Close.
func (s *Server) Serve() {
	s.logger.Debug("ipc listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go s.acceptLoop()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logging.WarnWithContext(s.logger, "ipc accept failed", "ipc_accept_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "CLI commands may fail to connect"),
				logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.rpc.ServeCodec(jsonrpc.NewServerCodec(conn))
		}()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Close stops accepting, drops open client connections and removes the socket.
func (s *Server) Close() {
	s.cancel()
	_ = s.listener.Close()
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.wg.Wait()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun factwatch stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.logger.Info("daemon started via IPC", logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC", logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = daemon.APIStatus(s.daemon.Status(s.ctx))
	return nil
}

func (s *service) Attach(req AttachRequest, resp *SessionResponse) error {
	info, err := s.daemon.Attach(s.ctx, daemon.AttachOptions{
		Video:    req.Video,
		Captions: req.Captions,
		Position: req.Position,
		Play:     req.Play,
	})
	if err != nil {
		return err
	}
	resp.Session = api.FromSessionInfo(info)
	return nil
}

func (s *service) Detach(_ DetachRequest, resp *DetachResponse) error {
	resp.Detached = s.daemon.Detach()
	return nil
}

func (s *service) Play(_ SessionRequest, resp *SessionResponse) error {
	info, err := s.daemon.Play()
	if err != nil {
		return err
	}
	resp.Session = api.FromSessionInfo(info)
	return nil
}

func (s *service) Pause(_ SessionRequest, resp *SessionResponse) error {
	info, err := s.daemon.Pause()
	if err != nil {
		return err
	}
	resp.Session = api.FromSessionInfo(info)
	return nil
}

func (s *service) Seek(req SeekRequest, resp *SessionResponse) error {
	info, err := s.daemon.Seek(req.Position)
	if err != nil {
		return err
	}
	resp.Session = api.FromSessionInfo(info)
	return nil
}

func (s *service) PushCaption(req CaptionRequest, resp *CaptionResponse) error {
	resp.Pending = s.daemon.PushCaption(req.Lines...)
	return nil
}

func (s *service) SetEnabled(req EnabledRequest, resp *EnabledResponse) error {
	if req.Enabled != nil {
		if err := s.daemon.SetEnabled(s.ctx, *req.Enabled); err != nil {
			return err
		}
	}
	enabled, err := s.daemon.Enabled(s.ctx)
	if err != nil {
		return err
	}
	resp.Enabled = enabled
	return nil
}

func (s *service) Toggle(_ ToggleRequest, resp *EnabledResponse) error {
	enabled, err := s.daemon.Toggle(s.ctx)
	if err != nil {
		return err
	}
	resp.Enabled = enabled
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	if req.Start == 0 && req.End == 0 {
		resp.Results = api.FromResults(s.daemon.History())
		return nil
	}
	end := req.End
	if end <= 0 {
		end = math.MaxFloat64
	}
	resp.Results = api.FromResults(s.daemon.ResultsInRange(req.Start, end))
	return nil
}

func (s *service) Disputed(req DisputedRequest, resp *DisputedResponse) error {
	count := req.Count
	if count == 0 {
		count = factcheck.DefaultDisputedCount
	}
	resp.Claims = api.FromDisputed(s.daemon.TopDisputed(count))
	return nil
}

func (s *service) ClearHistory(_ ClearRequest, resp *ClearResponse) error {
	resp.Removed = s.daemon.ClearHistory()
	return nil
}

func (s *service) Check(req CheckRequest, resp *CheckResponse) error {
	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return fmt.Errorf("image must be base64: %w", err)
		}
		image = decoded
	}
	result, err := s.daemon.CheckText(s.ctx, req.Text, image, req.Timestamp, req.Record)
	if err != nil {
		return err
	}
	resp.Result = api.FromResult(result)
	return nil
}

func (s *service) Overlay(_ OverlayRequest, resp *OverlayResponse) error {
	resp.Entries = s.daemon.Panel().Entries()
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
		Filter: logs.Filter{Level: req.Level, EventType: req.EventType, SessionID: req.SessionID},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

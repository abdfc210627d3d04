package daemon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"factwatch/internal/api"
	"factwatch/internal/config"
	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
	"factwatch/internal/playback"
)

const (
	maxRequestBody = 1 << 20
	// Check requests may carry a base64 frame.
	maxCheckBody = 16 << 20

	overlayPath       = "/overlay"
	overlaySocketPath = "/overlay/ws"
)

type apiServer struct {
	bind    string
	token   string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}
	srv.handler = srv.routes()
	return srv, nil
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	apiAuth := requireToken(s.token, false)
	pageAuth := requireToken(s.token, true)
	mux.HandleFunc("/api/status", apiAuth(s.handleStatus))
	mux.HandleFunc("/api/session", apiAuth(s.handleSession))
	mux.HandleFunc("/api/session/", apiAuth(s.handleSessionAction))
	mux.HandleFunc("/api/captions", apiAuth(s.handleCaptions))
	mux.HandleFunc("/api/history", apiAuth(s.handleHistory))
	mux.HandleFunc("/api/disputed", apiAuth(s.handleDisputed))
	mux.HandleFunc("/api/enabled", apiAuth(s.handleEnabled))
	mux.HandleFunc("/api/enabled/toggle", apiAuth(s.handleToggle))
	mux.HandleFunc("/api/check", apiAuth(s.handleCheck))
	mux.HandleFunc(overlayPath, pageAuth(s.handleOverlayPage))
	mux.HandleFunc(overlaySocketPath, pageAuth(s.daemon.panel.ServeWS))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Websocket writes set their own deadlines.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	s.log().Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.token != ""),
		logging.String("overlay", "http://"+listener.Addr().String()+overlayPath),
	)
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	server := s.server
	listener := s.listener
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, APIStatus(s.daemon.Status(r.Context())))
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, err := s.daemon.Session()
		if err != nil {
			s.writeJSON(w, http.StatusOK, api.SessionResponse{})
			return
		}
		s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: api.FromSessionInfo(info)})
	case http.MethodPost:
		var req api.AttachRequest
		if !s.decode(w, r, maxRequestBody, &req) {
			return
		}
		info, err := s.daemon.Attach(r.Context(), AttachOptions{
			Video:    req.Video,
			Captions: req.Captions,
			Position: req.Position,
			Play:     req.Play,
		})
		if err != nil {
			s.writeDaemonError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.SessionResponse{Session: api.FromSessionInfo(info)})
	case http.MethodDelete:
		if !s.daemon.Detach() {
			s.writeError(w, http.StatusNotFound, ErrNoSession.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *apiServer) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	action := strings.TrimPrefix(r.URL.Path, "/api/session/")
	var (
		info playback.Info
		err  error
	)
	switch action {
	case "play":
		info, err = s.daemon.Play()
	case "pause":
		info, err = s.daemon.Pause()
	case "seek":
		var req api.SeekRequest
		if !s.decode(w, r, maxRequestBody, &req) {
			return
		}
		info, err = s.daemon.Seek(req.Position)
	default:
		s.writeError(w, http.StatusNotFound, "unknown session action")
		return
	}
	if err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: api.FromSessionInfo(info)})
}

func (s *apiServer) handleCaptions(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req api.CaptionRequest
	if !s.decode(w, r, maxRequestBody, &req) {
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.CaptionResponse{Pending: s.daemon.PushCaption(req.Lines...)})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		rawStart, rawEnd := query.Get("start"), query.Get("end")
		if rawStart == "" && rawEnd == "" {
			s.writeJSON(w, http.StatusOK, api.HistoryResponse{Results: api.FromResults(s.daemon.History())})
			return
		}
		start, err := parseFloatParam(rawStart, 0)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
		end, err := parseFloatParam(rawEnd, math.MaxFloat64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid end")
			return
		}
		s.writeJSON(w, http.StatusOK, api.HistoryResponse{Results: api.FromResults(s.daemon.ResultsInRange(start, end))})
	case http.MethodDelete:
		s.writeJSON(w, http.StatusOK, api.ClearResponse{Removed: s.daemon.ClearHistory()})
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (s *apiServer) handleDisputed(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodGet) {
		return
	}
	count := factcheck.DefaultDisputedCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = parsed
	}
	s.writeJSON(w, http.StatusOK, api.DisputedResponse{Claims: api.FromDisputed(s.daemon.TopDisputed(count))})
}

func (s *apiServer) handleEnabled(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		enabled, err := s.daemon.Enabled(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.EnabledResponse{Enabled: enabled})
	case http.MethodPut:
		var req api.EnabledRequest
		if !s.decode(w, r, maxRequestBody, &req) {
			return
		}
		if req.Enabled == nil {
			s.writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := s.daemon.SetEnabled(r.Context(), *req.Enabled); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.EnabledResponse{Enabled: *req.Enabled})
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *apiServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	enabled, err := s.daemon.Toggle(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.EnabledResponse{Enabled: enabled})
}

func (s *apiServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, http.MethodPost) {
		return
	}
	var req api.CheckRequest
	if !s.decode(w, r, maxCheckBody, &req) {
		return
	}
	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "image must be base64")
			return
		}
		image = decoded
	}
	result, err := s.daemon.CheckText(r.Context(), req.Text, image, req.Timestamp, req.Record)
	if err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CheckResponse{Result: api.FromResult(result)})
}

func (s *apiServer) handleOverlayPage(w http.ResponseWriter, r *http.Request) {
	socket := overlaySocketPath
	if token := r.URL.Query().Get("token"); token != "" {
		socket += "?token=" + token
	}
	s.daemon.panel.PageHandler(socket).ServeHTTP(w, r)
}

// APIStatus converts a daemon status into its wire DTO.
func APIStatus(status Status) api.DaemonStatus {
	deps := make([]api.DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		deps[i] = api.FromDependency(dep)
	}
	payload := api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		Enabled:       status.Enabled,
		Model:         status.Model,
		APIKeyPresent: status.APIKeyPresent,
		Loop: api.LoopStatus{
			State:      string(status.LoopState),
			Generation: status.Generation,
			IntervalMS: status.IntervalMS,
			Frames:     status.Frames,
			Stats:      api.FromLoopStats(status.LoopStats),
		},
		HistoryLen:     status.HistoryLen,
		HistoryCap:     status.HistoryCap,
		OverlayEntries: status.OverlayEntries,
		OverlayClients: status.OverlayClients,
		LockFilePath:   status.LockFilePath,
		SettingsDBPath: status.SettingsDBPath,
		SocketPath:     status.SocketPath,
		APIAddress:     status.APIAddress,
		Dependencies:   deps,
	}
	if status.Session != nil {
		payload.Session = api.FromSessionInfo(*status.Session)
	}
	return payload
}

func parseFloatParam(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (s *apiServer) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	s.methodNotAllowed(w, method)
	return false
}

func (s *apiServer) methodNotAllowed(w http.ResponseWriter, methods ...string) {
	w.Header().Set("Allow", strings.Join(methods, ", "))
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, limit)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) writeDaemonError(w http.ResponseWriter, err error) {
	var (
		cfgErr   *factcheck.ConfigurationError
		transErr *factcheck.TransportError
		parseErr *factcheck.ParseError
	)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrNoSession):
		status = http.StatusConflict
	case errors.Is(err, ErrNotRunning):
		status = http.StatusServiceUnavailable
	case errors.As(err, &cfgErr):
		status = http.StatusServiceUnavailable
	case errors.Is(err, factcheck.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.As(err, &transErr), errors.As(err, &parseErr):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(s.log(), "api request failed", factcheck.EventType(err),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, factcheck.ErrorHint(err)),
			logging.String(logging.FieldImpact, "API caller received an error"),
		)
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

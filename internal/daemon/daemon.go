package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"factwatch/internal/capture"
	"factwatch/internal/config"
	"factwatch/internal/deps"
	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
	"factwatch/internal/monitor"
	"factwatch/internal/overlay"
	"factwatch/internal/playback"
	"factwatch/internal/settings"
)

var (
	// ErrNotRunning is returned by operations that need a started daemon.
	ErrNotRunning = errors.New("daemon not running")
	// ErrNoSession is returned by playback operations when nothing is attached.
	ErrNoSession = errors.New("no playback session attached")
)

// Verifier is the verification client the daemon drives.
type Verifier interface {
	monitor.Verifier
	Model() string
	Configured() bool
}

// Option customizes a daemon.
type Option func(*Daemon)

// WithFrameSampler overrides the ffmpeg-backed frame sampler.
func WithFrameSampler(s capture.FrameSampler) Option {
	return func(d *Daemon) {
		d.frames = s
	}
}

// Daemon owns the runtime components and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *settings.Store
	verifier Verifier
	history  *factcheck.Aggregator
	hub      *overlay.Hub
	panel    *overlay.Panel
	captions *capture.CaptionBuffer
	frames   capture.FrameSampler

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	bg      sync.WaitGroup

	mu       sync.Mutex
	attached *attachment
}

type attachment struct {
	session *playback.Session
	loop    *monitor.Loop
	srt     *capture.SRTReader
	done    chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	Enabled        bool
	Model          string
	APIKeyPresent  bool
	Session        *playback.Info
	LoopState      monitor.State
	Generation     uint64
	LoopStats      monitor.Stats
	IntervalMS     int64
	Frames         bool
	HistoryLen     int
	HistoryCap     int
	OverlayEntries int
	OverlayClients int
	LockFilePath   string
	SettingsDBPath string
	SocketPath     string
	APIAddress     string
	Dependencies   []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *settings.Store, verifier Verifier, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || verifier == nil {
		return nil, errors.New("daemon requires config, settings store, and verifier")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	hub := overlay.NewHub(logger)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		verifier: verifier,
		history:  factcheck.NewAggregator(cfg.History.Capacity),
		hub:      hub,
		panel:    overlay.NewPanel(cfg.Overlay.MaxEntries, hub, logger),
		captions: capture.NewCaptionBuffer(cfg.Capture.CaptionSegments),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Capture.Frames {
		d.frames = capture.NewFFmpegSampler(cfg.Capture.FFmpegBinary, cfg.Capture.FrameQuality)
	}
	for _, opt := range opts {
		opt(d)
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and starts the overlay hub and HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another factwatch daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.bg.Add(1)
	go func() {
		defer d.bg.Done()
		d.hub.Run(d.ctx)
	}()

	if err := d.api.start(d.ctx); err != nil {
		d.cancel()
		d.bg.Wait()
		_ = d.lock.Unlock()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api: %w", err)
	}

	d.running.Store(true)
	enabled, _ := d.Enabled(ctx)
	d.logger.Info("factwatch daemon started",
		logging.String("lock", d.lockPath),
		logging.Bool("enabled", enabled),
		logging.Bool("frames", d.frames != nil),
		logging.String("model", d.verifier.Model()),
	)
	if !d.verifier.Configured() {
		logging.WarnWithContext(d.logger, "verification client has no API key", "verification_not_configured",
			logging.String(logging.FieldErrorHint, "set gemini.api_key or export GEMINI_API_KEY"),
			logging.String(logging.FieldImpact, "every poll cycle will fail until a key is configured"),
		)
	}
	return nil
}

// Stop detaches any session, stops background services and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.Detach()
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.bg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("factwatch daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath is the JSON log file written under the log directory.
func (d *Daemon) LogPath() string {
	if strings.TrimSpace(d.cfg.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(d.cfg.Paths.LogDir, logging.LogFileName)
}

// Panel exposes the overlay panel for the CLI's terminal rendering.
func (d *Daemon) Panel() *overlay.Panel {
	return d.panel
}

// Enabled reads the persisted enabled flag.
func (d *Daemon) Enabled(ctx context.Context) (bool, error) {
	return d.store.Enabled(ctx)
}

// SetEnabled persists the enabled flag and applies it to the running loop.
func (d *Daemon) SetEnabled(ctx context.Context, enabled bool) error {
	if err := d.store.SetEnabled(ctx, enabled); err != nil {
		return err
	}
	d.applyEnabled(ctx, enabled)
	return nil
}

// Toggle flips the enabled flag and returns the new value.
func (d *Daemon) Toggle(ctx context.Context) (bool, error) {
	enabled, err := d.store.Toggle(ctx)
	if err != nil {
		return false, err
	}
	d.applyEnabled(ctx, enabled)
	return enabled, nil
}

func (d *Daemon) applyEnabled(ctx context.Context, enabled bool) {
	d.mu.Lock()
	att := d.attached
	d.mu.Unlock()

	playing := false
	if att != nil {
		playing = att.session.Playing()
		switch {
		case !enabled:
			att.loop.Stop()
		case playing && att.loop.State() == monitor.StateIdle:
			att.loop.Start(d.loopContext(ctx, att))
		}
	}
	d.panel.PublishStatus(enabled, playing)
	d.logger.Info("fact checking toggled", logging.Bool("enabled", enabled))
}

// History returns recorded results, newest first.
func (d *Daemon) History() []factcheck.VerificationResult {
	return d.history.History()
}

// ResultsInRange returns results whose playback timestamp is within [start, end].
func (d *Daemon) ResultsInRange(start, end float64) []factcheck.VerificationResult {
	return d.history.ResultsInRange(start, end)
}

// TopDisputed returns the most frequent false or partially true claims.
func (d *Daemon) TopDisputed(count int) []factcheck.DisputedClaimGroup {
	return d.history.TopDisputed(count)
}

// ClearHistory empties the history and the overlay panel.
func (d *Daemon) ClearHistory() int {
	removed := d.history.Len()
	d.history.Clear()
	d.panel.Clear()
	d.logger.Info("history cleared", logging.Int("removed", removed))
	return removed
}

// CheckText verifies text and an optional frame outside the poll loop. When
// record is set the result is stored and rendered like a cycle result.
func (d *Daemon) CheckText(ctx context.Context, text string, image []byte, timestamp float64, record bool) (factcheck.VerificationResult, error) {
	if strings.TrimSpace(text) == "" && len(image) == 0 {
		return factcheck.VerificationResult{}, errors.New("text or image is required")
	}
	result, err := d.verifier.CheckFact(ctx, text, image)
	if err != nil {
		return factcheck.VerificationResult{}, err
	}
	result.Timestamp = timestamp
	if record {
		d.history.Record(result)
		d.panel.Render(result)
	}
	return result, nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	enabled, err := d.store.Enabled(ctx)
	if err != nil {
		d.logger.Warn("read enabled flag failed", logging.Error(err))
	}
	status := Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		Enabled:        enabled,
		Model:          d.verifier.Model(),
		APIKeyPresent:  d.verifier.Configured(),
		LoopState:      monitor.StateIdle,
		IntervalMS:     d.cfg.PollInterval().Milliseconds(),
		Frames:         d.frames != nil,
		HistoryLen:     d.history.Len(),
		HistoryCap:     d.history.Capacity(),
		OverlayEntries: len(d.panel.Entries()),
		OverlayClients: d.hub.ClientCount(),
		LockFilePath:   d.lockPath,
		SettingsDBPath: d.store.Path(),
		SocketPath:     d.cfg.SocketPath(),
		APIAddress:     d.api.address(),
		Dependencies:   []deps.Status{deps.ResolveFFmpeg(d.cfg.Capture.FFmpegBinary, d.cfg.Capture.Frames)},
	}

	d.mu.Lock()
	att := d.attached
	d.mu.Unlock()
	if att != nil {
		info := att.session.Info()
		status.Session = &info
		status.LoopState = att.loop.State()
		status.Generation = att.loop.Generation()
		status.LoopStats = att.loop.Stats()
	}
	return status
}

// shutdownTimeout bounds how long Detach waits for in-flight cycles.
const shutdownTimeout = 10 * time.Second

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"factwatch/internal/capture"
	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
	"factwatch/internal/playback"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 5 * time.Second

// State is the loop's activation state.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

// Verifier checks caption text and an optional JPEG frame.
type Verifier interface {
	CheckFact(ctx context.Context, text string, image []byte) (factcheck.VerificationResult, error)
}

// Recorder stores completed results.
type Recorder interface {
	Record(result factcheck.VerificationResult)
}

// Renderer displays completed results.
type Renderer interface {
	Render(result factcheck.VerificationResult) bool
}

// Source reports where playback is.
type Source interface {
	Position() float64
	Video() string
}

// Deps are the collaborators a loop drives. Frames and Enabled are optional.
type Deps struct {
	Source   Source
	Captions capture.CaptionReader
	Frames   capture.FrameSampler
	Verifier Verifier
	Recorder Recorder
	Renderer Renderer
	Enabled  func(context.Context) (bool, error)
}

// Options tune loop timing.
type Options struct {
	Interval              time.Duration
	SkipUnchangedCaptions bool
}

// Stats counts cycle outcomes since the loop was created.
type Stats struct {
	Dispatched uint64 `json:"dispatched"`
	Recorded   uint64 `json:"recorded"`
	Skipped    uint64 `json:"skipped"`
	Failed     uint64 `json:"failed"`
	Stale      uint64 `json:"stale"`
}

// Loop samples the session while it plays.
type Loop struct {
	logger *slog.Logger
	deps   Deps
	opts   Options

	// commitMu orders generation changes against recording, so nothing is
	// recorded for an activation once Stop or Start has replaced it.
	commitMu sync.Mutex

	mu          sync.Mutex
	state       State
	generation  uint64
	cancel      context.CancelFunc
	fingerprint uint64
	hasPrint    bool

	wg         sync.WaitGroup
	dispatched atomic.Uint64
	recorded   atomic.Uint64
	skipped    atomic.Uint64
	failed     atomic.Uint64
	stale      atomic.Uint64
}

// New constructs an idle loop.
func New(deps Deps, opts Options, logger *slog.Logger) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Loop{
		logger: logging.NewComponentLogger(logger, "monitor"),
		deps:   deps,
		opts:   opts,
		state:  StateIdle,
	}
}

// State returns the current activation state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Generation returns the current activation number.
func (l *Loop) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Stats returns cycle counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Dispatched: l.dispatched.Load(),
		Recorded:   l.recorded.Load(),
		Skipped:    l.skipped.Load(),
		Failed:     l.failed.Load(),
		Stale:      l.stale.Load(),
	}
}

// Start activates the loop, replacing any running activation. It reports
// false when checking is disabled.
func (l *Loop) Start(ctx context.Context) bool {
	if l.deps.Enabled != nil {
		enabled, err := l.deps.Enabled(ctx)
		if err != nil {
			logging.WarnWithContext(l.logger, "enabled flag unreadable; assuming enabled", "settings_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the settings database in the state directory"),
				logging.String(logging.FieldImpact, "fact checking runs even if it was disabled"),
			)
		} else if !enabled {
			l.logger.Info("fact checking disabled; loop stays idle",
				logging.Args(logging.DecisionAttrs("loop_start", "skipped", "disabled")...)...)
			return false
		}
	}

	l.commitMu.Lock()
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.cancel = cancel
	l.state = StateActive
	l.hasPrint = false
	l.mu.Unlock()
	l.commitMu.Unlock()

	l.logger.Info("poll loop started",
		logging.Uint64(logging.FieldGeneration, gen),
		logging.Duration("interval", l.opts.Interval),
	)

	l.dispatch(runCtx, gen)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.tick(runCtx, gen)
	}()
	return true
}

// Stop returns the loop to idle, cancelling in-flight cycles. Responses that
// still arrive are discarded.
func (l *Loop) Stop() {
	l.commitMu.Lock()
	defer l.commitMu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateIdle {
		return
	}
	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = StateIdle
	l.logger.Info("poll loop stopped", logging.Uint64(logging.FieldGeneration, l.generation))
}

// Wait blocks until every dispatched cycle and ticker has returned.
func (l *Loop) Wait() {
	l.wg.Wait()
}

// Run applies session events until the channel closes, a detach arrives or
// ctx ends. The loop is stopped on return.
func (l *Loop) Run(ctx context.Context, events <-chan playback.Event) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			evtCtx := logging.WithSessionID(ctx, evt.SessionID)
			switch evt.Kind {
			case playback.EventPlay, playback.EventPause:
				l.follow(evtCtx, evt.Kind == playback.EventPlay)
			case playback.EventSeek:
				l.resetFingerprint()
			case playback.EventDetach:
				return nil
			}
		}
	}
}

// follow applies a play or pause. When the source reports its own playing
// state, that state wins over the event, so a displaced event cannot leave the
// loop running on a paused video.
func (l *Loop) follow(ctx context.Context, playing bool) {
	if src, ok := l.deps.Source.(interface{ Playing() bool }); ok {
		playing = src.Playing()
	}
	if playing {
		l.Start(ctx)
		return
	}
	l.Stop()
}

func (l *Loop) tick(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.dispatch(ctx, gen)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, gen uint64) {
	l.dispatched.Add(1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.runCycle(ctx, gen)
	}()
}

func (l *Loop) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}

func (l *Loop) resetFingerprint() {
	l.mu.Lock()
	l.hasPrint = false
	l.mu.Unlock()
}

// unchanged records text's fingerprint and reports whether it matches the
// previous dispatched cycle.
func (l *Loop) unchanged(text string) bool {
	sum := xxhash.Sum64String(text)
	l.mu.Lock()
	defer l.mu.Unlock()
	same := l.hasPrint && l.fingerprint == sum
	l.fingerprint = sum
	l.hasPrint = true
	return same
}

func (l *Loop) runCycle(ctx context.Context, gen uint64) {
	ctx = logging.WithCycleID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, l.logger).With(logging.Uint64(logging.FieldGeneration, gen))

	var position float64
	var video string
	if l.deps.Source != nil {
		position = l.deps.Source.Position()
		video = l.deps.Source.Video()
	}

	var text string
	if l.deps.Captions != nil {
		captions, err := l.deps.Captions.ReadCaptions(ctx, position)
		if err != nil {
			logging.WarnWithContext(logger, "caption read failed", "caption_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the caption file or the caption feed"),
				logging.String(logging.FieldImpact, "cycle continues without caption text"),
			)
		}
		text = captions
	}

	var image []byte
	if l.deps.Frames != nil && video != "" {
		frame, err := l.deps.Frames.SampleFrame(ctx, video, position)
		switch {
		case err == nil:
			image = frame
		case ctx.Err() != nil:
			l.stale.Add(1)
			logger.Debug("cycle cancelled during frame capture")
			return
		default:
			logging.WarnWithContext(logger, "frame capture failed", "frame_capture_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check capture.ffmpeg_binary and the video path"),
				logging.String(logging.FieldImpact, "cycle continues without a frame"),
			)
		}
	}

	if text == "" && len(image) == 0 {
		l.skipped.Add(1)
		logging.WarnWithContext(logger, "nothing to verify", "cycle_no_input",
			logging.Position(position),
			logging.String(logging.FieldErrorHint, "attach captions or enable frame capture"),
			logging.String(logging.FieldImpact, "no overlay entry for this cycle"),
		)
		return
	}

	same := l.unchanged(text)
	if l.opts.SkipUnchangedCaptions && len(image) == 0 && same {
		l.skipped.Add(1)
		logger.Debug("captions unchanged since last cycle",
			logging.Args(logging.DecisionAttrs("cycle_dispatch", "skipped", "unchanged captions")...)...)
		return
	}

	started := time.Now()
	result, err := l.deps.Verifier.CheckFact(ctx, text, image)
	if err != nil {
		if !l.current(gen) && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
			l.stale.Add(1)
			logger.Debug("in-flight verification cancelled", logging.Error(err))
			return
		}
		l.failed.Add(1)
		logging.WarnWithContext(logger, "fact check failed", factcheck.EventType(err),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, factcheck.ErrorHint(err)),
			logging.Position(position),
		)
		return
	}
	result.Timestamp = position

	l.commitMu.Lock()
	defer l.commitMu.Unlock()
	if !l.current(gen) {
		l.stale.Add(1)
		logger.Info("discarding stale verification result",
			logging.Args(logging.DecisionAttrs("stale_response", "discarded", "loop restarted since dispatch")...)...)
		return
	}

	if result.IsFallback() {
		logging.WarnWithContext(logger, "verification reply was not claims JSON", "verification_unstructured",
			logging.String("raw", factcheck.SummarizeSnippet(result.Raw)),
			logging.String(logging.FieldErrorHint, "the model ignored the JSON instructions; it usually recovers next cycle"),
			logging.String(logging.FieldImpact, "result kept in history without claims"),
		)
	}

	if l.deps.Recorder != nil {
		l.deps.Recorder.Record(result)
	}
	rendered := false
	if l.deps.Renderer != nil {
		rendered = l.deps.Renderer.Render(result)
	}
	l.recorded.Add(1)
	logger.Info("cycle recorded",
		logging.String("result_id", result.ID),
		logging.Int("claims", len(result.Claims)),
		logging.Bool("had_image", result.HadImage),
		logging.Bool("rendered", rendered),
		logging.Position(position),
		logging.Duration("elapsed", time.Since(started)),
	)
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"factwatch/internal/capture"
	"factwatch/internal/logging"
	"factwatch/internal/monitor"
	"factwatch/internal/playback"
)

// AttachOptions describe the video being watched.
type AttachOptions struct {
	Video    string
	Captions string
	Position float64
	Play     bool
}

// Attach replaces any attached session with a new one and starts following its
// events. Nothing is sampled until the session plays.
func (d *Daemon) Attach(ctx context.Context, opts AttachOptions) (playback.Info, error) {
	if !d.running.Load() {
		return playback.Info{}, ErrNotRunning
	}

	video, err := resolveMediaPath(opts.Video)
	if err != nil {
		return playback.Info{}, fmt.Errorf("video: %w", err)
	}
	captionsPath, err := resolveMediaPath(opts.Captions)
	if err != nil {
		return playback.Info{}, fmt.Errorf("captions: %w", err)
	}
	if video == "" && captionsPath == "" {
		d.logger.Info("session attached without media; captions must be pushed",
			logging.Args(logging.DecisionAttrs("attach_media", "pushed_captions_only", "no video or caption file")...)...)
	}

	var srt *capture.SRTReader
	if captionsPath != "" {
		srt, err = capture.OpenSRT(captionsPath, d.cfg.CaptionWindow(), d.cfg.Capture.CaptionSegments)
		if err != nil {
			return playback.Info{}, err
		}
	}

	d.Detach()

	session := playback.New(video, captionsPath, playback.WithStartPosition(opts.Position))
	readers := []capture.CaptionReader{d.captions}
	if srt != nil {
		readers = append(readers, srt)
	}
	var frames capture.FrameSampler
	if video != "" {
		frames = d.frames
	}
	loop := monitor.New(monitor.Deps{
		Source:   session,
		Captions: capture.FirstOf(readers...),
		Frames:   frames,
		Verifier: d.verifier,
		Recorder: d.history,
		Renderer: d.panel,
		Enabled:  d.store.Enabled,
	}, monitor.Options{
		Interval:              d.cfg.PollInterval(),
		SkipUnchangedCaptions: d.cfg.Monitor.SkipUnchangedCaptions,
	}, d.logger)

	att := &attachment{session: session, loop: loop, srt: srt, done: make(chan struct{})}
	d.mu.Lock()
	d.attached = att
	d.mu.Unlock()

	runCtx := logging.WithSessionID(d.ctx, session.ID())
	go func() {
		defer close(att.done)
		if err := loop.Run(runCtx, session.Events()); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("monitor loop exited", logging.Error(err))
		}
	}()

	cueCount := 0
	if srt != nil {
		cueCount = srt.Cues()
	}
	d.logger.Info("session attached",
		logging.String(logging.FieldSessionID, session.ID()),
		logging.String("video", video),
		logging.String("captions", captionsPath),
		logging.Int("cues", cueCount),
		logging.Bool("frames", frames != nil),
	)
	if opts.Play {
		session.Play()
	}
	return session.Info(), nil
}

// Detach stops the attached session and waits for its cycles to finish.
// Detaching with nothing attached is a no-op.
func (d *Daemon) Detach() bool {
	d.mu.Lock()
	att := d.attached
	d.attached = nil
	d.mu.Unlock()
	if att == nil {
		return false
	}

	att.session.Detach()
	select {
	case <-att.done:
	case <-time.After(shutdownTimeout):
		logging.WarnWithContext(d.logger, "monitor loop did not exit after detach", "detach_timeout",
			logging.String(logging.FieldErrorHint, "a verification request may be hanging; check gemini.timeout_seconds"),
			logging.String(logging.FieldImpact, "late results are discarded"),
		)
		att.loop.Stop()
	}
	att.loop.Wait()
	_, _ = d.captions.ReadCaptions(context.Background(), 0)
	d.panel.Clear()
	d.logger.Info("session detached",
		logging.String(logging.FieldSessionID, att.session.ID()),
		logging.Int("dropped_events", att.session.Dropped()),
	)
	return true
}

// Session returns the attached session snapshot.
func (d *Daemon) Session() (playback.Info, error) {
	att, err := d.current()
	if err != nil {
		return playback.Info{}, err
	}
	return att.session.Info(), nil
}

// Play resumes playback, activating the poll loop.
func (d *Daemon) Play() (playback.Info, error) {
	att, err := d.current()
	if err != nil {
		return playback.Info{}, err
	}
	att.session.Play()
	d.publishPlaying(true)
	return att.session.Info(), nil
}

// Pause pauses playback, idling the poll loop.
func (d *Daemon) Pause() (playback.Info, error) {
	att, err := d.current()
	if err != nil {
		return playback.Info{}, err
	}
	att.session.Pause()
	d.publishPlaying(false)
	return att.session.Info(), nil
}

// Seek moves the playhead.
func (d *Daemon) Seek(position float64) (playback.Info, error) {
	att, err := d.current()
	if err != nil {
		return playback.Info{}, err
	}
	att.session.Seek(position)
	return att.session.Info(), nil
}

// PushCaption queues caption lines for the next cycle and returns how many are
// pending.
func (d *Daemon) PushCaption(lines ...string) int {
	for _, line := range lines {
		d.captions.Push(line)
	}
	return d.captions.Pending()
}

// CaptionBuffer exposes the pushed-caption buffer so a Transcriber can feed it.
func (d *Daemon) CaptionBuffer() *capture.CaptionBuffer {
	return d.captions
}

func (d *Daemon) current() (*attachment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attached == nil {
		return nil, ErrNoSession
	}
	return d.attached, nil
}

func (d *Daemon) publishPlaying(playing bool) {
	enabled, err := d.store.Enabled(context.Background())
	if err != nil {
		enabled = true
	}
	d.panel.PublishStatus(enabled, playing)
}

// loopContext returns a context for loop activations outside the event
// stream, tagged with the session.
func (d *Daemon) loopContext(ctx context.Context, att *attachment) context.Context {
	base := d.ctx
	if base == nil {
		base = ctx
	}
	return logging.WithSessionID(base, att.session.ID())
}

func resolveMediaPath(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}
	return abs, nil
}

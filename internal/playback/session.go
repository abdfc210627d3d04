package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind names a playback transition.
type EventKind string

const (
	EventPlay   EventKind = "play"
	EventPause  EventKind = "pause"
	EventSeek   EventKind = "seek"
	EventDetach EventKind = "detach"
)

// Event is published for every transition.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	Position  float64   `json:"position"`
	At        time.Time `json:"at"`
}

const defaultEventBuffer = 16

// Info is a point-in-time view of a session.
type Info struct {
	ID         string    `json:"id"`
	Video      string    `json:"video,omitempty"`
	Captions   string    `json:"captions,omitempty"`
	Playing    bool      `json:"playing"`
	Position   float64   `json:"position"`
	AttachedAt time.Time `json:"attached_at"`
}

// Session tracks one attached video. It is safe for concurrent use.
type Session struct {
	id         string
	video      string
	captions   string
	attachedAt time.Time
	now        func() time.Time

	mu        sync.Mutex
	playing   bool
	base      float64
	startedAt time.Time
	detached  bool
	dropped   int
	events    chan Event
}

// Option customizes a session.
type Option func(*Session)

// WithClock overrides the wall clock used to advance the playhead.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(size int) Option {
	return func(s *Session) {
		if size > 0 {
			s.events = make(chan Event, size)
		}
	}
}

// WithStartPosition sets the initial playhead.
func WithStartPosition(seconds float64) Option {
	return func(s *Session) {
		if seconds > 0 {
			s.base = seconds
		}
	}
}

// New attaches a paused session to video and captions. Either may be empty.
func New(video, captions string, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		video:    video,
		captions: captions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = make(chan Event, defaultEventBuffer)
	}
	s.attachedAt = s.now().UTC()
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) Video() string    { return s.video }
func (s *Session) Captions() string { return s.captions }

// Events delivers transitions until Detach closes the channel.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Play starts the clock. Playing an already playing session re-emits play so
// the loop restarts its timer.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return
	}
	if !s.playing {
		s.playing = true
		s.startedAt = s.now()
	}
	s.emitLocked(EventPlay)
}

// Pause freezes the clock at the current position.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return
	}
	if s.playing {
		s.base = s.positionLocked()
		s.playing = false
	}
	s.emitLocked(EventPause)
}

// Seek moves the playhead. Negative positions clamp to zero.
func (s *Session) Seek(position float64) {
	if position < 0 {
		position = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return
	}
	s.base = position
	if s.playing {
		s.startedAt = s.now()
	}
	s.emitLocked(EventSeek)
}

// Detach stops the session for good and closes the event channel.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return
	}
	s.base = s.positionLocked()
	s.playing = false
	s.emitLocked(EventDetach)
	s.detached = true
	close(s.events)
}

// Position returns the playhead in seconds.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// Playing reports whether the clock is running.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Detached reports whether Detach has been called.
func (s *Session) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

// Dropped returns how many queued events were displaced by newer ones.
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:         s.id,
		Video:      s.video,
		Captions:   s.captions,
		Playing:    s.playing,
		Position:   s.positionLocked(),
		AttachedAt: s.attachedAt,
	}
}

func (s *Session) positionLocked() float64 {
	if !s.playing {
		return s.base
	}
	return s.base + s.now().Sub(s.startedAt).Seconds()
}

// emitLocked queues evt without blocking. A full buffer gives up its oldest
// event so the newest transition is always delivered.
func (s *Session) emitLocked(kind EventKind) {
	evt := Event{Kind: kind, SessionID: s.id, Position: s.positionLocked(), At: s.now().UTC()}
	for {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped++
		default:
		}
	}
}

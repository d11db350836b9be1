package playback

import (
	"log/slog"
	"time"

	"github.com/openinterp/signbridge/pkg/pcm"
)

// Clock provides the current time. The zero value of the scheduler uses
// the system clock; tests inject a fake.
type Clock interface {
	Now() time.Time
}

// Sink plays decoded frames. PlayAt must not block; implementations queue
// the frame to begin at the given start time.
type Sink interface {
	// PlayAt schedules the frame to start playing at start.
	PlayAt(frame *pcm.Frame, start time.Time) error
	// Resume wakes a suspended output. Must be called before the first
	// PlayAt; calling it on a running output is a no-op.
	Resume() error
	// Close stops the output and releases it.
	Close() error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler owns the playback cursor for one session. It is not safe for
// concurrent use; the session controller calls it from its single
// dispatch goroutine.
type Scheduler struct {
	sink   Sink
	clock  Clock
	logger *slog.Logger

	// cursor is the next allowed start time. The zero value means no
	// constraint yet.
	cursor time.Time
}

// NewScheduler creates a scheduler for the given sink. A nil clock
// selects the system clock; a nil logger selects slog.Default.
func NewScheduler(sink Sink, clock Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{sink: sink, clock: clock, logger: logger}
}

// Enqueue decodes raw PCM bytes and schedules the frame directly after
// whatever is already queued. A malformed frame is dropped with a
// warning; the cursor is untouched so later frames are unaffected.
func (s *Scheduler) Enqueue(data []byte, rate int) {
	frame, err := pcm.DecodeFrame(data, rate)
	if err != nil {
		s.logger.Warn("playback: dropping malformed frame", "len", len(data), "error", err)
		return
	}

	start := s.clock.Now()
	if s.cursor.After(start) {
		start = s.cursor
	}
	if err := s.sink.PlayAt(frame, start); err != nil {
		s.logger.Warn("playback: sink rejected frame", "error", err)
		return
	}
	s.cursor = start.Add(frame.Duration())
}

// Cursor returns the next allowed start time. Zero means nothing has
// been scheduled yet.
func (s *Scheduler) Cursor() time.Time {
	return s.cursor
}

// Reset clears the cursor. Called when a new session begins.
func (s *Scheduler) Reset() {
	s.cursor = time.Time{}
}

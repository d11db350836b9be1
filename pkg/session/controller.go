package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openinterp/signbridge/pkg/capture"
	"github.com/openinterp/signbridge/pkg/playback"
	"github.com/openinterp/signbridge/pkg/transcript"
)

// Sentinel errors for callers that branch on the failure kind.
var (
	// ErrNoCredential means the API key was absent at start time. The
	// session never leaves Disconnected.
	ErrNoCredential = errors.New("session: missing API key")

	// ErrSessionActive rejects a second start while a session exists.
	ErrSessionActive = errors.New("session: a session is already active")
)

// Config wires a controller together. APIKey, Sink and AcquireMedia are
// required; everything else has defaults.
type Config struct {
	// APIKey is the credential for the remote endpoint, read at start
	// time. Empty means start fails with ErrNoCredential.
	APIKey string

	Model             string
	Voice             string
	SystemInstruction string

	// ConnectTimeout bounds the transport handshake. Zero means no
	// timeout; a hung connect is then only resolved by Stop.
	ConnectTimeout time.Duration

	// AcquireMedia acquires capture devices for one session. Called
	// while Connecting; the returned pipeline is owned by the
	// controller and released on every teardown path.
	AcquireMedia func(ctx context.Context) (*capture.Pipeline, error)

	// Sink is the audio output for model speech.
	Sink playback.Sink

	// Dialer defaults to a GeminiDialer.
	Dialer Dialer

	// Clock defaults to the system clock (tests inject fakes).
	Clock playback.Clock

	// OnUpdate, when set, is called after every externally visible
	// change (state, transcript, pending text, error message).
	OnUpdate func()

	Logger *slog.Logger
}

// Controller runs at most one session at a time.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	gen       int // invalidates in-flight connects
	pipeline  *capture.Pipeline
	transport Transport
	scheduler *playback.Scheduler
	agg       *transcript.Aggregator
	lastErr   string
	muted     bool
	videoOff  bool
}

// NewController creates an idle controller. The transcript survives
// across sessions run on the same controller.
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &GeminiDialer{}
	}
	return &Controller{
		cfg:       cfg,
		logger:    logger,
		scheduler: playback.NewScheduler(cfg.Sink, cfg.Clock, logger),
		agg:       transcript.NewAggregator(nil),
	}
}

// Start brings the controller from Disconnected to Connected: credential
// check, device acquisition, transport handshake. On any failure the
// controller tears down fully and ends in Errored with a user-visible
// message. Start returns once the session is live (or failed).
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Active() {
		c.mu.Unlock()
		return ErrSessionActive
	}
	if c.cfg.APIKey == "" {
		// Config failure: the session never reaches Connecting.
		c.lastErr = "API key is not configured"
		c.mu.Unlock()
		c.notify()
		return ErrNoCredential
	}
	c.state = Connecting
	c.lastErr = ""
	gen := c.gen
	c.mu.Unlock()
	c.notify()

	pipeline, err := c.cfg.AcquireMedia(ctx)
	if err != nil {
		c.fail(gen, fmt.Errorf("session: acquire capture devices: %w", err))
		return err
	}
	c.mu.Lock()
	if c.gen != gen {
		// Stop won the race; release what we just acquired.
		c.mu.Unlock()
		pipeline.Close()
		return nil
	}
	c.pipeline = pipeline
	pipeline.SetMuted(c.muted)
	pipeline.SetVideoEnabled(!c.videoOff)
	c.mu.Unlock()

	// The output must be running before the first frame is scheduled.
	if err := c.cfg.Sink.Resume(); err != nil {
		err = fmt.Errorf("session: resume audio output: %w", err)
		c.fail(gen, err)
		return err
	}

	dialCtx := ctx
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}
	transport, err := c.cfg.Dialer.Dial(dialCtx, DialConfig{
		APIKey:            c.cfg.APIKey,
		Model:             c.cfg.Model,
		Voice:             c.cfg.Voice,
		SystemInstruction: c.cfg.SystemInstruction,
	})
	if err != nil {
		err = fmt.Errorf("session: open transport: %w", err)
		c.fail(gen, err)
		return err
	}

	c.mu.Lock()
	if c.gen != gen {
		// Stop was called while the handshake was in flight; the late
		// handle is discarded.
		c.mu.Unlock()
		transport.Close()
		return nil
	}
	c.transport = transport
	c.state = Connected
	c.scheduler.Reset()
	c.mu.Unlock()
	c.notify()

	go c.forwardLoop(gen, pipeline, transport)
	go c.dispatchLoop(gen, transport)
	return nil
}

// Stop tears the session down from any state: capture released,
// transport closed, pending transcript cleared. Finalized turns are
// kept. Safe to call repeatedly and concurrently with Start.
func (c *Controller) Stop() {
	c.teardown(-1, Disconnected, "")
}

// fail tears down and surfaces a user-visible message, unless gen is
// stale (a Stop already ran).
func (c *Controller) fail(gen int, err error) {
	c.logger.Error("session failed", "error", err)
	c.teardown(gen, Errored, err.Error())
}

// teardown releases everything and moves to final. gen < 0 forces the
// teardown regardless of in-flight generation.
func (c *Controller) teardown(gen int, final State, msg string) {
	c.mu.Lock()
	if gen >= 0 && c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	pipeline := c.pipeline
	transport := c.transport
	c.pipeline = nil
	c.transport = nil
	c.state = final
	if msg != "" {
		c.lastErr = msg
	}
	c.agg.ClearPending()
	c.mu.Unlock()

	// Release devices and the stream unconditionally, whatever failed
	// before this point.
	if pipeline != nil {
		pipeline.Close()
	}
	if transport != nil {
		if err := transport.Close(); err != nil {
			c.logger.Warn("session: transport close failed", "error", err)
		}
	}
	c.notify()
}

// forwardLoop sends capture output to the transport as produced. A send
// failure drops that chunk and keeps the session alive.
func (c *Controller) forwardLoop(gen int, pipeline *capture.Pipeline, transport Transport) {
	for chunk := range pipeline.Chunks() {
		var err error
		switch chunk.Kind {
		case capture.ChunkAudio:
			err = transport.SendAudio(chunk.Data)
		case capture.ChunkImage:
			err = transport.SendImage(chunk.Data)
		}
		if err != nil {
			c.mu.Lock()
			stale := c.gen != gen
			c.mu.Unlock()
			if stale {
				return
			}
			c.logger.Warn("session: dropping outbound chunk", "chunk", chunk.String(), "error", err)
		}
	}
}

// dispatchLoop consumes inbound events in delivery order. It is the
// only goroutine that touches the playback cursor and the pending
// transcript buffers.
func (c *Controller) dispatchLoop(gen int, transport Transport) {
	for ev, err := range transport.Events() {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if err != nil {
			c.mu.Unlock()
			c.fail(gen, fmt.Errorf("session: transport error: %w", err))
			return
		}

		if len(ev.Audio) > 0 {
			c.scheduler.Enqueue(ev.Audio, ev.AudioRate)
		}
		if ev.Interrupted {
			// The model was cut off; drop the stale scheduling horizon
			// so its next reply starts immediately.
			c.scheduler.Reset()
		}
		if ev.OutputTranscript != "" {
			c.agg.AddDelta(ev.OutputTranscript, transcript.SourceOutput)
		}
		if ev.InputTranscript != "" {
			c.agg.AddDelta(ev.InputTranscript, transcript.SourceInput)
		}
		if ev.TurnComplete {
			c.agg.CompleteTurn()
		}
		c.mu.Unlock()
		c.notify()
	}

	// The stream ended without an error event: the server closed it.
	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if !stale {
		c.fail(gen, errors.New("session: stream closed by server"))
	}
}

func (c *Controller) notify() {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate()
	}
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent user-visible error message, empty
// when none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Turns returns the finalized transcript in order.
func (c *Controller) Turns() []transcript.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agg.Turns()
}

// Pending returns the model text currently being streamed.
func (c *Controller) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agg.Pending()
}

// SetMuted toggles audio capture for the current and future sessions.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	pipeline := c.pipeline
	c.mu.Unlock()
	if pipeline != nil {
		pipeline.SetMuted(muted)
	}
	c.notify()
}

// Muted reports whether capture is muted.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetVideoEnabled toggles snapshot capture for the current and future
// sessions.
func (c *Controller) SetVideoEnabled(enabled bool) {
	c.mu.Lock()
	c.videoOff = !enabled
	pipeline := c.pipeline
	c.mu.Unlock()
	if pipeline != nil {
		pipeline.SetVideoEnabled(enabled)
	}
	c.notify()
}

// VideoEnabled reports whether snapshots are taken.
func (c *Controller) VideoEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.videoOff
}

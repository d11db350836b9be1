package session

import (
	"context"
	"iter"

	"github.com/openinterp/signbridge/pkg/gemlive"
)

// Event is one inbound message from the remote endpoint, already
// decoded off the wire. Any combination of fields may be set.
type Event struct {
	// Audio is raw 16-bit PCM to schedule for playback.
	Audio []byte
	// AudioRate is the sample rate of Audio in Hz.
	AudioRate int

	// OutputTranscript is a fragment of the model's speech transcript.
	OutputTranscript string
	// InputTranscript is a fragment of the user's speech transcript.
	InputTranscript string

	// TurnComplete marks the end of the current model turn.
	TurnComplete bool
	// Interrupted reports the model turn was cut off by new input.
	Interrupted bool
}

// Transport is the open bidirectional stream to the remote endpoint.
// Sends are fire-and-forget from the controller's perspective.
type Transport interface {
	SendAudio(data []byte) error
	SendImage(data []byte) error
	// Events yields inbound events in delivery order until the stream
	// ends; a yielded error is a transport runtime error.
	Events() iter.Seq2[Event, error]
	Close() error
}

// DialConfig describes the stream to open.
type DialConfig struct {
	APIKey            string
	Model             string
	Voice             string
	SystemInstruction string
}

// Dialer opens a Transport. The controller uses GeminiDialer by
// default; tests substitute fakes.
type Dialer interface {
	Dial(ctx context.Context, cfg DialConfig) (Transport, error)
}

// GeminiDialer opens sessions against the Gemini Live API.
type GeminiDialer struct {
	// Options are passed through to the gemlive client.
	Options []gemlive.Option
}

// Dial implements Dialer.
func (d *GeminiDialer) Dial(ctx context.Context, cfg DialConfig) (Transport, error) {
	client := gemlive.NewClient(cfg.APIKey, d.Options...)
	s, err := client.Connect(ctx, &gemlive.ConnectConfig{
		Model:             cfg.Model,
		Voice:             cfg.Voice,
		SystemInstruction: cfg.SystemInstruction,
	})
	if err != nil {
		return nil, err
	}
	return &liveTransport{s: s}, nil
}

// liveTransport adapts a gemlive session to the Transport interface.
type liveTransport struct {
	s *gemlive.Session
}

func (t *liveTransport) SendAudio(data []byte) error { return t.s.SendAudio(data) }
func (t *liveTransport) SendImage(data []byte) error { return t.s.SendImage(data) }
func (t *liveTransport) Close() error                { return t.s.Close() }

func (t *liveTransport) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for msg, err := range t.s.Messages() {
			if err != nil {
				yield(Event{}, err)
				return
			}
			ev := Event{
				Audio:            msg.Audio,
				AudioRate:        msg.AudioRate,
				OutputTranscript: msg.OutputTranscript,
				InputTranscript:  msg.InputTranscript,
				TurnComplete:     msg.TurnComplete,
				Interrupted:      msg.Interrupted,
			}
			// Text-modality responses land in the transcript too.
			if ev.OutputTranscript == "" && msg.Text != "" {
				ev.OutputTranscript = msg.Text
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

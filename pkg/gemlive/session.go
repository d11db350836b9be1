package gemlive

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openinterp/signbridge/pkg/pcm"
)

// Session is one live bidirectional stream. Sends are safe for
// concurrent use; messages are read by a single background goroutine
// and delivered in server order.
type Session struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	msgCh     chan messageOrError
	closeOnce sync.Once
	mu        sync.Mutex
}

type messageOrError struct {
	msg *ServerMessage
	err error
}

func (c *Client) connect(ctx context.Context, config *ConnectConfig) (*Session, error) {
	if config == nil {
		config = &ConnectConfig{}
	}
	model := config.Model
	if model == "" {
		model = ModelFlashLive
	}
	modalities := config.ResponseModalities
	if len(modalities) == 0 {
		modalities = []string{"AUDIO"}
	}

	url := fmt.Sprintf("%s?key=%s", c.config.wsURL, c.config.apiKey)

	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Status:     "CONNECTION_FAILED",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("gemlive: failed to connect: %w", err)
	}

	setup := setupMessage{Setup: setupPayload{Model: model}}
	gc := &generationConfig{ResponseModalities: modalities}
	if config.Voice != "" {
		gc.SpeechConfig = &speechConfig{
			VoiceConfig: &voiceConfig{
				PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: config.Voice},
			},
		}
	}
	setup.Setup.GenerationConfig = gc
	if config.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &content{
			Parts: []part{{Text: config.SystemInstruction}},
		}
	}
	if !config.DisableTranscription {
		setup.Setup.InputAudioTranscription = &struct{}{}
		setup.Setup.OutputAudioTranscription = &struct{}{}
	}

	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("gemlive: send setup: %w", err)
	}

	// The handshake completes when the server acknowledges the setup.
	if err := awaitSetupComplete(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	session := &Session{
		conn:    conn,
		closeCh: make(chan struct{}),
		msgCh:   make(chan messageOrError, 100),
	}
	go session.readLoop()

	return session, nil
}

// awaitSetupComplete reads messages until the setup acknowledgment
// arrives. The server may reject the setup with an error message.
func awaitSetupComplete(ctx context.Context, conn *websocket.Conn) error {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		defer conn.SetReadDeadline(time.Time{})
	}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("gemlive: handshake read: %w", err)
		}
		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("gemlive: handshake parse: %w", err)
		}
		if msg.Error != nil {
			return msg.Error.toError()
		}
		if msg.SetupComplete != nil {
			return nil
		}
	}
}

// SendAudio sends one chunk of 16kHz mono 16-bit PCM audio. The data is
// base64-encoded before transmission.
func (s *Session) SendAudio(data []byte) error {
	return s.sendMedia(MimeAudioPCM16K, data)
}

// SendImage sends one JPEG snapshot.
func (s *Session) SendImage(data []byte) error {
	return s.sendMedia(MimeImageJPEG, data)
}

func (s *Session) sendMedia(mimeType string, data []byte) error {
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []mediaChunk{{
				MimeType: mimeType,
				Data:     pcm.EncodeBase64(data),
			}},
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.closeCh:
		return fmt.Errorf("gemlive: send on closed session")
	default:
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("gemlive: send %s: %w", mimeType, err)
	}
	return nil
}

// Messages returns an iterator over inbound server messages in delivery
// order. Iteration ends when the session closes; after an error is
// yielded, iteration stops.
func (s *Session) Messages() iter.Seq2[*ServerMessage, error] {
	return func(yield func(*ServerMessage, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.msgCh:
				if !ok {
					return
				}
				if !yield(item.msg, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session. Safe to call multiple times.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

// readLoop reads server messages and delivers them on msgCh.
func (s *Session) readLoop() {
	defer close(s.msgCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
			case s.msgCh <- messageOrError{err: fmt.Errorf("gemlive: read: %w", err)}:
			}
			return
		}

		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			str := string(raw)
			if len(str) > 1000 {
				str = str[:1000] + "..."
			}
			slog.Debug("gemlive: received message", "len", len(raw), "content", str)
		}

		msg, err := ParseServerMessage(raw)
		if err != nil {
			select {
			case <-s.closeCh:
				return
			case s.msgCh <- messageOrError{err: err}:
			}
			continue
		}

		select {
		case <-s.closeCh:
			return
		case s.msgCh <- messageOrError{msg: msg}:
		}
	}
}

// ParseServerMessage parses one raw wire message. Exposed for tests.
func ParseServerMessage(raw []byte) (*ServerMessage, error) {
	var wire serverMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("gemlive: parse: %w", err)
	}
	if wire.Error != nil {
		return nil, wire.Error.toError()
	}

	msg := &ServerMessage{Raw: raw}
	if wire.GoAway != nil {
		msg.GoAway = true
	}
	sc := wire.ServerContent
	if sc == nil {
		return msg, nil
	}

	msg.TurnComplete = sc.TurnComplete
	msg.Interrupted = sc.Interrupted
	if sc.InputTranscription != nil {
		msg.InputTranscript = sc.InputTranscription.Text
	}
	if sc.OutputTranscription != nil {
		msg.OutputTranscript = sc.OutputTranscription.Text
	}
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.Text != "" {
				msg.Text += p.Text
			}
			if p.InlineData == nil {
				continue
			}
			data, err := pcm.DecodeBase64(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("gemlive: decode inline audio: %w", err)
			}
			msg.Audio = append(msg.Audio, data...)
			msg.AudioRate = parseRate(p.InlineData.MimeType)
		}
	}
	return msg, nil
}

// parseRate extracts the sample rate from a MIME type such as
// "audio/pcm;rate=24000". Falls back to 24000, the live API's output
// rate.
func parseRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		param = strings.TrimSpace(param)
		if v, ok := strings.CutPrefix(param, "rate="); ok {
			if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return 24000
}

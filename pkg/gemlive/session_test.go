package gemlive

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestParseServerMessage(t *testing.T) {
	t.Run("audio", func(t *testing.T) {
		audio := []byte{1, 2, 3, 4}
		raw := `{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"` +
			base64.StdEncoding.EncodeToString(audio) + `"}}]}}}`
		msg, err := ParseServerMessage([]byte(raw))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if string(msg.Audio) != string(audio) {
			t.Errorf("audio=%v, want %v", msg.Audio, audio)
		}
		if msg.AudioRate != 24000 {
			t.Errorf("rate=%d, want 24000", msg.AudioRate)
		}
	})

	t.Run("transcripts and turn complete", func(t *testing.T) {
		raw := `{"serverContent":{"outputTranscription":{"text":"Hello "},"inputTranscription":{"text":"hi"},"turnComplete":true}}`
		msg, err := ParseServerMessage([]byte(raw))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if msg.OutputTranscript != "Hello " {
			t.Errorf("output=%q", msg.OutputTranscript)
		}
		if msg.InputTranscript != "hi" {
			t.Errorf("input=%q", msg.InputTranscript)
		}
		if !msg.TurnComplete {
			t.Error("turnComplete not set")
		}
	})

	t.Run("server error", func(t *testing.T) {
		raw := `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad setup"}}`
		_, err := ParseServerMessage([]byte(raw))
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *Error
		if !asError(err, &apiErr) {
			t.Fatalf("err=%T, want *Error", err)
		}
		if apiErr.Status != "INVALID_ARGUMENT" {
			t.Errorf("status=%q", apiErr.Status)
		}
	})

	t.Run("go away", func(t *testing.T) {
		msg, err := ParseServerMessage([]byte(`{"goAway":{"timeLeft":"10s"}}`))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !msg.GoAway {
			t.Error("goAway not set")
		}
	})
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

func TestParseRate(t *testing.T) {
	cases := map[string]int{
		"audio/pcm;rate=16000":  16000,
		"audio/pcm; rate=24000": 24000,
		"audio/pcm":             24000,
		"audio/pcm;rate=bogus":  24000,
	}
	for mime, want := range cases {
		if got := parseRate(mime); got != want {
			t.Errorf("parseRate(%q)=%d, want %d", mime, got, want)
		}
	}
}

// fakeLiveServer upgrades the connection, replies to setup, and echoes
// every media chunk back as an output transcript fragment.
func fakeLiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var setup setupMessage
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("read setup: %v", err)
			return
		}
		if setup.Setup.Model == "" {
			t.Error("setup missing model")
		}
		if err := conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}}); err != nil {
			return
		}

		for {
			var in realtimeInputMessage
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			for _, chunk := range in.RealtimeInput.MediaChunks {
				reply := map[string]any{
					"serverContent": map[string]any{
						"outputTranscription": map[string]any{"text": chunk.MimeType},
					},
				}
				if err := conn.WriteJSON(reply); err != nil {
					return
				}
			}
		}
	}))
}

func TestSessionRoundTrip(t *testing.T) {
	srv := fakeLiveServer(t)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewClient("test-key", WithWebSocketURL(wsURL))
	session, err := client.Connect(ctx, &ConnectConfig{
		Model:             ModelFlashLive,
		Voice:             "Aoede",
		SystemInstruction: "interpreter",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	if err := session.SendAudio([]byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("send audio: %v", err)
	}
	if err := session.SendImage([]byte{0xff, 0xd8}); err != nil {
		t.Fatalf("send image: %v", err)
	}

	var got []string
	for msg, err := range session.Messages() {
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		got = append(got, msg.OutputTranscript)
		if len(got) == 2 {
			break
		}
	}
	if got[0] != MimeAudioPCM16K || got[1] != MimeImageJPEG {
		t.Errorf("echoed mime types %v", got)
	}
}

func TestSessionSendAfterClose(t *testing.T) {
	srv := fakeLiveServer(t)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	client := NewClient("test-key", WithWebSocketURL(wsURL))
	session, err := client.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := session.SendAudio([]byte{0, 0}); err == nil {
		t.Error("send after close succeeded")
	}
}

func TestSetupSerialization(t *testing.T) {
	setup := setupMessage{Setup: setupPayload{
		Model: ModelFlashLive,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: &voiceConfig{
					PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: "Aoede"},
				},
			},
		},
		SystemInstruction:        &content{Parts: []part{{Text: "persona"}}},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}

	data, err := json.Marshal(setup)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		`"responseModalities":["AUDIO"]`,
		`"voiceName":"Aoede"`,
		`"inputAudioTranscription":{}`,
		`"outputAudioTranscription":{}`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("setup JSON missing %s: %s", want, data)
		}
	}
}

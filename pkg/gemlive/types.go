package gemlive

// MIME types for outbound media chunks.
const (
	MimeAudioPCM16K = "audio/pcm;rate=16000"
	MimeImageJPEG   = "image/jpeg"
)

// ConnectConfig describes the session to open.
type ConnectConfig struct {
	// Model is the live model resource name. Defaults to ModelFlashLive.
	Model string

	// Voice selects the prebuilt voice for audio responses.
	Voice string

	// SystemInstruction sets the persona for the whole session.
	SystemInstruction string

	// ResponseModalities defaults to ["AUDIO"].
	ResponseModalities []string

	// DisableTranscription turns off input/output transcription. Both
	// directions are transcribed by default.
	DisableTranscription bool
}

// setupMessage is the first client message on the wire.
type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string            `json:"model"`
	GenerationConfig         *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *content          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type content struct {
	Parts []part `json:"parts,omitempty"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// realtimeInputMessage carries one or more media chunks to the server.
type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []mediaChunk `json:"mediaChunks"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// serverMessage mirrors the wire shape of server messages.
type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
	GoAway        *goAway        `json:"goAway,omitempty"`
	Error         *wireError     `json:"error,omitempty"`
}

type serverContent struct {
	ModelTurn           *content       `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

type goAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// ServerMessage is one parsed inbound message. At most one audio
// payload, one output-transcript fragment, and one input-transcript
// fragment are present; any combination may appear in one message.
type ServerMessage struct {
	// Audio is raw little-endian 16-bit PCM, nil when absent.
	Audio []byte
	// AudioRate is the sample rate parsed from the inline data MIME
	// type, 24000 when the server does not specify one.
	AudioRate int

	// Text is inline model text (text-modality responses).
	Text string

	// OutputTranscript is a fragment of the model's speech transcript.
	OutputTranscript string
	// InputTranscript is a fragment of the user's speech transcript.
	InputTranscript string

	// TurnComplete marks the end of the current model turn.
	TurnComplete bool
	// Interrupted reports that the model turn was cut off by new input.
	Interrupted bool

	// GoAway warns that the server will close the stream soon.
	GoAway bool

	// Raw is the original JSON message.
	Raw []byte
}

package gemlive

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultWebSocketURL is the BidiGenerateContent WebSocket endpoint.
	DefaultWebSocketURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// ModelFlashLive is the default live model.
	ModelFlashLive = "models/gemini-2.0-flash-exp"
)

// Client is the Gemini Live API client.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	apiKey           string
	wsURL            string
	handshakeTimeout time.Duration
	httpClient       *http.Client
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a new Gemini Live client.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("gemlive: API key is required")
	}

	cfg := &clientConfig{
		apiKey:           apiKey,
		wsURL:            DefaultWebSocketURL,
		handshakeTimeout: 30 * time.Second,
		httpClient:       http.DefaultClient,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{config: cfg}
}

// WithWebSocketURL overrides the WebSocket endpoint. Used by tests to
// point at a local server.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) {
		c.wsURL = url
	}
}

// WithHandshakeTimeout sets the dial handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.handshakeTimeout = d
	}
}

// Connect opens a live session: it dials the WebSocket endpoint, sends
// the setup message, and waits for the server's setup acknowledgment.
func (c *Client) Connect(ctx context.Context, config *ConnectConfig) (*Session, error) {
	return c.connect(ctx, config)
}

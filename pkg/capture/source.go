package capture

import "image"

// AudioSource is an acquired microphone. ReadBlock blocks until it has
// filled buf with normalized mono samples at the source's native rate,
// or the source is closed.
type AudioSource interface {
	// ReadBlock fills buf completely. It returns an error (io.EOF after
	// Close) when no more audio will arrive.
	ReadBlock(buf []float32) error
	// SampleRate is the native capture rate in Hz.
	SampleRate() int
	// Close releases the device. Must be idempotent.
	Close() error
}

// VideoSource is an acquired camera. GrabFrame returns the most recent
// frame, or nil when none is available yet; a nil frame is not an error.
type VideoSource interface {
	GrabFrame() (image.Image, error)
	// Close releases the device. Must be idempotent.
	Close() error
}

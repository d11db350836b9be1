package pcm

import (
	"fmt"
	"time"
)

// Frame is one decoded unit of mono audio ready for playback scheduling.
type Frame struct {
	// Samples are normalized to [-1, 1].
	Samples []float32
	// Rate is the sample rate in Hz.
	Rate int
}

// DecodeFrame interprets raw little-endian 16-bit PCM bytes as mono
// samples at the given rate. The byte length must be a multiple of 2
// and the rate positive.
func DecodeFrame(data []byte, rate int) (*Frame, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("pcm: invalid sample rate %d", rate)
	}
	samples, err := PCM16ToFloat(data)
	if err != nil {
		return nil, err
	}
	return &Frame{Samples: samples, Rate: rate}, nil
}

// Duration returns the playback duration of the frame.
func (f *Frame) Duration() time.Duration {
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(f.Rate)
}

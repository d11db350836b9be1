package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openinterp/signbridge/pkg/pcm"
)

// Defaults matching the transport's expectations.
const (
	// DefaultBlockSize is the number of native-rate samples read per
	// audio block.
	DefaultBlockSize = 4096
	// DefaultTargetRate is the transport audio rate in Hz.
	DefaultTargetRate = 16000
	// DefaultVideoInterval is the snapshot period (2 per second).
	DefaultVideoInterval = 500 * time.Millisecond
	// DefaultJPEGQuality is the snapshot compression quality.
	DefaultJPEGQuality = 60
)

// ChunkKind tags an outbound chunk.
type ChunkKind int

const (
	ChunkAudio ChunkKind = iota
	ChunkImage
)

// Chunk is one discrete unit of outbound media. Immutable and transient:
// produced, handed to the session, never stored.
type Chunk struct {
	Kind ChunkKind
	Data []byte

	// SampleRate is set for audio chunks.
	SampleRate int
	// MimeType is set for image chunks.
	MimeType string
}

// Config tunes a pipeline. Zero values select the defaults above.
type Config struct {
	BlockSize     int
	TargetRate    int
	VideoInterval time.Duration
	JPEGQuality   int
	Logger        *slog.Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BlockSize == 0 {
		out.BlockSize = DefaultBlockSize
	}
	if out.TargetRate == 0 {
		out.TargetRate = DefaultTargetRate
	}
	if out.VideoInterval == 0 {
		out.VideoInterval = DefaultVideoInterval
	}
	if out.JPEGQuality == 0 {
		out.JPEGQuality = DefaultJPEGQuality
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Pipeline owns acquired devices and emits outbound chunks until closed.
type Pipeline struct {
	cfg    Config
	audio  AudioSource
	video  VideoSource
	logger *slog.Logger

	muted    atomic.Bool
	videoOff atomic.Bool

	chunks chan Chunk
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New starts a pipeline over already-acquired sources. The audio source
// is required; video may be nil (audio-only session). The pipeline takes
// ownership of both and releases them on Close, including when New
// itself fails partway.
func New(audio AudioSource, video VideoSource, cfg Config) (*Pipeline, error) {
	if audio == nil {
		return nil, errors.New("capture: audio source is required")
	}
	c := cfg.withDefaults()

	ds, err := newDownsampler(audio.SampleRate(), c.TargetRate)
	if err != nil {
		audio.Close()
		if video != nil {
			video.Close()
		}
		return nil, err
	}

	p := &Pipeline{
		cfg:    c,
		audio:  audio,
		video:  video,
		logger: c.Logger,
		chunks: make(chan Chunk, 16),
		done:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.audioLoop(ds)
	if video != nil {
		p.wg.Add(1)
		go p.videoLoop()
	}
	go func() {
		p.wg.Wait()
		close(p.chunks)
	}()

	return p, nil
}

// Chunks delivers outbound media in production order. The channel is
// closed after Close once both capture loops have stopped.
func (p *Pipeline) Chunks() <-chan Chunk {
	return p.chunks
}

// SetMuted drops audio blocks while true. Dropped blocks are not
// buffered; unmuting resumes from live input.
func (p *Pipeline) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Muted reports whether audio is currently muted.
func (p *Pipeline) Muted() bool {
	return p.muted.Load()
}

// SetVideoEnabled suspends snapshot ticks while false.
func (p *Pipeline) SetVideoEnabled(enabled bool) {
	p.videoOff.Store(!enabled)
}

// VideoEnabled reports whether snapshots are currently taken.
func (p *Pipeline) VideoEnabled() bool {
	return !p.videoOff.Load()
}

// Close stops both capture loops and releases the devices. Idempotent;
// no chunk is emitted after Close returns the loops stopped.
func (p *Pipeline) Close() error {
	p.once.Do(func() {
		close(p.done)
		p.audio.Close()
		if p.video != nil {
			p.video.Close()
		}
	})
	return nil
}

func (p *Pipeline) audioLoop(ds *downsampler) {
	defer p.wg.Done()

	block := make([]float32, p.cfg.BlockSize)
	for {
		if err := p.audio.ReadBlock(block); err != nil {
			if !errors.Is(err, io.EOF) {
				p.logger.Warn("capture: audio read failed", "error", err)
			}
			return
		}
		if p.muted.Load() {
			continue
		}
		resampled, err := ds.process(block)
		if err != nil {
			p.logger.Warn("capture: dropping audio block", "error", err)
			continue
		}
		if len(resampled) == 0 {
			// The resampler is still priming its filter.
			continue
		}
		chunk := Chunk{
			Kind:       ChunkAudio,
			Data:       pcm.FloatToPCM16(resampled),
			SampleRate: p.cfg.TargetRate,
		}
		select {
		case p.chunks <- chunk:
		case <-p.done:
			return
		}
	}
}

func (p *Pipeline) videoLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.VideoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
		}
		if p.videoOff.Load() {
			continue
		}
		frame, err := p.video.GrabFrame()
		if err != nil {
			p.logger.Warn("capture: frame grab failed", "error", err)
			continue
		}
		if frame == nil {
			// No frame available yet; skip the tick.
			continue
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: p.cfg.JPEGQuality}); err != nil {
			p.logger.Warn("capture: jpeg encode failed", "error", err)
			continue
		}
		chunk := Chunk{
			Kind:     ChunkImage,
			Data:     buf.Bytes(),
			MimeType: "image/jpeg",
		}
		select {
		case p.chunks <- chunk:
		case <-p.done:
			return
		}
	}
}

// String describes a chunk for logs.
func (c Chunk) String() string {
	switch c.Kind {
	case ChunkAudio:
		return fmt.Sprintf("audio[%dB @%dHz]", len(c.Data), c.SampleRate)
	case ChunkImage:
		return fmt.Sprintf("image[%dB %s]", len(c.Data), c.MimeType)
	}
	return "unknown"
}

package capture

import (
	"image"
	"image/color"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

// fakeMic emits a fixed number of blocks, then EOF. When gate is set,
// ReadBlock waits for it before producing the first block.
type fakeMic struct {
	rate   int
	blocks int
	gate   chan struct{}
	read   int
	closed atomic.Bool
}

func (m *fakeMic) ReadBlock(buf []float32) error {
	if m.gate != nil {
		<-m.gate
	}
	if m.closed.Load() || m.read >= m.blocks {
		return io.EOF
	}
	m.read++
	for i := range buf {
		buf[i] = 0.25
	}
	return nil
}

func (m *fakeMic) SampleRate() int { return m.rate }
func (m *fakeMic) Close() error    { m.closed.Store(true); return nil }

// fakeCam returns a solid frame, or nil when starved.
type fakeCam struct {
	starved bool
	grabs   atomic.Int32
	closed  atomic.Int32
}

func (c *fakeCam) GrabFrame() (image.Image, error) {
	c.grabs.Add(1)
	if c.starved {
		return nil, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.White)
	return img, nil
}

func (c *fakeCam) Close() error { c.closed.Add(1); return nil }

func collect(t *testing.T, p *Pipeline, want int, timeout time.Duration) []Chunk {
	t.Helper()
	var got []Chunk
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case c, ok := <-p.Chunks():
			if !ok {
				return got
			}
			got = append(got, c)
		case <-deadline:
			t.Fatalf("timed out with %d/%d chunks", len(got), want)
		}
	}
	return got
}

func TestPipelineAudioChunks(t *testing.T) {
	mic := &fakeMic{rate: 16000, blocks: 3}
	p, err := New(mic, nil, Config{BlockSize: 256})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	got := collect(t, p, 3, time.Second)
	for i, c := range got {
		if c.Kind != ChunkAudio {
			t.Errorf("chunk %d kind=%v", i, c.Kind)
		}
		if c.SampleRate != DefaultTargetRate {
			t.Errorf("chunk %d rate=%d, want %d", i, c.SampleRate, DefaultTargetRate)
		}
		// 256 samples at the transport rate, 2 bytes each.
		if len(c.Data) != 512 {
			t.Errorf("chunk %d len=%d, want 512", i, len(c.Data))
		}
	}
}

func TestPipelineDownsample(t *testing.T) {
	mic := &fakeMic{rate: 48000, blocks: 4}
	p, err := New(mic, nil, Config{BlockSize: 1024})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	var total int
	for c := range p.Chunks() {
		if c.SampleRate != DefaultTargetRate {
			t.Errorf("rate=%d, want %d", c.SampleRate, DefaultTargetRate)
		}
		if len(c.Data)%2 != 0 {
			t.Errorf("odd chunk length %d", len(c.Data))
		}
		total += len(c.Data)
	}
	// 4096 input samples at 48kHz must come out well under the input
	// size and in the neighborhood of a 3:1 reduction.
	if total == 0 || total > 4096*2/2 {
		t.Errorf("downsampled total=%d bytes", total)
	}
}

func TestPipelineMute(t *testing.T) {
	gate := make(chan struct{})
	mic := &fakeMic{rate: 16000, blocks: 50, gate: gate}
	p, err := New(mic, nil, Config{BlockSize: 64})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	// Mute before any block is produced, then let the mic run dry.
	p.SetMuted(true)
	if !p.Muted() {
		t.Fatal("not muted")
	}
	close(gate)

	// All 50 blocks are read while muted; none become chunks and the
	// channel closes after EOF.
	for c := range p.Chunks() {
		t.Errorf("got chunk %v while muted", c)
	}
	if mic.read != 50 {
		t.Errorf("read %d blocks, want 50", mic.read)
	}
}

func TestPipelineVideo(t *testing.T) {
	t.Run("emits jpeg snapshots", func(t *testing.T) {
		cam := &fakeCam{}
		p, err := New(&fakeMic{rate: 16000}, cam, Config{
			BlockSize:     64,
			VideoInterval: 5 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer p.Close()

		got := collect(t, p, 2, time.Second)
		for _, c := range got {
			if c.Kind != ChunkImage {
				t.Fatalf("kind=%v, want image", c.Kind)
			}
			if c.MimeType != "image/jpeg" {
				t.Errorf("mime=%q", c.MimeType)
			}
			// JPEG SOI marker.
			if len(c.Data) < 2 || c.Data[0] != 0xff || c.Data[1] != 0xd8 {
				t.Errorf("not a jpeg: % x", c.Data[:min(4, len(c.Data))])
			}
		}
	})

	t.Run("disabled skips ticks", func(t *testing.T) {
		cam := &fakeCam{}
		p, err := New(&fakeMic{rate: 16000}, cam, Config{
			BlockSize:     64,
			VideoInterval: 5 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer p.Close()

		p.SetVideoEnabled(false)
		time.Sleep(50 * time.Millisecond)
		if n := cam.grabs.Load(); n != 0 {
			t.Errorf("grabbed %d frames while disabled", n)
		}
	})

	t.Run("nil frame skips tick", func(t *testing.T) {
		cam := &fakeCam{starved: true}
		p, err := New(&fakeMic{rate: 16000}, cam, Config{
			BlockSize:     64,
			VideoInterval: 5 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer p.Close()

		time.Sleep(50 * time.Millisecond)
		select {
		case c, ok := <-p.Chunks():
			if ok {
				t.Errorf("unexpected chunk %v", c)
			}
		default:
		}
	})
}

func TestPipelineCloseIdempotent(t *testing.T) {
	mic := &fakeMic{rate: 16000, blocks: 1000}
	cam := &fakeCam{}
	p, err := New(mic, cam, Config{BlockSize: 64, VideoInterval: time.Hour})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if cam.closed.Load() != 1 {
		t.Errorf("camera closed %d times, want 1", cam.closed.Load())
	}
	if !mic.closed.Load() {
		t.Error("mic not closed")
	}

	// The chunk channel drains and closes after teardown.
	for range p.Chunks() {
	}
}

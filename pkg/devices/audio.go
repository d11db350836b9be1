package devices

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/openinterp/signbridge/pkg/pcm"
)

// Mic captures mono audio from the default input device. It implements
// capture.AudioSource.
type Mic struct {
	rate   int
	buf    []float32
	stream *portaudio.Stream

	mu     sync.Mutex
	closed bool
}

// OpenMic opens the default input device at the given rate, reading
// blockSize samples per block. The device stays open until Close.
func OpenMic(rate, blockSize int) (*Mic, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("devices: initialize portaudio: %w", err)
	}
	m := &Mic{
		rate: rate,
		buf:  make([]float32, blockSize),
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(rate), blockSize, m.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("devices: open input device: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("devices: start input device: %w", err)
	}
	m.stream = stream
	return m, nil
}

// ReadBlock fills buf with the next block of samples. len(buf) must
// equal the blockSize the mic was opened with.
func (m *Mic) ReadBlock(buf []float32) error {
	if len(buf) != len(m.buf) {
		return fmt.Errorf("devices: read block of %d samples, device delivers %d", len(buf), len(m.buf))
	}
	if err := m.stream.Read(); err != nil {
		return fmt.Errorf("devices: read input device: %w", err)
	}
	copy(buf, m.buf)
	return nil
}

// SampleRate returns the capture rate in Hz.
func (m *Mic) SampleRate() int { return m.rate }

// Close releases the device. Idempotent.
func (m *Mic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.stream.Close()
	portaudio.Terminate()
	if err != nil {
		return fmt.Errorf("devices: close input device: %w", err)
	}
	return nil
}

// Speaker plays scheduled frames on the default output device. It
// implements playback.Sink: PlayAt queues without blocking, a writer
// goroutine paces the output.
type Speaker struct {
	queue chan queuedFrame

	mu      sync.Mutex
	stream  *portaudio.Stream
	outBuf  []float32
	rate    int
	running bool
	closed  bool
	done    chan struct{}
}

type queuedFrame struct {
	frame *pcm.Frame
	start time.Time
}

// OpenSpeaker prepares the default output device. The stream itself is
// opened lazily on Resume, at the rate of the first frame.
func OpenSpeaker() (*Speaker, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("devices: initialize portaudio: %w", err)
	}
	return &Speaker{
		queue: make(chan queuedFrame, 64),
		done:  make(chan struct{}),
	}, nil
}

// Resume starts the writer goroutine. No-op when already running.
func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("devices: resume closed speaker")
	}
	if s.running {
		return nil
	}
	s.running = true
	go s.writeLoop()
	return nil
}

// PlayAt queues a frame to begin at start. It never blocks; when the
// queue is full the frame is dropped (the scheduler's cursor keeps
// later frames aligned).
func (s *Speaker) PlayAt(frame *pcm.Frame, start time.Time) error {
	select {
	case s.queue <- queuedFrame{frame: frame, start: start}:
		return nil
	case <-s.done:
		return fmt.Errorf("devices: play on closed speaker")
	default:
		return fmt.Errorf("devices: speaker queue full")
	}
}

func (s *Speaker) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case q := <-s.queue:
			if wait := time.Until(q.start); wait > 0 {
				select {
				case <-time.After(wait):
				case <-s.done:
					return
				}
			}
			if err := s.writeFrame(q.frame); err != nil {
				// Device trouble affects this frame only.
				continue
			}
		}
	}
}

// writeFrame pushes one frame to the device, opening the stream on the
// first call. The blocking writes pace playback at the device rate.
func (s *Speaker) writeFrame(frame *pcm.Frame) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("devices: write on closed speaker")
	}
	if s.stream == nil || s.rate != frame.Rate {
		if s.stream != nil {
			s.stream.Close()
			s.stream = nil
		}
		const chunk = 1024
		buf := make([]float32, chunk)
		stream, err := portaudio.OpenDefaultStream(0, 1, float64(frame.Rate), chunk, buf)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("devices: open output device: %w", err)
		}
		if err := stream.Start(); err != nil {
			stream.Close()
			s.mu.Unlock()
			return fmt.Errorf("devices: start output device: %w", err)
		}
		s.stream = stream
		s.rate = frame.Rate
		s.outBuf = buf
	}
	stream := s.stream
	out := s.outBuf
	s.mu.Unlock()

	samples := frame.Samples
	for len(samples) > 0 {
		n := copy(out, samples)
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		samples = samples[n:]
		if err := stream.Write(); err != nil {
			return fmt.Errorf("devices: write output device: %w", err)
		}
	}
	return nil
}

// Close stops playback and releases the device. Idempotent.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	portaudio.Terminate()
	return nil
}

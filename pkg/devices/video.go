package devices

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "image/jpeg"
	_ "image/png"
)

// Camera frame geometry requested from capture devices.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// TestPattern is a synthetic camera producing a slowly shifting
// gradient. Useful for demos and soak tests on hosts without a camera.
type TestPattern struct {
	mu    sync.Mutex
	tick  uint8
	close sync.Once
	done  bool
}

// NewTestPattern creates a test-pattern camera.
func NewTestPattern() *TestPattern {
	return &TestPattern{}
}

// GrabFrame returns the next pattern frame.
func (p *TestPattern) GrabFrame() (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil, fmt.Errorf("devices: grab from closed camera")
	}
	p.tick += 3
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	for y := 0; y < FrameHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x/4) + p.tick,
				G: uint8(y / 2),
				B: p.tick,
				A: 0xff,
			})
		}
	}
	return img, nil
}

// Close implements capture.VideoSource. Idempotent.
func (p *TestPattern) Close() error {
	p.close.Do(func() {
		p.mu.Lock()
		p.done = true
		p.mu.Unlock()
	})
	return nil
}

// ImageDir is a camera stand-in that cycles through the image files of
// a directory in name order.
type ImageDir struct {
	paths []string

	mu     sync.Mutex
	next   int
	closed bool
}

// OpenImageDir lists the .jpg/.jpeg/.png files in dir. The directory
// must contain at least one.
func OpenImageDir(dir string) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("devices: open image dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("devices: no images in %s", dir)
	}
	sort.Strings(paths)
	return &ImageDir{paths: paths}, nil
}

// GrabFrame decodes the next image in the cycle.
func (d *ImageDir) GrabFrame() (image.Image, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, fmt.Errorf("devices: grab from closed camera")
	}
	path := d.paths[d.next]
	d.next = (d.next + 1) % len(d.paths)
	d.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("devices: open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("devices: decode %s: %w", path, err)
	}
	return img, nil
}

// Close implements capture.VideoSource. Idempotent.
func (d *ImageDir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

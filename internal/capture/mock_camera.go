package capture

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockCamera plays back in-memory frames for testing. Frame times advance by
// one frame interval per read, starting at the time Open was called.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	fps     int
	clock   time.Time
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    30,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	c.clock = time.Now()
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, time.Time{}, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, time.Time{}, ErrEndOfStream
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, time.Time{}, ErrEndOfStream
		}
		c.index = 0
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++
	c.clock = c.clock.Add(time.Second / time.Duration(c.fps))

	return &frame, c.clock, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}

// SyntheticFrames draws n frames of a bright block rising and falling on a
// dark court, roughly the silhouette motion of a jump shot. Callers close
// the returned Mats.
func SyntheticFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	w, h := width/8, height/3
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		m.SetTo(gocv.NewScalar(20, 20, 20, 0))

		// Triangle wave between the floor and a third of the frame height.
		step := i % 20
		if step > 10 {
			step = 20 - step
		}
		top := height - h - step*height/30
		x := width/2 - w/2
		gocv.Rectangle(&m, image.Rect(x, top, x+w, top+h), color.RGBA{R: 230, G: 230, B: 230, A: 255}, -1)

		frames[i] = &m
	}
	return frames
}

// Package capture reads video frames from a webcam or a recorded training clip.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Default capture settings. Shooting form needs the whole body in frame, so
// the camera runs at 720p.
const (
	DefaultFPS    = 5
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	// ErrCameraNotOpen is returned when trying to read from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned once a recorded clip has no frames left.
	ErrEndOfStream = errors.New("end of video stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame and its capture time. The caller owns
	// the Mat and must close it.
	ReadFrame() (*gocv.Mat, time.Time, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// source is either a webcam device id or a video file path.
type source struct {
	device int
	file   string
}

func (s source) String() string {
	if s.file != "" {
		return s.file
	}
	return fmt.Sprintf("device %d", s.device)
}

// videoCamera manages capture from a webcam or a file using GoCV.
type videoCamera struct {
	src     source
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
	started time.Time
}

// NewCamera creates a Camera for the webcam with the given device ID.
// The default FPS is 5 until the pipeline sees motion.
func NewCamera(deviceID int) Camera {
	return &videoCamera{
		src: source{device: deviceID},
		fps: DefaultFPS,
	}
}

// NewVideoFile creates a Camera that plays back a recorded clip. Frame times
// follow the clip position rather than the wall clock, so a clip analyzed
// faster than real time still yields correct durations.
func NewVideoFile(path string) Camera {
	return &videoCamera{
		src: source{file: path},
		fps: DefaultFPS,
	}
}

// Open opens the source for capturing frames.
func (c *videoCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.src.file != "" {
		capture, err = gocv.VideoCaptureFile(c.src.file)
	} else {
		capture, err = gocv.OpenVideoCapture(c.src.device)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", c.src, err)
	}

	if c.src.file == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true
	c.started = time.Now()

	return nil
}

// Close closes the source and releases resources.
func (c *videoCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame.
func (c *videoCamera) ReadFrame() (*gocv.Mat, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, time.Time{}, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		if c.src.file != "" {
			return nil, time.Time{}, ErrEndOfStream
		}
		return nil, time.Time{}, fmt.Errorf("failed to read frame from %s", c.src)
	}

	if mat.Empty() {
		mat.Close()
		return nil, time.Time{}, fmt.Errorf("captured frame from %s is empty", c.src)
	}

	at := time.Now()
	if c.src.file != "" {
		pos := c.capture.Get(gocv.VideoCapturePosMsec)
		at = c.started.Add(time.Duration(pos * float64(time.Millisecond)))
	}

	return &mat, at, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *videoCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && c.src.file == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *videoCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the source is currently open.
func (c *videoCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

package camera

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// FFmpegCamera grabs single frames from a webcam by shelling out to ffmpeg.
type FFmpegCamera struct {
	bin     string
	device  string
	timeout time.Duration
	log     *logger.Logger
}

var _ domain.Camera = (*FFmpegCamera)(nil)

// NewFFmpegCamera uses device, or the platform default when empty.
func NewFFmpegCamera(device string, log *logger.Logger) *FFmpegCamera {
	if device == "" {
		device = defaultDevice()
	}
	return &FFmpegCamera{bin: "ffmpeg", device: device, timeout: 10 * time.Second, log: log}
}

func (c *FFmpegCamera) Open(ctx context.Context) (domain.CameraStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(c.bin); err != nil {
		return nil, fmt.Errorf("camera: ffmpeg not found in PATH: %w", err)
	}
	c.log.Debug("camera: using %s device %s", inputFormat(), c.device)
	return &ffmpegStream{cam: c}, nil
}

// Args returns the ffmpeg arguments for a single JPEG frame on stdout.
func (c *FFmpegCamera) Args() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", inputFormat(),
		"-i", c.device,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "3",
		"-",
	}
}

type ffmpegStream struct {
	cam *FFmpegCamera

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

func (s *ffmpegStream) Capture(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cam.timeout)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errStreamClosed
	}
	s.cancel = cancel
	s.mu.Unlock()

	cmd := exec.CommandContext(ctx, s.cam.bin, s.cam.Args()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("camera: capture: %w", ctx.Err())
		}
		return nil, fmt.Errorf("camera: ffmpeg failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	// Normalize quality regardless of what the device produced.
	return toJPEG(stdout.Bytes())
}

// Close aborts an in-progress capture.
func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func inputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "v4l2"
	}
}

func defaultDevice() string {
	switch runtime.GOOS {
	case "darwin":
		return "0"
	case "windows":
		return "video=Integrated Camera"
	default:
		return "/dev/video0"
	}
}

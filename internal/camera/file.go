package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

var errStreamClosed = errors.New("camera: stream closed")

// FileCamera "captures" an image file from disk. Each capture re-reads the
// file, so replacing it between shots works like a retake.
type FileCamera struct {
	path string
	log  *logger.Logger
}

var _ domain.Camera = (*FileCamera)(nil)

func NewFileCamera(path string, log *logger.Logger) *FileCamera {
	return &FileCamera{path: path, log: log}
}

func (c *FileCamera) Open(ctx context.Context) (domain.CameraStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(c.path); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	c.log.Debug("camera: opened file source %s", c.path)
	return &fileStream{path: c.path}, nil
}

type fileStream struct {
	path string

	mu     sync.Mutex
	closed bool
}

func (s *fileStream) Capture(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	return toJPEG(raw)
}

func (s *fileStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Package camera provides the capture devices used for dish photos: a
// file-backed camera for headless runs and an ffmpeg-backed webcam.
package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG for file sources
	"strings"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// JPEGQuality is the encoder quality used for every captured still.
const JPEGQuality = 80

// Parse builds a camera from a source string: "file:<path>" or
// "ffmpeg:<device>". An empty device uses the platform default.
func Parse(source string, log *logger.Logger) (domain.Camera, error) {
	kind, arg, _ := strings.Cut(source, ":")
	switch kind {
	case "file":
		if arg == "" {
			return nil, fmt.Errorf("camera %q: missing file path", source)
		}
		return NewFileCamera(arg, log), nil
	case "ffmpeg":
		return NewFFmpegCamera(arg, log), nil
	default:
		return nil, fmt.Errorf("camera %q: unknown source (want file:<path> or ffmpeg:<device>)", source)
	}
}

// toJPEG re-encodes any decodable image as JPEG at JPEGQuality.
func toJPEG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

package camera

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/logger"
)

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dish.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)

	tests := []struct {
		source  string
		wantErr bool
	}{
		{"file:/tmp/dish.jpg", false},
		{"ffmpeg:/dev/video2", false},
		{"ffmpeg:", false},
		{"file:", true},
		{"webcam", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.source, log)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.source, err, tt.wantErr)
		}
	}
}

func TestFileCameraCapturesJPEG(t *testing.T) {
	path := writePNG(t)
	cam := NewFileCamera(path, logger.New(logger.LevelOff, nil))

	stream, err := cam.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frame, err := stream.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(frame)); err != nil {
		t.Errorf("frame is not a JPEG: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Capture(context.Background()); err == nil {
		t.Error("capture after Close should fail")
	}
}

func TestFileCameraMissingFile(t *testing.T) {
	cam := NewFileCamera(filepath.Join(t.TempDir(), "nope.jpg"), logger.New(logger.LevelOff, nil))
	if _, err := cam.Open(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFFmpegArgs(t *testing.T) {
	cam := NewFFmpegCamera("/dev/video3", logger.New(logger.LevelOff, nil))
	args := cam.Args()

	var hasDevice, hasOneFrame bool
	for i, a := range args {
		if a == "-i" && i+1 < len(args) && args[i+1] == "/dev/video3" {
			hasDevice = true
		}
		if a == "-frames:v" && i+1 < len(args) && args[i+1] == "1" {
			hasOneFrame = true
		}
	}
	if !hasDevice || !hasOneFrame {
		t.Errorf("unexpected args: %v", args)
	}
	if args[len(args)-1] != "-" {
		t.Error("output should go to stdout")
	}
}

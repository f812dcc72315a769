package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

type fakeStream struct {
	frame  []byte
	err    error
	closed int
}

func (s *fakeStream) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.frame, s.err
}

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}

type fakeCamera struct {
	stream *fakeStream
	err    error
	opens  int
}

func (c *fakeCamera) Open(context.Context) (domain.CameraStream, error) {
	c.opens++
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

type fakeGrader struct {
	res   *domain.GradingResult
	err   error
	calls int
	got   []byte
}

func (g *fakeGrader) GradeDish(_ context.Context, image []byte, _ string) (*domain.GradingResult, error) {
	g.calls++
	g.got = image
	return g.res, g.err
}

func TestGrade(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xd9}
	boom := errors.New("boom")

	tests := []struct {
		name       string
		camera     *fakeCamera
		grader     *fakeGrader
		wantErr    error
		wantScore  float64
		wantGrades int
	}{
		{
			name:       "success",
			camera:     &fakeCamera{stream: &fakeStream{frame: jpeg}},
			grader:     &fakeGrader{res: &domain.GradingResult{Score: 88, Feedback: "Good wok hei"}},
			wantScore:  88,
			wantGrades: 1,
		},
		{
			name:    "camera unavailable",
			camera:  &fakeCamera{err: boom},
			grader:  &fakeGrader{},
			wantErr: boom,
		},
		{
			name:    "capture fails",
			camera:  &fakeCamera{stream: &fakeStream{err: boom}},
			grader:  &fakeGrader{},
			wantErr: boom,
		},
		{
			name:       "grader fails",
			camera:     &fakeCamera{stream: &fakeStream{frame: jpeg}},
			grader:     &fakeGrader{err: boom},
			wantErr:    boom,
			wantGrades: 1,
		},
		{
			name:       "score out of range",
			camera:     &fakeCamera{stream: &fakeStream{frame: jpeg}},
			grader:     &fakeGrader{res: &domain.GradingResult{Score: 140}},
			wantErr:    domain.ErrInvalidScore,
			wantGrades: 1,
		},
		{
			name:       "empty answer",
			camera:     &fakeCamera{stream: &fakeStream{frame: jpeg}},
			grader:     &fakeGrader{},
			wantErr:    domain.ErrNoContent,
			wantGrades: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.camera, tt.grader, logger.New(logger.LevelOff, nil))
			res, err := w.Grade(context.Background(), "Mapo Tofu")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if res != nil {
					t.Error("partial result returned on failure")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Score != tt.wantScore {
					t.Errorf("score = %v, want %v", res.Score, tt.wantScore)
				}
			}

			if tt.grader.calls != tt.wantGrades {
				t.Errorf("grader calls = %d, want %d", tt.grader.calls, tt.wantGrades)
			}
			if s := tt.camera.stream; s != nil && s.closed != 1 {
				t.Errorf("stream closed %d times, want 1", s.closed)
			}
		})
	}
}

func TestCaptureReleasesOnCancel(t *testing.T) {
	stream := &fakeStream{frame: []byte{1}}
	w := New(&fakeCamera{stream: stream}, &fakeGrader{}, logger.New(logger.LevelOff, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.Capture(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if stream.closed != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closed)
	}
}

func TestGradeImageSkipsCamera(t *testing.T) {
	cam := &fakeCamera{}
	grader := &fakeGrader{res: &domain.GradingResult{Score: 0}}
	w := New(cam, grader, logger.New(logger.LevelOff, nil))

	if _, err := w.GradeImage(context.Background(), []byte("jpeg"), "Fried Rice"); err != nil {
		t.Fatal(err)
	}
	if cam.opens != 0 {
		t.Error("camera opened")
	}
	if string(grader.got) != "jpeg" {
		t.Errorf("grader got %q", grader.got)
	}

	if _, err := w.GradeImage(context.Background(), nil, "Fried Rice"); err == nil {
		t.Error("expected error for empty photo")
	}
}

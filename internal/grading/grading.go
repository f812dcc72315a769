// Package grading photographs the finished dish and has it scored.
package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

var errEmptyPhoto = errors.New("grading: camera returned an empty frame")

// Workflow runs one grading attempt: capture a still, then one round trip
// to the grader. There is no retry.
type Workflow struct {
	camera domain.Camera
	grader domain.DishGrader
	log    *logger.Logger
}

// New creates a grading workflow.
func New(camera domain.Camera, grader domain.DishGrader, log *logger.Logger) *Workflow {
	return &Workflow{camera: camera, grader: grader, log: log}
}

// Capture opens the camera, grabs one JPEG frame and releases the camera
// on every path.
func (w *Workflow) Capture(ctx context.Context) (photo []byte, err error) {
	stream, err := w.camera.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening camera: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			w.log.Warn("grading: closing camera: %v", cerr)
		}
	}()

	photo, err = stream.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing photo: %w", err)
	}
	if len(photo) == 0 {
		return nil, errEmptyPhoto
	}

	w.log.Debug("grading: captured %s photo", humanize.Bytes(uint64(len(photo))))
	return photo, nil
}

// Grade captures a photo and grades it.
func (w *Workflow) Grade(ctx context.Context, recipeName string) (*domain.GradingResult, error) {
	photo, err := w.Capture(ctx)
	if err != nil {
		return nil, err
	}
	return w.GradeImage(ctx, photo, recipeName)
}

// GradeImage grades an already captured photo. A score outside [0,100]
// is rejected.
func (w *Workflow) GradeImage(ctx context.Context, photo []byte, recipeName string) (*domain.GradingResult, error) {
	if len(photo) == 0 {
		return nil, errEmptyPhoto
	}

	start := time.Now()
	res, err := w.grader.GradeDish(ctx, photo, recipeName)
	if err != nil {
		return nil, fmt.Errorf("grading %s: %w", recipeName, err)
	}
	if res == nil {
		return nil, fmt.Errorf("grading %s: %w", recipeName, domain.ErrNoContent)
	}
	if !res.Valid() {
		return nil, fmt.Errorf("grading %s: score %v: %w", recipeName, res.Score, domain.ErrInvalidScore)
	}

	w.log.Info("graded %s: %.0f/100 in %s", recipeName, res.Score, time.Since(start).Round(time.Millisecond))
	return res, nil
}

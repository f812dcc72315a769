// Package visuals fetches the hero, ingredient and step images for a
// session through a memoizing cache. A failed fetch yields a placeholder.
package visuals

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/media"
)

// ImageCache is the visual cache type. Keys are prompts.
type ImageCache = media.Cache[media.VisualPrompt, string]

var errNotDataURI = errors.New("visuals: not a base64 data URI")

// Image is a resolved visual. An empty Ref means the fetch failed and a
// placeholder should be shown.
type Image struct {
	Prompt string
	Aspect domain.AspectRatio
	Ref    string
}

// Placeholder reports whether the image could not be fetched.
func (i Image) Placeholder() bool { return i.Ref == "" }

// Bytes decodes a data URI reference into raw image bytes and its MIME type.
func (i Image) Bytes() ([]byte, string, error) {
	rest, ok := strings.CutPrefix(i.Ref, "data:")
	if !ok {
		return nil, "", errNotDataURI
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errNotDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", errNotDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("visuals: decoding data URI: %w", err)
	}
	return raw, mime, nil
}

// Option configures the Service.
type Option func(*Service)

// WithCache injects the visual cache.
func WithCache(c *ImageCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithExportDir writes every fetched image to dir so it can be opened
// outside the terminal.
func WithExportDir(dir string) Option {
	return func(s *Service) { s.exportDir = dir }
}

// Service resolves session visuals.
type Service struct {
	gen       domain.ImageGenerator
	cache     *ImageCache
	log       *logger.Logger
	exportDir string

	exportMu sync.Mutex
	exported map[string]string
}

// New creates a visual service backed by gen.
func New(gen domain.ImageGenerator, log *logger.Logger, opts ...Option) *Service {
	s := &Service{gen: gen, log: log, exported: make(map[string]string)}
	for _, fn := range opts {
		fn(s)
	}
	if s.cache == nil {
		s.cache = media.New[media.VisualPrompt, string]("visual", log)
	}
	return s
}

// ── Prompts ──────────────────────────────────────────────────────

func HeroPrompt(name string) string {
	return fmt.Sprintf("Professional food photography of %s, authentic Chinese cuisine, appetizing, high resolution, soft lighting", name)
}

// IngredientPrompt uses the ingredient's own visual description, or a
// studio shot of the item when it has none.
func IngredientPrompt(ing domain.Ingredient) string {
	if strings.TrimSpace(ing.VisualPrompt) != "" {
		return ing.VisualPrompt
	}
	return fmt.Sprintf("Fresh %s ingredient, isolated white background, studio lighting", ing.Item)
}

// ── Fetching ─────────────────────────────────────────────────────

// Hero resolves the widescreen dish image shown on the intro.
func (s *Service) Hero(ctx context.Context, name string) Image {
	return s.Fetch(ctx, HeroPrompt(name), domain.AspectWidescreen)
}

func (s *Service) Ingredient(ctx context.Context, ing domain.Ingredient) Image {
	return s.Fetch(ctx, IngredientPrompt(ing), domain.AspectSquare)
}

func (s *Service) Step(ctx context.Context, step domain.CookingStep) Image {
	return s.Fetch(ctx, step.VisualPrompt, domain.AspectSquare)
}

// Fetch resolves prompt through the cache. Errors are logged and turned
// into a placeholder.
func (s *Service) Fetch(ctx context.Context, prompt string, aspect domain.AspectRatio) Image {
	img := Image{Prompt: prompt, Aspect: aspect}
	if strings.TrimSpace(prompt) == "" {
		return img
	}

	ref, err := s.cache.GetOrFetch(ctx, media.VisualPrompt(prompt), func(ctx context.Context, p media.VisualPrompt) (string, error) {
		return s.gen.GenerateImage(ctx, string(p), aspect)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoContent) {
			s.log.Debug("visuals: no image for %q", prompt)
		} else {
			s.log.Warn("visuals: image fetch failed: %v", err)
		}
		return img
	}

	img.Ref = ref
	s.export(img)
	return img
}

// Path returns where the image for prompt was exported, if anywhere.
func (s *Service) Path(prompt string) (string, bool) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	p, ok := s.exported[prompt]
	return p, ok
}

func (s *Service) export(img Image) {
	if s.exportDir == "" {
		return
	}

	s.exportMu.Lock()
	_, done := s.exported[img.Prompt]
	s.exportMu.Unlock()
	if done {
		return
	}

	raw, mime, err := img.Bytes()
	if err != nil {
		s.log.Debug("visuals: not exporting %q: %v", img.Prompt, err)
		return
	}

	sum := sha256.Sum256([]byte(img.Prompt))
	name := hex.EncodeToString(sum[:8]) + extFor(mime)
	path := filepath.Join(s.exportDir, name)

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.log.Warn("visuals: export dir: %v", err)
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		s.log.Warn("visuals: export: %v", err)
		return
	}

	s.exportMu.Lock()
	s.exported[img.Prompt] = path
	s.exportMu.Unlock()
	s.log.Debug("visuals: exported %s (%s)", path, humanize.Bytes(uint64(len(raw))))
}

func extFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

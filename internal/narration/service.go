// Package narration speaks session cues: text is resolved to audio through
// a memoizing cache and played on the shared output, one narration at a
// time.
package narration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/media"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
)

// Player plays a base64 PCM payload. The channel yields one value when
// playback ends. *audio.Output satisfies it.
type Player interface {
	DecodeAndPlay(ctx context.Context, payload string) <-chan error
}

// AudioCache is the narration cache type.
type AudioCache = media.Cache[media.NarrationText, string]

// Option configures the Service.
type Option func(*Service)

// WithGate shares a gate across services. Without it each Service gets
// its own.
func WithGate(g *Gate) Option {
	return func(s *Service) { s.gate = g }
}

// WithCache injects the narration cache.
func WithCache(c *AudioCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithFetchTimeout bounds a single speech generation call. Zero means no
// bound beyond the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.fetchTimeout = d }
}

// Service is the narration pipeline: cache → speech backend → output.
// Requests that arrive while a narration is in flight are dropped.
type Service struct {
	tts domain.SpeechGenerator
	out Player
	log *logger.Logger

	gate         *Gate
	cache        *AudioCache
	fetchTimeout time.Duration

	wg sync.WaitGroup
}

var _ domain.Narrator = (*Service)(nil)

// New creates a narration service.
func New(tts domain.SpeechGenerator, out Player, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		tts: tts,
		out: out,
		log: log,
	}
	for _, fn := range opts {
		fn(s)
	}
	if s.gate == nil {
		s.gate = NewGate()
	}
	if s.cache == nil {
		s.cache = media.New[media.NarrationText, string]("narration", log)
	}
	return s
}

// Speak starts narrating text and returns immediately. It returns false
// when the request was dropped because another narration is active (or
// the text is empty). Failures are logged, never returned.
func (s *Service) Speak(ctx context.Context, text string) bool {
	if text == "" {
		return false
	}
	if !s.gate.TryAcquire() {
		metrics.RecordNarration("dropped")
		s.log.Debug("narration: busy, dropped: %s", truncate(text, 60))
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.gate.Release()
		s.narrate(ctx, text)
	}()
	return true
}

// Prefetch warms the cache for texts that will be spoken soon. It never
// touches the gate and does not block.
func (s *Service) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		if _, ok := s.cache.Peek(media.NarrationText(text)); ok {
			continue
		}
		s.wg.Add(1)
		go func(text string) {
			defer s.wg.Done()
			if _, err := s.cache.GetOrFetch(ctx, media.NarrationText(text), s.generate); err != nil {
				s.log.Debug("narration: prefetch failed: %v", err)
			}
		}(text)
	}
}

// Busy reports whether a narration is in flight.
func (s *Service) Busy() bool { return s.gate.Busy() }

// Wait blocks until every narration and prefetch started so far is done.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) narrate(ctx context.Context, text string) {
	start := time.Now()

	payload, err := s.cache.GetOrFetch(ctx, media.NarrationText(text), s.generate)
	switch {
	case errors.Is(err, domain.ErrNoContent):
		metrics.RecordNarration("absent")
		s.log.Debug("narration: no audio for: %s", truncate(text, 60))
		return
	case err != nil:
		metrics.RecordNarration("failed")
		s.log.Warn("narration: speech generation failed: %v", err)
		return
	}

	if err := <-s.out.DecodeAndPlay(ctx, payload); err != nil {
		metrics.RecordNarration("failed")
		s.log.Warn("narration: playback failed: %v", err)
		return
	}

	metrics.RecordNarration("played")
	s.log.Debug("narration: done in %s: %s", time.Since(start).Round(time.Millisecond), truncate(text, 60))
}

func (s *Service) generate(ctx context.Context, text media.NarrationText) (string, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	return s.tts.GenerateSpeech(ctx, string(text))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

package narration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/media"
)

type fakeTTS struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *fakeTTS) GenerateSpeech(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[text]++
	if f.err != nil {
		return "", f.err
	}
	return "pcm:" + text, nil
}

func (f *fakeTTS) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// fakePlayer completes immediately unless hold is non-nil, in which case
// it waits for hold to close.
type fakePlayer struct {
	mu       sync.Mutex
	payloads []string
	hold     chan struct{}
	started  chan struct{}
}

func (p *fakePlayer) DecodeAndPlay(_ context.Context, payload string) <-chan error {
	p.mu.Lock()
	p.payloads = append(p.payloads, payload)
	hold, started := p.hold, p.started
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		if started != nil {
			close(started)
		}
		if hold != nil {
			<-hold
		}
		done <- nil
		close(done)
	}()
	return done
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func quiet() *logger.Logger { return logger.New(logger.LevelOff, nil) }

func TestSpeakPlaysAndCaches(t *testing.T) {
	tts := &fakeTTS{}
	player := &fakePlayer{}
	svc := New(tts, player, quiet())
	ctx := context.Background()

	if !svc.Speak(ctx, "Step 1. Rinse the rice.") {
		t.Fatal("first Speak dropped")
	}
	svc.Wait()
	if !svc.Speak(ctx, "Step 1. Rinse the rice.") {
		t.Fatal("second Speak dropped")
	}
	svc.Wait()

	if tts.total() != 1 {
		t.Errorf("tts calls = %d, want 1", tts.total())
	}
	if player.count() != 2 {
		t.Errorf("plays = %d, want 2", player.count())
	}
	if player.payloads[0] != "pcm:Step 1. Rinse the rice." {
		t.Errorf("payload = %q", player.payloads[0])
	}
	if svc.Busy() {
		t.Error("gate still held after Wait")
	}
}

func TestSpeakWhileBusyIsDropped(t *testing.T) {
	tts := &fakeTTS{}
	player := &fakePlayer{hold: make(chan struct{}), started: make(chan struct{})}
	svc := New(tts, player, quiet())
	ctx := context.Background()

	if !svc.Speak(ctx, "first") {
		t.Fatal("first Speak dropped")
	}
	<-player.started

	ttsBefore, playsBefore := tts.total(), player.count()
	if svc.Speak(ctx, "second") {
		t.Fatal("Speak accepted while busy")
	}
	if tts.total() != ttsBefore || player.count() != playsBefore {
		t.Error("dropped Speak touched the cache or device")
	}

	close(player.hold)
	svc.Wait()

	if svc.Busy() {
		t.Error("gate still held")
	}
	if tts.calls["second"] != 0 {
		t.Error("dropped text was generated later")
	}
}

func TestSharedGateAcrossServices(t *testing.T) {
	gate := NewGate()
	player := &fakePlayer{hold: make(chan struct{}), started: make(chan struct{})}
	a := New(&fakeTTS{}, player, quiet(), WithGate(gate))
	b := New(&fakeTTS{}, &fakePlayer{}, quiet(), WithGate(gate))
	ctx := context.Background()

	if !a.Speak(ctx, "from a") {
		t.Fatal("a dropped")
	}
	<-player.started
	if b.Speak(ctx, "from b") {
		t.Error("b accepted while a holds the gate")
	}
	close(player.hold)
	a.Wait()

	if !b.Speak(ctx, "from b") {
		t.Error("b dropped after gate released")
	}
	b.Wait()
}

func TestSpeakDegradesSilently(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"absent audio", domain.ErrNoContent},
		{"backend failure", errors.New("quota exceeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tts := &fakeTTS{err: tt.err}
			player := &fakePlayer{}
			cache := media.New[media.NarrationText, string]("narration", quiet())
			svc := New(tts, player, quiet(), WithCache(cache))

			if !svc.Speak(context.Background(), "hello") {
				t.Fatal("Speak dropped")
			}
			svc.Wait()

			if svc.Busy() {
				t.Error("gate not released")
			}
			if player.count() != 0 {
				t.Error("something played")
			}
			if cache.Len() != 0 {
				t.Error("failure was cached")
			}
		})
	}
}

func TestSpeakEmptyText(t *testing.T) {
	tts := &fakeTTS{}
	svc := New(tts, &fakePlayer{}, quiet())
	if svc.Speak(context.Background(), "") {
		t.Error("empty text accepted")
	}
	if tts.total() != 0 {
		t.Error("empty text generated")
	}
}

func TestPrefetchBypassesGate(t *testing.T) {
	tts := &fakeTTS{}
	player := &fakePlayer{hold: make(chan struct{}), started: make(chan struct{})}
	cache := media.New[media.NarrationText, string]("narration", quiet())
	svc := New(tts, player, quiet(), WithCache(cache))
	ctx := context.Background()

	svc.Speak(ctx, "Step 1. Boil water.")
	<-player.started

	svc.Prefetch(ctx, "Step 2. Add noodles.", "")
	close(player.hold)
	svc.Wait()

	if _, ok := cache.Peek("Step 2. Add noodles."); !ok {
		t.Error("prefetched text not cached")
	}
	if player.count() != 1 {
		t.Errorf("plays = %d, want 1", player.count())
	}

	// Already cached: no second generation.
	svc.Prefetch(ctx, "Step 2. Add noodles.")
	svc.Wait()
	if tts.calls["Step 2. Add noodles."] != 1 {
		t.Errorf("prefetch regenerated cached text")
	}
}

// stalledTTS never answers on its own; it only returns once ctx ends.
type stalledTTS struct{}

func (stalledTTS) GenerateSpeech(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestFetchTimeoutBoundsStalledBackend(t *testing.T) {
	player := &fakePlayer{}
	svc := New(stalledTTS{}, player, quiet(), WithFetchTimeout(20*time.Millisecond))

	if !svc.Speak(context.Background(), "Step 3. Simmer.") {
		t.Fatal("Speak dropped")
	}

	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("narration still waiting on a stalled backend")
	}

	if svc.Busy() {
		t.Error("gate not released after timeout")
	}
	if player.count() != 0 {
		t.Error("something played")
	}
}

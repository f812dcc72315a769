// Package device holds the cgo playback backends behind audio.Device.
package device

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/celestialwok/internal/audio"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Oto plays audio through an oto context. oto allows a single
// context per process, so only one Oto may exist.
type Oto struct {
	ctx *oto.Context
	log *logger.Logger

	mu        sync.Mutex
	active    *oto.Player
	suspended bool
}

var _ audio.Device = (*Oto)(nil)

// NewOto initializes the system audio context.
func NewOto(log *logger.Logger) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.ChannelCount,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	return &Oto{ctx: ctx, log: log}, nil
}

// Play blocks until pcm has been played or playback is interrupted.
func (d *Oto) Play(ctx context.Context, pcm []byte) error {
	player := d.ctx.NewPlayer(bytes.NewReader(pcm))

	d.mu.Lock()
	d.active = player
	d.mu.Unlock()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var err error
wait:
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			err = ctx.Err()
			break wait
		case <-ticker.C:
		}
	}

	d.mu.Lock()
	d.active = nil
	d.mu.Unlock()

	if cerr := player.Close(); err == nil {
		err = cerr
	}
	return err
}

// Stop interrupts the active player. Safe when idle.
func (d *Oto) Stop() {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()

	if active != nil {
		active.Pause()
		d.log.Debug("oto device: interrupted")
	}
}

func (d *Oto) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.suspended {
		return nil
	}
	if err := d.ctx.Suspend(); err != nil {
		return err
	}
	d.suspended = true
	return nil
}

func (d *Oto) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.suspended {
		return nil
	}
	if err := d.ctx.Resume(); err != nil {
		return err
	}
	d.suspended = false
	return nil
}

func (d *Oto) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

// Close stops playback and suspends the context. oto contexts cannot be
// destroyed, so this is as far as the release goes.
func (d *Oto) Close() error {
	d.Stop()
	return d.Suspend()
}

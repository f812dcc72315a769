package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/hammamikhairi/celestialwok/internal/audio"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Malgo plays audio through miniaudio. PCM is queued and drained by
// the device data callback.
type Malgo struct {
	actx   *malgo.AllocatedContext
	device *malgo.Device
	log    *logger.Logger

	mu        sync.Mutex
	pending   []byte
	drained   chan struct{} // closed when pending empties; nil when idle
	suspended bool
}

var _ audio.Device = (*Malgo)(nil)

// NewMalgo initializes a miniaudio context and a started playback
// device.
func NewMalgo(log *logger.Logger) (*Malgo, error) {
	actx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	d := &Malgo{actx: actx, log: log}

	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * audio.ChannelCount

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.SampleRate = audio.SampleRate
	cfg.Playback.Format = format
	cfg.Playback.Channels = audio.ChannelCount
	cfg.Alsa.NoMMap = 1
	cfg.PeriodSizeInFrames = audio.SampleRate / 10

	d.device, err = malgo.InitDevice(actx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.fill(bytesPerFrame),
	})
	if err != nil {
		d.freeContext()
		return nil, fmt.Errorf("malgo playback device: %w", err)
	}
	if err := d.device.Start(); err != nil {
		d.device.Uninit()
		d.freeContext()
		return nil, fmt.Errorf("starting playback device: %w", err)
	}

	return d, nil
}

// Play queues pcm and waits for the callback to drain it.
func (d *Malgo) Play(ctx context.Context, pcm []byte) error {
	d.mu.Lock()
	if d.device == nil {
		d.mu.Unlock()
		return ErrOutputClosed
	}
	d.pending = append(d.pending[:0], pcm...)
	drained := make(chan struct{})
	d.drained = drained
	d.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		d.Stop()
		return ctx.Err()
	}
}

// Stop drops queued audio and releases a waiting Play.
func (d *Malgo) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	d.signalDrained()
}

func (d *Malgo) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil || d.suspended {
		return nil
	}
	if err := d.device.Stop(); err != nil {
		return fmt.Errorf("stopping playback device: %w", err)
	}
	d.suspended = true
	return nil
}

func (d *Malgo) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil || !d.suspended {
		return nil
	}
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("starting playback device: %w", err)
	}
	d.suspended = false
	return nil
}

func (d *Malgo) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

// Close uninitializes the device and frees the context.
func (d *Malgo) Close() error {
	d.Stop()

	d.mu.Lock()
	device := d.device
	d.device = nil
	d.mu.Unlock()

	if device == nil {
		return nil
	}
	device.Uninit()
	d.freeContext()
	return nil
}

func (d *Malgo) freeContext() {
	_ = d.actx.Uninit()
	d.actx.Free()
}

// signalDrained must be called with mu held.
func (d *Malgo) signalDrained() {
	if d.drained != nil {
		close(d.drained)
		d.drained = nil
	}
}

func (d *Malgo) fill(bytesPerFrame int) malgo.DataProc {
	return func(out, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		d.mu.Lock()
		defer d.mu.Unlock()

		n := copy(out[:need], d.pending)
		d.pending = d.pending[n:]
		if len(d.pending) == 0 {
			d.pending = nil
			d.signalDrained()
		}
	}
}

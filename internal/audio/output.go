package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/hammamikhairi/celestialwok/internal/logger"
)

var (
	// ErrOutputLocked is returned when playback is attempted before the
	// user has interacted with the app.
	ErrOutputLocked = errors.New("audio: output locked until user interaction")

	// ErrOutputClosed is returned after Close.
	ErrOutputClosed = errors.New("audio: output closed")
)

// Output owns the single playback device for the process. The device is
// created lazily on the first play after Unlock.
type Output struct {
	open DeviceFactory
	log  *logger.Logger

	mu       sync.Mutex
	device   Device
	unlocked bool
	closed   bool
	playMu   sync.Mutex
}

// OutputOption configures an Output.
type OutputOption func(*Output)

// Unlocked starts the output already unlocked. Useful for headless runs
// where there is no user gesture to wait for.
func Unlocked() OutputOption {
	return func(o *Output) { o.unlocked = true }
}

// NewOutput creates an output that opens its device with open.
func NewOutput(open DeviceFactory, log *logger.Logger, opts ...OutputOption) *Output {
	o := &Output{open: open, log: log}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Unlock records the first user interaction. Until it is called every
// play fails with ErrOutputLocked.
func (o *Output) Unlock() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.unlocked {
		o.unlocked = true
		o.log.Debug("audio output unlocked")
	}
}

// DecodeAndPlay decodes payload and plays it. The returned channel
// receives exactly one value, nil once playback has finished, and is then
// closed.
func (o *Output) DecodeAndPlay(ctx context.Context, payload string) <-chan error {
	done := make(chan error, 1)
	finish := func(err error) {
		done <- err
		close(done)
	}

	buf, err := Decode(payload)
	if err != nil {
		finish(fmt.Errorf("decoding payload: %w", err))
		return done
	}
	if buf.Truncated {
		o.log.Debug("audio: dropped odd trailing byte from payload")
	}

	dev, err := o.acquire()
	if err != nil {
		finish(err)
		return done
	}

	pcm := buf.Float32LE()
	o.log.Debug("audio: playing %s (%s of PCM)", buf.Duration(), humanize.Bytes(uint64(len(pcm))))

	go func() {
		o.playMu.Lock()
		defer o.playMu.Unlock()

		if o.isClosed() {
			finish(ErrOutputClosed)
			return
		}
		err := dev.Play(ctx, pcm)
		if o.isClosed() {
			// Torn down mid-play; the completion no longer matters.
			finish(ErrOutputClosed)
			return
		}
		finish(err)
	}()
	return done
}

// Suspend pauses the device without releasing it.
func (o *Output) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device == nil || o.closed {
		return nil
	}
	return o.device.Suspend()
}

// Resume resumes a suspended device.
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device == nil || o.closed {
		return nil
	}
	return o.device.Resume()
}

// Close stops any active buffer and tears the device down. Plays after
// Close fail with ErrOutputClosed.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true

	if o.device == nil {
		return nil
	}
	o.device.Stop()
	err := o.device.Close()
	o.device = nil
	o.log.Debug("audio output closed")
	return err
}

// acquire returns the device, creating or resuming it as needed.
func (o *Output) acquire() (Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return nil, ErrOutputClosed
	case !o.unlocked:
		return nil, ErrOutputLocked
	}

	if o.device == nil {
		dev, err := o.open()
		if err != nil {
			return nil, fmt.Errorf("opening audio device: %w", err)
		}
		o.device = dev
		o.log.Debug("audio device opened (rate=%d, channels=%d)", SampleRate, ChannelCount)
	}

	if o.device.Suspended() {
		if err := o.device.Resume(); err != nil {
			return nil, fmt.Errorf("resuming audio device: %w", err)
		}
	}
	return o.device, nil
}

func (o *Output) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

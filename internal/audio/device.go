package audio

import "context"

// Device is a playback sink for mono float32 LE PCM at SampleRate.
// Implementations are not required to support overlapping Play calls;
// Output serializes access.
type Device interface {
	// Play submits pcm and blocks until it has been played, ctx is done,
	// or Stop is called.
	Play(ctx context.Context, pcm []byte) error

	// Stop interrupts the active buffer, if any.
	Stop()

	Suspend() error
	Resume() error
	Suspended() bool

	// Close releases the underlying audio resources.
	Close() error
}

// DeviceFactory opens a device. Output calls it at most once.
type DeviceFactory func() (Device, error)

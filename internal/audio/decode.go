// Package audio decodes base64 PCM payloads from the speech backends and
// plays them on a single process-wide output device.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Payload format produced by the speech backends.
const (
	SampleRate    = 24000
	ChannelCount  = 1
	bytesPerInput = 2 // int16 LE
)

var (
	// ErrEmptyPayload is returned when there is nothing to decode.
	ErrEmptyPayload = errors.New("audio: empty payload")

	// ErrMalformedPayload is returned when the payload is not valid base64.
	ErrMalformedPayload = errors.New("audio: malformed payload")
)

// Buffer is decoded mono PCM ready for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int

	// Truncated reports that an odd trailing byte was dropped.
	Truncated bool
}

// FrameCount is the number of mono frames in the buffer.
func (b *Buffer) FrameCount() int { return len(b.Samples) }

// Duration is the playback length at the buffer's sample rate.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Float32LE encodes the samples as little-endian float32, the wire format
// both device backends consume.
func (b *Buffer) Float32LE() []byte {
	out := make([]byte, len(b.Samples)*4)
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// Decode turns a base64 payload of 16-bit little-endian mono PCM at
// SampleRate into normalized float samples.
func Decode(payload string) (*Buffer, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some backends omit padding.
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	return DecodePCM(raw), nil
}

// DecodePCM converts raw int16 LE bytes. An odd trailing byte is dropped.
func DecodePCM(raw []byte) *Buffer {
	frames := len(raw) / bytesPerInput
	buf := &Buffer{
		Samples:    make([]float32, frames),
		SampleRate: SampleRate,
		Truncated:  len(raw)%bytesPerInput != 0,
	}
	for i := 0; i < frames; i++ {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		buf.Samples[i] = float32(s) / 32768
	}
	return buf
}

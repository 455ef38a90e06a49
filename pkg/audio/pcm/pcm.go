// Package pcm handles the raw 16-bit little-endian PCM representation used on
// the wire: format math for the fixed mono formats, conversion between
// float32 samples and s16le bytes, and the base64 media payloads sent to and
// received from the live transport.
package pcm

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	// L16Mono16K represents audio/pcm; rate=16000, mono, 16-bit.
	L16Mono16K Format = iota
	// L16Mono24K represents audio/pcm; rate=24000, mono, 16-bit.
	L16Mono24K
	// L16Mono48K represents audio/pcm; rate=48000, mono, 16-bit.
	L16Mono48K
)

// Format represents an audio format configuration.
type Format int

// FormatForRate returns the Format for a sample rate in Hz.
func FormatForRate(rate int) (Format, bool) {
	switch rate {
	case 16000:
		return L16Mono16K, true
	case 24000:
		return L16Mono24K, true
	case 48000:
		return L16Mono48K, true
	}
	return 0, false
}

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono24K:
		return 24000
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid audio format")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 1
	}
	panic("pcm: invalid audio format")
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 16
	}
	panic("pcm: invalid audio format")
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// SamplesInDuration returns the number of samples in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.Channels()) * int64(f.Depth()) / 8
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.Channels() * f.Depth() / 8
}

// MIME returns the wire MIME descriptor for this format, e.g.
// "audio/pcm;rate=16000".
func (f Format) MIME() string {
	return fmt.Sprintf("audio/pcm;rate=%d", f.SampleRate())
}

// String returns a human-readable string representation of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate(), f.Channels())
}

// FromFloat32 converts float32 samples in [-1, 1] to s16le bytes. Samples
// outside the range are clamped at the boundaries.
func FromFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// ToFloat32 converts s16le bytes back to float32 samples, rescaling by
// 1/32768. A trailing odd byte is ignored.
func ToFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float32(v) / 32768.0
	}
	return out
}

// Payload is a transport-safe media payload: base64 data tagged with the
// MIME descriptor the remote service expects.
type Payload struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Encode converts float32 samples to a wire payload in this format.
func (f Format) Encode(samples []float32) Payload {
	return Payload{
		MIMEType: f.MIME(),
		Data:     base64.StdEncoding.EncodeToString(FromFloat32(samples)),
	}
}

// Decode converts base64 s16le data back to float32 samples. The result is
// interpreted at whatever rate the caller plays it; decoding does not depend
// on the rate the data was captured at.
func Decode(data string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("pcm: decode payload: %w", err)
	}
	return ToFloat32(raw), nil
}

// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: PCM (Pulse Code Modulation) wire format handling
//   - resampler: sample rate conversion for capture devices
//
// Example usage:
//
//	import (
//	    "github.com/livemind/livemind/pkg/audio/pcm"
//	    "github.com/livemind/livemind/pkg/audio/resampler"
//	)
//
//	// Encode a capture block for the wire
//	payload := pcm.L16Mono16K.Encode(samples)
//
//	// Convert a 48 kHz microphone to the wire rate
//	conv, err := resampler.New(48000, 16000)
package audio

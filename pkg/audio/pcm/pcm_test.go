package pcm_test

import (
	"math"
	"testing"
	"time"

	"github.com/livemind/livemind/pkg/audio/pcm"
)

func TestFormatMath(t *testing.T) {
	f := pcm.L16Mono16K
	if got := f.SampleRate(); got != 16000 {
		t.Fatalf("SampleRate = %d, want 16000", got)
	}
	if got := f.SamplesInDuration(time.Second); got != 16000 {
		t.Fatalf("SamplesInDuration(1s) = %d, want 16000", got)
	}
	if got := f.BytesInDuration(250 * time.Millisecond); got != 8000 {
		t.Fatalf("BytesInDuration(250ms) = %d, want 8000", got)
	}
	if got := f.Duration(32000); got != time.Second {
		t.Fatalf("Duration(32000) = %v, want 1s", got)
	}
	if got := pcm.L16Mono24K.BytesRate(); got != 48000 {
		t.Fatalf("BytesRate = %d, want 48000", got)
	}
}

func TestFormatForRate(t *testing.T) {
	if f, ok := pcm.FormatForRate(24000); !ok || f != pcm.L16Mono24K {
		t.Fatalf("FormatForRate(24000) = %v, %v", f, ok)
	}
	if _, ok := pcm.FormatForRate(44100); ok {
		t.Fatalf("FormatForRate(44100) should not be supported")
	}
}

func TestMIME(t *testing.T) {
	if got := pcm.L16Mono16K.MIME(); got != "audio/pcm;rate=16000" {
		t.Fatalf("MIME = %q", got)
	}
	if got := pcm.L16Mono24K.MIME(); got != "audio/pcm;rate=24000" {
		t.Fatalf("MIME = %q", got)
	}
}

func TestFromFloat32Clamps(t *testing.T) {
	data := pcm.FromFloat32([]float32{2.0, -2.0, 0})
	if len(data) != 6 {
		t.Fatalf("len = %d, want 6", len(data))
	}
	max := int16(data[0]) | int16(data[1])<<8
	min := int16(data[2]) | int16(data[3])<<8
	zero := int16(data[4]) | int16(data[5])<<8
	if max != math.MaxInt16 {
		t.Fatalf("clamped positive = %d, want %d", max, math.MaxInt16)
	}
	if min != math.MinInt16 {
		t.Fatalf("clamped negative = %d, want %d", min, math.MinInt16)
	}
	if zero != 0 {
		t.Fatalf("zero sample = %d, want 0", zero)
	}
}

func TestRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.99, -0.99}
	out := pcm.ToFloat32(pcm.FromFloat32(in))
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > 1.0/32768 {
			t.Fatalf("sample %d: got %f, want %f (diff %f)", i, out[i], in[i], diff)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	in := []float32{0.1, -0.1, 0.3}
	p := pcm.L16Mono16K.Encode(in)
	if p.MIMEType != "audio/pcm;rate=16000" {
		t.Fatalf("MIMEType = %q", p.MIMEType)
	}
	out, err := pcm.Decode(p.Data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > 1.0/32768 {
			t.Fatalf("sample %d: got %f, want %f", i, out[i], in[i])
		}
	}
}

func TestDecodeRejectsBadBase64(t *testing.T) {
	if _, err := pcm.Decode("not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

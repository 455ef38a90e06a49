package resampler_test

import (
	"math"
	"testing"

	"github.com/livemind/livemind/pkg/audio/resampler"
)

func TestPassthrough(t *testing.T) {
	c, err := resampler.New(16000, 16000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.Passthrough() {
		t.Fatal("expected passthrough for equal rates")
	}
	in := []float32{0.1, -0.5, 0.9}
	out, err := c.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
}

func TestDownsampleRatio(t *testing.T) {
	c, err := resampler.New(48000, 16000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Passthrough() {
		t.Fatal("expected active converter")
	}

	// 1 second of a 440 Hz tone at 48 kHz should come out near 16k samples.
	in := make([]float32, 48000)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
	}
	var total int
	for off := 0; off < len(in); off += 4096 {
		end := min(off+4096, len(in))
		out, err := c.Process(in[off:end])
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		total += len(out)
	}
	if total < 14000 || total > 17000 {
		t.Fatalf("got %d output samples, want about 16000", total)
	}
}

func TestRejectsInvalidRates(t *testing.T) {
	if _, err := resampler.New(0, 16000); err == nil {
		t.Fatal("expected error for zero input rate")
	}
	if _, err := resampler.New(16000, -1); err == nil {
		t.Fatal("expected error for negative output rate")
	}
}

// Package resampler converts capture-rate audio blocks to the rate the
// conversation service expects. It is a pure Go implementation, no CGO.
package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Converter resamples mono float32 blocks from one sample rate to another.
// It is stateful across blocks; feed it a continuous stream. Not safe for
// concurrent use.
type Converter struct {
	inRate  int
	outRate int
	rs      resampling.Resampler
}

// New creates a Converter from inRate to outRate. Equal rates yield a
// passthrough converter.
func New(inRate, outRate int) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", inRate, outRate)
	}
	c := &Converter{inRate: inRate, outRate: outRate}
	if inRate != outRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(inRate),
			OutputRate: float64(outRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		c.rs = rs
	}
	return c, nil
}

// Passthrough reports whether the converter leaves samples untouched.
func (c *Converter) Passthrough() bool {
	return c.rs == nil
}

// Process resamples one block. The output length varies with the rate ratio
// and the resampler's internal state; it may be empty for small blocks.
func (c *Converter) Process(samples []float32) ([]float32, error) {
	if c.rs == nil {
		return samples, nil
	}
	in := make([]float64, len(samples))
	for i, s := range samples {
		in[i] = float64(s)
	}
	out, err := c.rs.Process(in)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}
	res := make([]float32, len(out))
	for i, s := range out {
		res[i] = float32(s)
	}
	return res, nil
}

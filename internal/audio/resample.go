// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
)

// Resample converts b to targetRate with linear interpolation. The output
// length is round(len * target / source). A buffer already at targetRate is
// returned as a copy.
func Resample(b Buffer, targetRate int) (Buffer, error) {
	if err := b.Validate(); err != nil {
		return Buffer{}, err
	}
	if targetRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: target %d", ErrInvalidSampleRate, targetRate)
	}
	if targetRate == b.SampleRate {
		return b.Clone(), nil
	}

	ratio := float64(b.SampleRate) / float64(targetRate)
	n := int(math.Round(float64(len(b.Samples)) / ratio))
	if n < 1 {
		n = 1
	}

	in := b.Samples
	last := len(in) - 1
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = in[last]
			continue
		}
		frac := pos - float64(idx)
		out[i] = in[idx]*(1-frac) + in[idx+1]*frac
	}

	return Buffer{Samples: out, SampleRate: targetRate}, nil
}

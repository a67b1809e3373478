// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"
	"math"

	"denoise/internal/stft"
)

// SubtractionOptions configures Subtract.
type SubtractionOptions struct {
	// OverSubtraction scales the noise profile before it is removed (alpha).
	OverSubtraction float64
	// SpectralFloor is the fraction of the original magnitude always kept.
	SpectralFloor float64
}

// Validate checks the option ranges.
func (o SubtractionOptions) Validate() error {
	if o.OverSubtraction < 0 {
		return fmt.Errorf("%w: over-subtraction %.3f must not be negative", ErrInvalidParameter, o.OverSubtraction)
	}
	if o.SpectralFloor < 0 || o.SpectralFloor > 1 {
		return fmt.Errorf("%w: spectral floor %.3f must be in [0, 1]", ErrInvalidParameter, o.SpectralFloor)
	}
	return nil
}

// Subtract removes alpha*noise[bin] from every magnitude, never going below
// floor*magnitude, and keeps the original phase. The result has the same
// shape as spec; spec itself is not modified.
func Subtract(spec *stft.Spectrogram, noise NoiseProfile, opts SubtractionOptions) (*stft.Spectrogram, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(noise) != spec.NumBins() {
		return nil, fmt.Errorf("%w: noise profile has %d bins, spectrogram has %d",
			ErrInvalidParameter, len(noise), spec.NumBins())
	}

	out := spec.Clone()
	for k, row := range out.Bins {
		floorNoise := opts.OverSubtraction * noise[k]
		for t, c := range row {
			mag := math.Hypot(real(c), imag(c))
			if mag == 0 {
				continue
			}
			clean := math.Max(mag-floorNoise, opts.SpectralFloor*mag)
			row[t] = c * complex(clean/mag, 0)
		}
	}
	return out, nil
}

// SubtractMagnitude applies the subtraction rule to a single magnitude.
func SubtractMagnitude(mag, noise float64, opts SubtractionOptions) float64 {
	return math.Max(mag-opts.OverSubtraction*noise, opts.SpectralFloor*mag)
}

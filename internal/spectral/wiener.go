// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"
	"math"

	"denoise/internal/stft"
)

// Epsilon keeps the SNR estimate finite when the noise PSD is zero.
const Epsilon = 1e-10

// DefaultNoiseSeconds is the usual lead-in used to estimate the noise PSD.
const DefaultNoiseSeconds = 0.5

// NoisePSD averages |X|^2 per bin over the first int(seconds*rate/hop)
// frames, or over every frame when that count is not fewer than the frame
// count.
func NoisePSD(spec *stft.Spectrogram, sampleRate, hopSize int, seconds float64) ([]float64, error) {
	if sampleRate <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d and hop %d must be positive", ErrInvalidParameter, sampleRate, hopSize)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("%w: noise duration %.3f must be positive", ErrInvalidParameter, seconds)
	}

	frames := spec.NumFrames()
	if frames == 0 {
		return nil, fmt.Errorf("%w: empty spectrogram", ErrInvalidParameter)
	}
	n := int(seconds * float64(sampleRate) / float64(hopSize))
	if n >= frames {
		n = frames
	}
	if n < 1 {
		n = 1
	}

	psd := make([]float64, spec.NumBins())
	for k, row := range spec.Bins {
		var sum float64
		for _, c := range row[:n] {
			sum += real(c)*real(c) + imag(c)*imag(c)
		}
		psd[k] = sum / float64(n)
	}
	return psd, nil
}

// WienerGain returns snr/(snr+1) with snr = max(power-noise, 0)/(noise+Epsilon),
// computed as s/(s+noise+Epsilon) so huge powers cannot overflow. The result
// always lies in [0, 1).
func WienerGain(power, noise float64) float64 {
	s := math.Max(power-noise, 0)
	if math.IsInf(s, 1) {
		return math.Nextafter(1, 0)
	}
	g := s / (s + noise + Epsilon)
	if math.IsNaN(g) {
		return 0
	}
	if g >= 1 {
		// Very large SNRs round up to exactly 1.
		g = math.Nextafter(1, 0)
	}
	return g
}

// Wiener applies a single-pass Wiener gain to every cell of spec using a noise
// PSD estimated from its leading seconds.
func Wiener(spec *stft.Spectrogram, sampleRate, hopSize int, seconds float64) (*stft.Spectrogram, error) {
	psd, err := NoisePSD(spec, sampleRate, hopSize, seconds)
	if err != nil {
		return nil, err
	}

	out := spec.Clone()
	for k, row := range out.Bins {
		for t, c := range row {
			power := real(c)*real(c) + imag(c)*imag(c)
			row[t] = c * complex(WienerGain(power, psd[k]), 0)
		}
	}
	return out, nil
}

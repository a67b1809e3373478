// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FrequencyBand is a range of normalised frequencies, in cycles per sample,
// matched against |f|.
type FrequencyBand struct {
	Name string
	Low  float64
	High float64
}

// contains reports whether |f| lies strictly inside the band.
func (b FrequencyBand) contains(f float64) bool {
	a := math.Abs(f)
	return a > b.Low && a < b.High
}

// BandPowers is the power split computed over one full-signal FFT.
type BandPowers struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Total float64 `json:"total"`
}

// HighRatio returns High/Total clamped to [0, 1], or 0 for a silent signal.
func (p BandPowers) HighRatio() float64 {
	if p.Total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, p.High/p.Total))
}

// Default normalised edges of the HighBandRatio estimator.
const (
	DefaultHighCutoff = 0.3
	DefaultLowCutoff  = 0.1
)

// HighBandRatio estimates noise as the share of spectral power above
// HighCutoff cycles per sample. Broadband noise has far more energy there than
// speech does. The low band is only reported.
type HighBandRatio struct {
	HighCutoff float64
	LowCutoff  float64
}

var _ NoiseEstimator = HighBandRatio{}

// NewHighBandRatio returns the estimator with its default cutoffs.
func NewHighBandRatio() HighBandRatio {
	return HighBandRatio{HighCutoff: DefaultHighCutoff, LowCutoff: DefaultLowCutoff}
}

// Measure returns the power in the low band, high band and in total.
func (h HighBandRatio) Measure(samples []float64) BandPowers {
	var p BandPowers
	n := len(samples)
	if n == 0 {
		return p
	}

	low := FrequencyBand{Name: "low", Low: -1, High: h.LowCutoff}
	high := FrequencyBand{Name: "high", Low: h.HighCutoff, High: math.Inf(1)}

	coeffs := fft.FFTReal(samples)
	for k, c := range coeffs {
		power := math.Pow(cmplx.Abs(c), 2)
		f := binFrequency(k, n)
		p.Total += power
		if low.contains(f) {
			p.Low += power
		}
		if high.contains(f) {
			p.High += power
		}
	}
	return p
}

// NoiseRatio implements NoiseEstimator.
func (h HighBandRatio) NoiseRatio(samples []float64) float64 {
	return h.Measure(samples).HighRatio()
}

// binFrequency maps DFT bin k of an n-point transform to cycles per sample,
// negative for the upper half of the spectrum.
func binFrequency(k, n int) float64 {
	if k < (n+1)/2 {
		return float64(k) / float64(n)
	}
	return float64(k-n) / float64(n)
}

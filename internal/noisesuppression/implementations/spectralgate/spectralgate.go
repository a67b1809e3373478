// SPDX-License-Identifier: MIT

// Package spectralgate is an in-process spectral gate. It builds a per-bin
// keep/attenuate mask from a noise estimate, smooths it over time and
// frequency and scales the signal's STFT by it.
//
// In stationary mode the threshold for each bin is mean + NStd*std of the
// noise clip's dB magnitude. In non-stationary mode the noise estimate is a
// moving average of the signal's own magnitude and the mask is a sigmoid of
// the ratio to it.
package spectralgate

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"

	"denoise/internal/noisesuppression"
	"denoise/internal/stft"
)

// Gate defaults.
const (
	DefaultNStd              = 1.5
	DefaultFreqSmoothHz      = 500.0
	DefaultTimeSmoothSeconds = 0.05
	DefaultTimeConstant      = 2.0
	DefaultRatioThreshold    = 2.0
	DefaultSigmoidSlope      = 10.0
)

// Gate implements noisesuppression.NoiseSuppression.
type Gate struct {
	NStd              float64
	FreqSmoothHz      float64
	TimeSmoothSeconds float64
	TimeConstant      float64
	RatioThreshold    float64
	SigmoidSlope      float64
}

var _ noisesuppression.NoiseSuppression = (*Gate)(nil)

// New returns a gate with the default tuning.
func New() *Gate {
	return &Gate{
		NStd:              DefaultNStd,
		FreqSmoothHz:      DefaultFreqSmoothHz,
		TimeSmoothSeconds: DefaultTimeSmoothSeconds,
		TimeConstant:      DefaultTimeConstant,
		RatioThreshold:    DefaultRatioThreshold,
		SigmoidSlope:      DefaultSigmoidSlope,
	}
}

func (*Gate) Close() error {
	return nil
}

// Reduce applies the gate. An empty noiseClip makes stationary mode estimate
// the noise from the signal itself.
func (g *Gate) Reduce(
	ctx context.Context,
	samples []float64,
	sampleRate int,
	noiseClip []float64,
	opts noisesuppression.Options,
) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", noisesuppression.ErrDelegateFailure, sampleRate)
	}
	if opts.PropDecrease < 0 || opts.PropDecrease > 1 {
		return nil, fmt.Errorf("%w: prop_decrease %.3f outside [0, 1]", noisesuppression.ErrDelegateFailure, opts.PropDecrease)
	}
	if len(samples) == 0 {
		return []float64{}, nil
	}

	spec, err := stft.Forward(samples, opts.FFTSize, opts.HopSize, stft.Hann)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", noisesuppression.ErrDelegateFailure, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", noisesuppression.ErrDelegateFailure, err)
	}

	mag := spec.Magnitude()
	var mask [][]float64
	if opts.Stationary {
		clip := noiseClip
		if len(clip) == 0 {
			clip = samples
		}
		mask, err = g.stationaryMask(clip, mag, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", noisesuppression.ErrDelegateFailure, err)
		}
	} else {
		mask = g.nonStationaryMask(mag, sampleRate, opts.HopSize)
	}

	freqBins := int(math.Round(g.FreqSmoothHz / (float64(sampleRate) / float64(opts.FFTSize))))
	timeFrames := int(math.Round(g.TimeSmoothSeconds * float64(sampleRate) / float64(opts.HopSize)))
	mask = boxSmooth(mask, freqBins, timeFrames)

	for k, row := range spec.Bins {
		for t, c := range row {
			gain := mask[k][t]*opts.PropDecrease + (1 - opts.PropDecrease)
			row[t] = c * complex(gain, 0)
		}
	}

	out, err := stft.Inverse(spec, opts.HopSize, stft.Hann, len(samples))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", noisesuppression.ErrDelegateFailure, err)
	}
	return out, nil
}

// stationaryMask marks cells above the per-bin noise threshold with 1.
func (g *Gate) stationaryMask(clip []float64, mag [][]float64, opts noisesuppression.Options) ([][]float64, error) {
	noise, err := stft.Forward(clip, opts.FFTSize, opts.HopSize, stft.Hann)
	if err != nil {
		return nil, err
	}

	thresh := make([]float64, noise.NumBins())
	for k, row := range noise.Bins {
		db := make([]float64, len(row))
		for t, c := range row {
			db[t] = toDB(cmplx.Abs(c))
		}
		mean, std := stat.MeanStdDev(db, nil)
		if math.IsNaN(std) {
			std = 0
		}
		thresh[k] = mean + g.NStd*std
	}

	mask := make([][]float64, len(mag))
	for k, row := range mag {
		mask[k] = make([]float64, len(row))
		for t, m := range row {
			if toDB(m) > thresh[k] {
				mask[k][t] = 1
			}
		}
	}
	return mask, nil
}

// nonStationaryMask compares each cell with a moving average of its bin.
func (g *Gate) nonStationaryMask(mag [][]float64, sampleRate, hopSize int) [][]float64 {
	width := int(math.Round(g.TimeConstant * float64(sampleRate) / float64(hopSize)))
	smoothed := boxSmooth(mag, 0, width/2)

	mask := make([][]float64, len(mag))
	for k, row := range mag {
		mask[k] = make([]float64, len(row))
		for t, m := range row {
			ratio := m / (smoothed[k][t] + 1e-10)
			mask[k][t] = sigmoid(g.SigmoidSlope * (ratio - g.RatioThreshold))
		}
	}
	return mask
}

// boxSmooth averages each cell with its neighbours within +-fr bins and
// +-tr frames, shrinking the window at the edges.
func boxSmooth(x [][]float64, fr, tr int) [][]float64 {
	if len(x) == 0 || (fr <= 0 && tr <= 0) {
		return x
	}
	bins, frames := len(x), len(x[0])

	// Integral image for O(1) box sums.
	sum := make([][]float64, bins+1)
	for k := range sum {
		sum[k] = make([]float64, frames+1)
	}
	for k := 0; k < bins; k++ {
		for t := 0; t < frames; t++ {
			sum[k+1][t+1] = x[k][t] + sum[k][t+1] + sum[k+1][t] - sum[k][t]
		}
	}

	out := make([][]float64, bins)
	for k := 0; k < bins; k++ {
		out[k] = make([]float64, frames)
		k0, k1 := max(0, k-fr), min(bins, k+fr+1)
		for t := 0; t < frames; t++ {
			t0, t1 := max(0, t-tr), min(frames, t+tr+1)
			area := float64((k1 - k0) * (t1 - t0))
			out[k][t] = (sum[k1][t1] - sum[k0][t1] - sum[k1][t0] + sum[k0][t0]) / area
		}
	}
	return out
}

func toDB(m float64) float64 {
	return 20 * math.Log10(m+1e-10)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

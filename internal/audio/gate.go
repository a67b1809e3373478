// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Post-processing defaults applied after denoising.
const (
	DefaultTargetLevel = 0.9
	DefaultTopDB       = 30.0
	DefaultTrimFrame   = 2048
	DefaultTrimHop     = 512
)

// Normalize scales samples so the peak equals target, then clips to [-1, 1].
// The target is clamped into [0, 1]. Silent input is returned as a copy.
func Normalize(samples []float64, target float64) []float64 {
	if target < 0.0 {
		target = 0.0
	}
	if target > 1.0 {
		target = 1.0
	}

	out := make([]float64, len(samples))
	copy(out, samples)

	peak := Peak(samples)
	if peak == 0 {
		return out
	}

	floats.Scale(target/peak, out)
	for i, s := range out {
		out[i] = math.Max(-1, math.Min(1, s))
	}
	return out
}

// TrimSilence drops leading and trailing frames whose RMS is more than topDB
// below the loudest frame. Frames are centred on multiples of hop and padded
// with zeros at the edges. A fully silent input is returned as a copy.
func TrimSilence(samples []float64, topDB float64, frameLength, hop int) []float64 {
	if len(samples) == 0 || frameLength <= 0 || hop <= 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	rms := frameRMS(samples, frameLength, hop)
	maxRMS := floats.Max(rms)
	if maxRMS == 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	first, last := -1, -1
	for i, r := range rms {
		if r == 0 {
			continue
		}
		if 20*math.Log10(r/maxRMS) > -topDB {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return []float64{}
	}

	start := first * hop
	end := min(len(samples), (last+1)*hop)
	if start >= end {
		return []float64{}
	}

	out := make([]float64, end-start)
	copy(out, samples[start:end])
	return out
}

// frameRMS computes the RMS of centred frames: frame i covers
// [i*hop - frameLength/2, i*hop + frameLength/2) with zeros outside the signal.
func frameRMS(samples []float64, frameLength, hop int) []float64 {
	n := 1 + len(samples)/hop
	half := frameLength / 2
	rms := make([]float64, n)
	for i := range rms {
		lo := max(0, i*hop-half)
		hi := min(len(samples), i*hop-half+frameLength)
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(frameLength))
	}
	return rms
}

// SPDX-License-Identifier: MIT

// Package analysis holds the signal heuristics the adaptive denoiser uses to
// pick a processing branch.
package analysis

// NoiseEstimator scores how noisy a signal is on a [0, 1] scale. The adaptive
// method only compares the score against thresholds, so any estimator with
// the same range can be swapped in.
type NoiseEstimator interface {
	// NoiseRatio returns a score in [0, 1]; higher means noisier.
	NoiseRatio(samples []float64) float64
}

// NoiseEstimatorFunc adapts a plain function to NoiseEstimator.
type NoiseEstimatorFunc func(samples []float64) float64

// NoiseRatio calls f.
func (f NoiseEstimatorFunc) NoiseRatio(samples []float64) float64 {
	return f(samples)
}

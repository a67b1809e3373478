// SPDX-License-Identifier: MIT

// Package noisesuppression defines the pluggable noise reduction stage used
// by the noisereduce and adaptive methods. Implementations live under
// implementations/.
package noisesuppression

import (
	"context"
	"errors"
	"io"
)

// ErrDelegateFailure wraps any error returned by a NoiseSuppression.
var ErrDelegateFailure = errors.New("noise suppression failed")

// Options tune a single Reduce call.
type Options struct {
	// Stationary selects a fixed noise estimate taken from the noise clip.
	// Otherwise the estimate tracks the signal over time.
	Stationary bool
	// PropDecrease is the fraction of the estimated noise removed, in [0, 1].
	PropDecrease float64
	FFTSize      int
	HopSize      int
}

// DefaultOptions mirrors the settings the noisereduce method uses.
func DefaultOptions() Options {
	return Options{
		Stationary:   false,
		PropDecrease: 0.9,
		FFTSize:      2048,
		HopSize:      512,
	}
}

// NoiseSuppression removes noise from a mono signal. noiseClip is a stretch
// of the same recording assumed to hold only noise; it may be empty.
// Implementations must return a slice of the same length as samples.
type NoiseSuppression interface {
	io.Closer

	Reduce(ctx context.Context, samples []float64, sampleRate int, noiseClip []float64, opts Options) ([]float64, error)
}

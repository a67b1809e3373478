// SPDX-License-Identifier: MIT

// Package audio holds the mono sample buffer shared by every processing stage
// together with the collaborators around the denoising engine: WAV file I/O,
// channel downmixing, resampling and post-processing.
package audio

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyBuffer is returned when a buffer carries no samples.
	ErrEmptyBuffer = errors.New("audio: empty buffer")
	// ErrInvalidSampleRate is returned when the sample rate is not positive.
	ErrInvalidSampleRate = errors.New("audio: invalid sample rate")
)

// Buffer is a mono signal with samples nominally in [-1, 1].
// Stages never mutate a Buffer they receive; they return a new one.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// NewBuffer wraps samples without copying.
func NewBuffer(samples []float64, sampleRate int) Buffer {
	return Buffer{Samples: samples, SampleRate: sampleRate}
}

// Validate checks the buffer is usable by the engine.
func (b Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	}
	if len(b.Samples) == 0 {
		return ErrEmptyBuffer
	}
	return nil
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the length of the buffer in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := make([]float64, len(b.Samples))
	copy(out, b.Samples)
	return Buffer{Samples: out, SampleRate: b.SampleRate}
}

// WithSamples returns a buffer at the same rate carrying samples.
func (b Buffer) WithSamples(samples []float64) Buffer {
	return Buffer{Samples: samples, SampleRate: b.SampleRate}
}

// Peak returns the largest absolute sample value.
func (b Buffer) Peak() float64 {
	return Peak(b.Samples)
}

// RMS returns the root mean square of the buffer.
func (b Buffer) RMS() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	return floats.Norm(b.Samples, 2) / math.Sqrt(float64(len(b.Samples)))
}

// Peak returns the largest absolute value in samples, 0 for an empty slice.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Downmix averages interleaved multi-channel samples into a mono signal.
// A trailing partial frame is dropped.
func Downmix(interleaved []float64, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("audio: invalid channel count %d", channels)
	}
	if channels == 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out, nil
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	scale := 1 / float64(channels)
	for i := 0; i < frames; i++ {
		out[i] = floats.Sum(interleaved[i*channels:(i+1)*channels]) * scale
	}
	return out, nil
}

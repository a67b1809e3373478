// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferValidate(t *testing.T) {
	assert.ErrorIs(t, Buffer{SampleRate: 0, Samples: []float64{0}}.Validate(), ErrInvalidSampleRate)
	assert.ErrorIs(t, Buffer{SampleRate: 16000}.Validate(), ErrEmptyBuffer)
	assert.NoError(t, NewBuffer([]float64{0.1}, 16000).Validate())
}

func TestBufferCloneIsDeep(t *testing.T) {
	b := NewBuffer([]float64{0.1, 0.2}, 8000)
	c := b.Clone()
	c.Samples[0] = 1

	assert.Equal(t, 0.1, b.Samples[0])
	assert.Equal(t, 8000, c.SampleRate)
}

func TestBufferStats(t *testing.T) {
	b := NewBuffer([]float64{1, -1, 1, -1}, 4)

	assert.InDelta(t, 1.0, b.RMS(), 1e-12)
	assert.Equal(t, 1.0, b.Peak())
	assert.InDelta(t, 1.0, b.Duration(), 1e-12)
	assert.Equal(t, 0.0, Buffer{}.RMS())
}

func TestDownmix(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		channels int
		want     []float64
	}{
		{"mono copy", []float64{0.1, 0.2}, 1, []float64{0.1, 0.2}},
		{"stereo", []float64{1, 0, 0.5, 0.5, -1, 1}, 2, []float64{0.5, 0.5, 0}},
		{"partial frame dropped", []float64{1, 1, 1}, 2, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Downmix(tt.in, tt.channels)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}

	_, err := Downmix([]float64{1}, 0)
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	src := NewBuffer(tone(44100, 44100, 440, 0.5), 44100)

	out, err := Resample(src, 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, out.SampleRate)
	assert.Equal(t, 16000, out.Len())

	// A 440 Hz tone keeps its amplitude through linear interpolation.
	assert.InDelta(t, 0.5, out.Peak(), 0.01)
	assert.InDelta(t, 0.5/math.Sqrt2, out.RMS(), 0.01)

	same, err := Resample(src, 44100)
	require.NoError(t, err)
	assert.Equal(t, src.Len(), same.Len())

	_, err = Resample(src, 0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

// SPDX-License-Identifier: MIT
package spectralgate

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"denoise/internal/noisesuppression"
	"denoise/pkg/utils"
)

const testRate = 16000

func rms(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func testSignal() (signal, noise, tone []float64) {
	noise = utils.GenerateNoise(testRate*2, 0.05, 11)
	tone = utils.GenerateSineWave(testRate*2, testRate, 440, 0.5)
	for i := 0; i < testRate/2; i++ {
		tone[i] = 0
	}
	return utils.Mix(noise, tone), noise, tone
}

func TestStationaryGate(t *testing.T) {
	signal, _, _ := testSignal()
	opts := noisesuppression.DefaultOptions()
	opts.Stationary = true

	// A pure tone occupies a few bins, so frequency smoothing would dilute it.
	g := New()
	g.FreqSmoothHz = 0

	out, err := g.Reduce(context.Background(), signal, testRate, signal[:testRate/2], opts)
	require.NoError(t, err)
	require.Len(t, out, len(signal))

	// Noise-only lead-in is attenuated.
	lead := testRate / 4
	assert.Less(t, rms(out[lead:testRate/2-lead/2]), 0.5*rms(signal[lead:testRate/2-lead/2]))

	// The tone survives.
	body := signal[testRate : testRate+testRate/2]
	assert.InDelta(t, rms(body), rms(out[testRate:testRate+testRate/2]), 0.1*rms(body))
}

func TestNonStationaryGate(t *testing.T) {
	signal, _, _ := testSignal()

	out, err := New().Reduce(context.Background(), signal, testRate, nil, noisesuppression.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, len(signal))
	assert.Less(t, rms(out), rms(signal))
}

func TestZeroPropDecreaseIsIdentity(t *testing.T) {
	signal, _, _ := testSignal()
	opts := noisesuppression.DefaultOptions()
	opts.PropDecrease = 0

	out, err := New().Reduce(context.Background(), signal, testRate, nil, opts)
	require.NoError(t, err)
	for i := opts.FFTSize; i < len(signal)-opts.FFTSize; i++ {
		if math.Abs(out[i]-signal[i]) > 1e-6 {
			t.Fatalf("sample %d changed: %.8f != %.8f", i, out[i], signal[i])
		}
	}
}

func TestGateErrors(t *testing.T) {
	g := New()
	opts := noisesuppression.DefaultOptions()

	_, err := g.Reduce(context.Background(), []float64{0}, 0, nil, opts)
	assert.ErrorIs(t, err, noisesuppression.ErrDelegateFailure)

	bad := opts
	bad.PropDecrease = 1.5
	_, err = g.Reduce(context.Background(), []float64{0}, testRate, nil, bad)
	assert.ErrorIs(t, err, noisesuppression.ErrDelegateFailure)

	bad = opts
	bad.HopSize = 0
	_, err = g.Reduce(context.Background(), []float64{0}, testRate, nil, bad)
	assert.ErrorIs(t, err, noisesuppression.ErrDelegateFailure)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Reduce(ctx, []float64{0, 1}, testRate, nil, opts)
	assert.ErrorIs(t, err, context.Canceled)

	out, err := g.Reduce(context.Background(), nil, testRate, nil, opts)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBoxSmooth(t *testing.T) {
	x := [][]float64{
		{0, 0, 0},
		{0, 9, 0},
		{0, 0, 0},
	}
	out := boxSmooth(x, 1, 1)
	assert.InDelta(t, 1.0, out[1][1], 1e-12)
	assert.InDelta(t, 9.0/4, out[0][0], 1e-12)

	assert.Equal(t, x, boxSmooth(x, 0, 0))
}

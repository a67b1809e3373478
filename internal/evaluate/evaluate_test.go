// SPDX-License-Identifier: MIT
package evaluate

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"denoise/pkg/utils"
)

func TestCompare(t *testing.T) {
	const rate = 16000
	clean := utils.GenerateSineWave(rate, rate, 440, 0.5)
	noise := utils.GenerateNoise(rate, 0.1, 1)
	noisy := utils.Mix(clean, noise)

	// A denoiser that removed half the noise amplitude gains about 6 dB.
	half := make([]float64, len(noise))
	for i := range noise {
		half[i] = clean[i] + noise[i]/2
	}

	m, err := Compare(clean, noisy, half, rate)
	require.NoError(t, err)

	assert.InDelta(t, 6.02, m.SNRImprovement, 0.01)
	assert.Equal(t, rate, m.Length)
	assert.InDelta(t, 1.0, m.DurationSeconds, 1e-12)
	assert.InDelta(t, 0.0025, m.MSE, 0.0003)

	// Clean power 0.125, noise power ~0.0025.
	assert.InDelta(t, 10*math.Log10(0.125/m.MSE), m.SNR, 1e-6)
	assert.Greater(t, m.PSNR, m.SNR)
}

func TestCompareIdentical(t *testing.T) {
	clean := utils.GenerateSineWave(1000, 8000, 300, 0.5)
	m, err := Compare(clean, nil, clean, 8000)
	require.NoError(t, err)

	assert.Zero(t, m.MSE)
	assert.Greater(t, m.SNR, 80.0)
	assert.Zero(t, m.SNRImprovement)
}

func TestSISNRIgnoresScale(t *testing.T) {
	clean := utils.GenerateComplexWave(4000, 16000)
	est := utils.Mix(clean, utils.GenerateNoise(4000, 0.05, 3))

	scaled := make([]float64, len(est))
	for i, v := range est {
		scaled[i] = 3 * v
	}
	assert.InDelta(t, SISNR(clean, est), SISNR(clean, scaled), 1e-6)
}

func TestCompareTruncatesAndValidates(t *testing.T) {
	m, err := Compare([]float64{0.1, 0.2, 0.3}, nil, []float64{0.1, 0.2}, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Length)

	_, err = Compare(nil, nil, []float64{0.1}, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Compare([]float64{0.1}, nil, []float64{0.1}, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummaryRanking(t *testing.T) {
	s := Summary{
		NoisyFile:  "noisy.wav",
		CleanFile:  "clean.wav",
		SampleRate: 16000,
		Results: []MethodResult{
			{Method: "bandpass", Metrics: Metrics{SNRImprovement: 1.5}, Elapsed: time.Millisecond},
			{Method: "wiener", Metrics: Metrics{SNRImprovement: 4.0}},
			{Method: "noisereduce", Error: "delegate unavailable"},
			{Method: "adaptive", Metrics: Metrics{SNRImprovement: 3.2}},
		},
	}

	best, ok := s.Best()
	require.True(t, ok)
	assert.Equal(t, "wiener", best.Method)

	ranked := s.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"wiener", "adaptive", "bandpass"},
		[]string{ranked[0].Method, ranked[1].Method, ranked[2].Method})

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	assert.Contains(t, buf.String(), "noisereduce            failed: delegate unavailable")
	assert.Contains(t, buf.String(), "wiener")

	_, ok = Summary{}.Best()
	assert.False(t, ok)
}

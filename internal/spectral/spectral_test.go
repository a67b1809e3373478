// SPDX-License-Identifier: MIT
package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"denoise/internal/audio"
	"denoise/internal/stft"
	"denoise/pkg/utils"
)

const (
	testRate = 16000
	testFFT  = 512
	testHop  = 128
)

func noisySpeechLike() audio.Buffer {
	// Half a second of noise, then a tone on top of the same noise.
	noise := utils.GenerateNoise(testRate*2, 0.05, 3)
	tone := utils.GenerateSineWave(testRate*2, testRate, 440, 0.5)
	for i := 0; i < testRate/2; i++ {
		tone[i] = 0
	}
	return audio.NewBuffer(utils.Mix(noise, tone), testRate)
}

func TestEstimateNoiseProfile(t *testing.T) {
	buf := noisySpeechLike()

	profile, err := EstimateNoiseProfile(buf, 0.5, testFFT, testHop, stft.Hann)
	require.NoError(t, err)
	assert.Len(t, profile, testFFT/2+1)
	for _, v := range profile {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	// The lead-in holds no tone, so the 440 Hz bin is not dominant.
	toneBin := int(math.Round(440.0 * testFFT / testRate))
	assert.Less(t, profile[toneBin], 10*profile[toneBin+20])

	// A duration longer than the buffer uses the whole buffer.
	whole, err := EstimateNoiseProfile(buf, 100, testFFT, testHop, stft.Hann)
	require.NoError(t, err)
	assert.Greater(t, whole[toneBin], profile[toneBin])
}

func TestEstimateNoiseProfileErrors(t *testing.T) {
	buf := noisySpeechLike()

	_, err := EstimateNoiseProfile(buf, 0, testFFT, testHop, stft.Hann)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = EstimateNoiseProfile(buf, 0.5, 511, testHop, stft.Hann)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = EstimateNoiseProfile(audio.Buffer{SampleRate: testRate}, 0.5, testFFT, testHop, stft.Hann)
	assert.ErrorIs(t, err, audio.ErrEmptyBuffer)
}

func TestSubtractFloorAndPhase(t *testing.T) {
	buf := noisySpeechLike()
	spec, err := stft.Forward(buf.Samples, testFFT, testHop, stft.Hann)
	require.NoError(t, err)
	profile, err := EstimateNoiseProfile(buf, 0.5, testFFT, testHop, stft.Hann)
	require.NoError(t, err)

	opts := SubtractionOptions{OverSubtraction: 1.5, SpectralFloor: 0.01}
	out, err := Subtract(spec, profile, opts)
	require.NoError(t, err)
	require.Equal(t, spec.NumBins(), out.NumBins())
	require.Equal(t, spec.NumFrames(), out.NumFrames())

	for k := range spec.Bins {
		for f, c := range spec.Bins[k] {
			in := cmplx.Abs(c)
			got := cmplx.Abs(out.Bins[k][f])
			assert.GreaterOrEqual(t, got, opts.SpectralFloor*in-1e-12)
			assert.LessOrEqual(t, got, in+1e-12)
			if in > 1e-9 {
				assert.InDelta(t, cmplx.Phase(c), cmplx.Phase(out.Bins[k][f]), 1e-9)
			}
		}
	}

	// Input spectrogram untouched.
	again, err := stft.Forward(buf.Samples, testFFT, testHop, stft.Hann)
	require.NoError(t, err)
	assert.Equal(t, again.Bins[10][10], spec.Bins[10][10])
}

func TestSubtractErrors(t *testing.T) {
	spec, err := stft.Forward(make([]float64, 1024), testFFT, testHop, stft.Hann)
	require.NoError(t, err)

	_, err = Subtract(spec, make(NoiseProfile, 3), SubtractionOptions{OverSubtraction: 1, SpectralFloor: 0.01})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Subtract(spec, make(NoiseProfile, spec.NumBins()), SubtractionOptions{OverSubtraction: 1, SpectralFloor: 2})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSubtractMagnitude(t *testing.T) {
	opts := SubtractionOptions{OverSubtraction: 2, SpectralFloor: 0.1}
	assert.Equal(t, 6.0, SubtractMagnitude(10, 2, opts))
	assert.Equal(t, 1.0, SubtractMagnitude(10, 20, opts))
}

func TestWienerGainRange(t *testing.T) {
	tests := []struct {
		power, noise float64
	}{
		{0, 0},
		{0, 1},
		{1, 1},
		{2, 1},
		{1e6, 1},
		{1e30, 0},
		{math.MaxFloat64, 1e-300},
		{math.MaxFloat64, 1},
		{math.MaxFloat64, 0},
		{math.Inf(1), 1},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		g := WienerGain(tt.power, tt.noise)
		assert.False(t, math.IsNaN(g), "power=%g noise=%g", tt.power, tt.noise)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.Less(t, g, 1.0)
	}
	assert.InDelta(t, 0.5, WienerGain(2, 1), 1e-9)
	assert.Greater(t, WienerGain(math.MaxFloat64, 1), 0.999)
}

func TestWienerLoudCellsStayFinite(t *testing.T) {
	spec, err := stft.Forward(utils.GenerateNoise(testRate, 0.01, 5), testFFT, testHop, stft.Hann)
	require.NoError(t, err)
	last := spec.NumFrames() - 1
	for k := range spec.Bins {
		spec.Bins[k][last] = complex(1e200, 1e200)
	}

	out, err := Wiener(spec, testRate, testHop, 0.1)
	require.NoError(t, err)
	for k, row := range out.Bins {
		for _, c := range row {
			require.False(t, cmplx.IsNaN(c), "bin %d", k)
		}
		assert.Greater(t, cmplx.Abs(row[last]), 1e199)
	}
}

func TestWiener(t *testing.T) {
	buf := noisySpeechLike()
	spec, err := stft.Forward(buf.Samples, testFFT, testHop, stft.Hann)
	require.NoError(t, err)

	psd, err := NoisePSD(spec, testRate, testHop, DefaultNoiseSeconds)
	require.NoError(t, err)
	assert.Len(t, psd, spec.NumBins())

	out, err := Wiener(spec, testRate, testHop, DefaultNoiseSeconds)
	require.NoError(t, err)

	for k := range spec.Bins {
		for f := range spec.Bins[k] {
			assert.LessOrEqual(t, cmplx.Abs(out.Bins[k][f]), cmplx.Abs(spec.Bins[k][f])+1e-12)
		}
	}

	_, err = NoisePSD(spec, 0, testHop, DefaultNoiseSeconds)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNoisePSDUsesAllFramesWhenShort(t *testing.T) {
	// 0.1 s of audio has fewer frames than the 0.5 s lead-in.
	samples := utils.GenerateNoise(testRate/10, 0.1, 9)
	spec, err := stft.Forward(samples, testFFT, testHop, stft.Hann)
	require.NoError(t, err)

	psd, err := NoisePSD(spec, testRate, testHop, DefaultNoiseSeconds)
	require.NoError(t, err)

	var want float64
	for _, c := range spec.Bins[5] {
		want += real(c)*real(c) + imag(c)*imag(c)
	}
	want /= float64(spec.NumFrames())
	assert.InDelta(t, want, psd[5], 1e-9)
}

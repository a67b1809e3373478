// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"denoise/internal/audio"
	"denoise/internal/stft"
)

// NoiseProfile is the mean STFT magnitude per frequency bin of a stretch of
// audio assumed to contain only noise. Treat it as read-only.
type NoiseProfile []float64

// EstimateNoiseProfile averages the STFT magnitude of the leading duration
// seconds of buf. If buf is shorter than duration the whole buffer is used.
// No voice activity detection is performed, so speech in the lead-in inflates
// the estimate.
func EstimateNoiseProfile(buf audio.Buffer, duration float64, fftSize, hopSize int, w stft.Window) (NoiseProfile, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: noise duration %.3f must be positive", ErrInvalidParameter, duration)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	n := min(len(buf.Samples), int(duration*float64(buf.SampleRate)))
	if n < 1 {
		n = 1
	}

	mag, err := stft.Spectrum(buf.Samples[:n], fftSize, hopSize, w)
	if err != nil {
		return nil, err
	}

	profile := make(NoiseProfile, len(mag))
	for k, row := range mag {
		profile[k] = stat.Mean(row, nil)
	}
	return profile, nil
}

// SPDX-License-Identifier: MIT

// Package stft implements the short-time Fourier transform used by the
// spectral denoising methods and its weighted overlap-add inverse.
//
// Frames are centred: the signal is padded with fftSize/2 zeros on both sides
// so frame t is centred on sample t*hopSize, which gives 1 + len/hopSize
// frames. A spectrogram is laid out as [bin][frame] with fftSize/2+1 bins.
package stft

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidParameter is returned for unusable transform sizes.
var ErrInvalidParameter = errors.New("invalid parameter")

// windowSumFloor is the smallest squared-window sum the inverse divides by.
// Positions below it are left unscaled.
const windowSumFloor = 1.1754944e-38

// Spectrogram is a complex time-frequency matrix indexed [bin][frame].
type Spectrogram struct {
	FFTSize int
	Bins    [][]complex128
}

// NumBins returns fftSize/2+1.
func (s *Spectrogram) NumBins() int {
	return len(s.Bins)
}

// NumFrames returns the number of analysis frames.
func (s *Spectrogram) NumFrames() int {
	if len(s.Bins) == 0 {
		return 0
	}
	return len(s.Bins[0])
}

// Magnitude returns |X| for every cell.
func (s *Spectrogram) Magnitude() [][]float64 {
	return s.mapCells(cmplx.Abs)
}

// Phase returns the angle of every cell in (-pi, pi].
func (s *Spectrogram) Phase() [][]float64 {
	return s.mapCells(cmplx.Phase)
}

// Power returns |X|^2 for every cell.
func (s *Spectrogram) Power() [][]float64 {
	return s.mapCells(func(c complex128) float64 {
		re, im := real(c), imag(c)
		return re*re + im*im
	})
}

// Clone returns a deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	out := &Spectrogram{FFTSize: s.FFTSize, Bins: make([][]complex128, len(s.Bins))}
	for k, row := range s.Bins {
		out.Bins[k] = append([]complex128(nil), row...)
	}
	return out
}

func (s *Spectrogram) mapCells(f func(complex128) float64) [][]float64 {
	out := make([][]float64, len(s.Bins))
	for k, row := range s.Bins {
		out[k] = make([]float64, len(row))
		for t, c := range row {
			out[k][t] = f(c)
		}
	}
	return out
}

// Combine builds a spectrogram from magnitude and phase matrices of the same
// [bin][frame] shape.
func Combine(fftSize int, mag, phase [][]float64) (*Spectrogram, error) {
	if len(mag) != fftSize/2+1 || len(phase) != len(mag) {
		return nil, fmt.Errorf("%w: expected %d bins, got magnitude %d phase %d",
			ErrInvalidParameter, fftSize/2+1, len(mag), len(phase))
	}
	out := &Spectrogram{FFTSize: fftSize, Bins: make([][]complex128, len(mag))}
	for k := range mag {
		if len(mag[k]) != len(phase[k]) {
			return nil, fmt.Errorf("%w: bin %d has %d magnitudes and %d phases",
				ErrInvalidParameter, k, len(mag[k]), len(phase[k]))
		}
		out.Bins[k] = make([]complex128, len(mag[k]))
		for t := range mag[k] {
			out.Bins[k][t] = cmplx.Rect(mag[k][t], phase[k][t])
		}
	}
	return out, nil
}

// ValidateSizes checks an fftSize/hopSize pair.
func ValidateSizes(fftSize, hopSize int) error {
	switch {
	case fftSize < 2:
		return fmt.Errorf("%w: fft size %d must be at least 2", ErrInvalidParameter, fftSize)
	case fftSize%2 != 0:
		return fmt.Errorf("%w: fft size %d must be even", ErrInvalidParameter, fftSize)
	case hopSize <= 0:
		return fmt.Errorf("%w: hop size %d must be positive", ErrInvalidParameter, hopSize)
	case hopSize >= fftSize:
		return fmt.Errorf("%w: hop size %d must be smaller than fft size %d", ErrInvalidParameter, hopSize, fftSize)
	}
	return nil
}

// NumFrames returns the frame count Forward produces for n samples.
func NumFrames(n, hopSize int) int {
	return 1 + n/hopSize
}

// BinFrequency returns the centre frequency in Hz of bin k.
func BinFrequency(k, fftSize, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(fftSize)
}

// workspace holds the reusable FFT plan and frame buffers for one transform.
type workspace struct {
	fft    *fourier.FFT
	window []float64
	frame  []float64
	coeffs []complex128
}

func newWorkspace(fftSize int, w Window) *workspace {
	return &workspace{
		fft:    fourier.NewFFT(fftSize),
		window: w.Coefficients(fftSize),
		frame:  make([]float64, fftSize),
		coeffs: make([]complex128, fftSize/2+1),
	}
}

// Forward computes the centred STFT of samples.
func Forward(samples []float64, fftSize, hopSize int, w Window) (*Spectrogram, error) {
	if err := ValidateSizes(fftSize, hopSize); err != nil {
		return nil, err
	}

	pad := fftSize / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	frames := NumFrames(len(samples), hopSize)
	bins := fftSize/2 + 1
	ws := newWorkspace(fftSize, w)

	spec := &Spectrogram{FFTSize: fftSize, Bins: make([][]complex128, bins)}
	for k := range spec.Bins {
		spec.Bins[k] = make([]complex128, frames)
	}

	for t := 0; t < frames; t++ {
		start := t * hopSize
		for i := range ws.frame {
			ws.frame[i] = padded[start+i] * ws.window[i]
		}
		ws.fft.Coefficients(ws.coeffs, ws.frame)
		for k, c := range ws.coeffs {
			spec.Bins[k][t] = c
		}
	}

	return spec, nil
}

// Inverse reconstructs a signal from spec by weighted overlap-add. When
// length >= 0 the output is truncated or zero padded to exactly length
// samples, otherwise the centre padding is simply removed.
func Inverse(spec *Spectrogram, hopSize int, w Window, length int) ([]float64, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spectrogram", ErrInvalidParameter)
	}
	fftSize := spec.FFTSize
	if err := ValidateSizes(fftSize, hopSize); err != nil {
		return nil, err
	}
	if spec.NumBins() != fftSize/2+1 {
		return nil, fmt.Errorf("%w: spectrogram has %d bins, fft size %d needs %d",
			ErrInvalidParameter, spec.NumBins(), fftSize, fftSize/2+1)
	}

	frames := spec.NumFrames()
	ws := newWorkspace(fftSize, w)
	total := fftSize + hopSize*(frames-1)
	if frames == 0 {
		total = 0
	}
	y := make([]float64, total)
	wsum := make([]float64, total)

	scale := 1 / float64(fftSize)
	for t := 0; t < frames; t++ {
		for k := range ws.coeffs {
			ws.coeffs[k] = spec.Bins[k][t]
		}
		ws.fft.Sequence(ws.frame, ws.coeffs)

		start := t * hopSize
		for i, v := range ws.frame {
			win := ws.window[i]
			y[start+i] += v * scale * win
			wsum[start+i] += win * win
		}
	}

	for i := range y {
		if wsum[i] > windowSumFloor {
			y[i] /= wsum[i]
		}
	}

	pad := fftSize / 2
	if length >= 0 {
		out := make([]float64, length)
		if pad < len(y) {
			copy(out, y[pad:])
		}
		return out, nil
	}

	end := len(y) - pad
	if end <= pad {
		return []float64{}, nil
	}
	out := make([]float64, end-pad)
	copy(out, y[pad:end])
	return out, nil
}

// Spectrum is a convenience wrapper returning Forward's magnitude alone.
func Spectrum(samples []float64, fftSize, hopSize int, w Window) ([][]float64, error) {
	spec, err := Forward(samples, fftSize, hopSize, w)
	if err != nil {
		return nil, err
	}
	return spec.Magnitude(), nil
}

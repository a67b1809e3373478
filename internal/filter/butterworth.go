// SPDX-License-Identifier: MIT
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrInvalidParameter is returned for unusable filter orders, rates or Q.
	ErrInvalidParameter = errors.New("invalid filter parameter")
	// ErrInvalidBand is returned when the low cutoff is not below the high one.
	ErrInvalidBand = errors.New("invalid band")
)

// BandError reports the offending cutoffs after clamping. It matches
// ErrInvalidBand with errors.Is.
type BandError struct {
	Low, High float64
}

func (e *BandError) Error() string {
	return fmt.Sprintf("invalid band: lowcut (%.1f Hz) must be below highcut (%.1f Hz)", e.Low, e.High)
}

func (e *BandError) Unwrap() error {
	return ErrInvalidBand
}

// Mains hum defaults.
const (
	DefaultNotchFreq = 50.0
	DefaultNotchQ    = 30.0
	DefaultOrder     = 5

	mainsLow  = 45.0
	mainsHigh = 55.0
)

// ButterworthBandpass designs an order-N digital Butterworth band-pass with
// edges low and high given as fractions of the Nyquist frequency (0, 1).
// The result has N second-order sections.
func ButterworthBandpass(order int, low, high float64) (Cascade, error) {
	if order <= 0 {
		return nil, fmt.Errorf("%w: order %d must be positive", ErrInvalidParameter, order)
	}
	if low <= 0 || high >= 1 || low >= high {
		return nil, fmt.Errorf("%w: normalised edges %.4f..%.4f must satisfy 0 < low < high < 1",
			ErrInvalidParameter, low, high)
	}

	// Pre-warp for the bilinear transform at fs = 2.
	const fs2 = 4.0
	wl := fs2 * math.Tan(math.Pi*low/2)
	wh := fs2 * math.Tan(math.Pi*high/2)
	bw := wh - wl
	w0sq := wl * wh

	toZ := func(s complex128) complex128 {
		return (fs2 + s) / (fs2 - s)
	}

	// Band-pass poles come in pairs per prototype pole p:
	// the roots of s^2 - p*bw*s + w0^2.
	bandPoles := func(p complex128) (complex128, complex128) {
		half := p * complex(bw/2, 0)
		d := cmplx.Sqrt(half*half - complex(w0sq, 0))
		return half + d, half - d
	}

	var sections Cascade
	gainDen := complex(1, 0)
	addSection := func(z1, z2 complex128) {
		sections = append(sections, Biquad{
			B0: 1, B1: 0, B2: -1,
			A1: -real(z1 + z2),
			A2: real(z1 * z2),
		})
	}

	for k := 0; k < order; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		p := cmplx.Exp(complex(0, theta))

		switch {
		case imag(p) > 1e-12:
			// The conjugate prototype pole yields the conjugate band poles.
			s1, s2 := bandPoles(p)
			gainDen *= (fs2 - s1) * (fs2 - cmplx.Conj(s1)) * (fs2 - s2) * (fs2 - cmplx.Conj(s2))
			z1, z2 := toZ(s1), toZ(s2)
			addSection(z1, cmplx.Conj(z1))
			addSection(z2, cmplx.Conj(z2))
		case math.Abs(imag(p)) <= 1e-12:
			// Real pole at -1 for odd orders.
			s1, s2 := bandPoles(complex(-1, 0))
			gainDen *= (fs2 - s1) * (fs2 - s2)
			addSection(toZ(s1), toZ(s2))
		}
	}

	// Analog gain bw^N, then the bilinear correction prod(fs2 - zeros)/prod(fs2 - poles)
	// with N zeros at the origin.
	gain := math.Pow(bw, float64(order)) * real(complex(math.Pow(fs2, float64(order)), 0)/gainDen)
	sections[0].B0 *= gain
	sections[0].B1 *= gain
	sections[0].B2 *= gain

	return sections, nil
}

// NotchFilter designs a second-order IIR notch at w0 (fraction of Nyquist)
// with quality factor q. The -3 dB bandwidth is w0/q.
func NotchFilter(w0, q float64) (Biquad, error) {
	if w0 <= 0 || w0 >= 1 {
		return Biquad{}, fmt.Errorf("%w: notch frequency %.4f must be in (0, 1)", ErrInvalidParameter, w0)
	}
	if q <= 0 {
		return Biquad{}, fmt.Errorf("%w: quality factor %.2f must be positive", ErrInvalidParameter, q)
	}

	bw := math.Pi * w0 / q
	w := math.Pi * w0
	beta := math.Tan(bw / 2)
	gain := 1 / (1 + beta)
	c := math.Cos(w)

	return Biquad{
		B0: gain,
		B1: -2 * c * gain,
		B2: gain,
		A1: -2 * gain * c,
		A2: 2*gain - 1,
	}, nil
}

// Bandpass applies a zero-phase Butterworth band-pass to samples. Cutoffs are
// clamped to nyquist-1 Hz before the band is checked.
func Bandpass(samples []float64, sampleRate int, lowcut, highcut float64, order int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}
	low, high := ClampBand(sampleRate, lowcut, highcut)
	if low >= high {
		return nil, &BandError{Low: low, High: high}
	}
	if low <= 0 {
		return nil, fmt.Errorf("%w: lowcut %.1f Hz must be positive", ErrInvalidParameter, low)
	}

	nyquist := 0.5 * float64(sampleRate)
	sos, err := ButterworthBandpass(order, low/nyquist, high/nyquist)
	if err != nil {
		return nil, err
	}
	return sos.FiltFilt(samples), nil
}

// Notch applies a zero-phase notch at freq Hz.
func Notch(samples []float64, sampleRate int, freq, q float64) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}
	nq, err := NotchFilter(freq/(0.5*float64(sampleRate)), q)
	if err != nil {
		return nil, err
	}
	return Cascade{nq}.FiltFilt(samples), nil
}

// ClampBand limits both cutoffs to nyquist-1 Hz.
func ClampBand(sampleRate int, lowcut, highcut float64) (float64, float64) {
	limit := 0.5*float64(sampleRate) - 1
	return math.Min(lowcut, limit), math.Min(highcut, limit)
}

// OverlapsMains reports whether [low, high] touches the 45-55 Hz hum region.
func OverlapsMains(low, high float64) bool {
	return low <= mainsHigh && high >= mainsLow
}

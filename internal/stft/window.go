// SPDX-License-Identifier: MIT
package stft

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// Window selects the analysis/synthesis window applied to each frame.
type Window int

// Available windows. Hann is the default and the only one the denoising
// methods use.
const (
	Hann Window = iota
	Hamming
	Blackman
)

// String returns the canonical lower-case name of the window.
func (w Window) String() string {
	switch w {
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// ParseWindow converts a case-insensitive name to a Window. Unknown names
// return Hann together with an error.
func ParseWindow(name string) (Window, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	default:
		return Hann, fmt.Errorf("%w: unknown window %q", ErrInvalidParameter, name)
	}
}

// Coefficients returns the periodic (DFT-even) window of length n, i.e. the
// first n points of the symmetric window of length n+1.
func (w Window) Coefficients(n int) []float64 {
	coeffs := make([]float64, n+1)
	// Window funcs multiply in place, so start from ones.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	default:
		window.Hann(coeffs)
	}
	return coeffs[:n]
}

// SPDX-License-Identifier: MIT

// Package spectral implements the STFT-domain denoising stages: noise profile
// estimation, magnitude spectral subtraction and the Wiener filter.
package spectral

import "denoise/internal/stft"

// ErrInvalidParameter is shared with the stft package so callers can test
// either layer with a single errors.Is.
var ErrInvalidParameter = stft.ErrInvalidParameter

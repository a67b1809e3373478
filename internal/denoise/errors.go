// SPDX-License-Identifier: MIT
package denoise

import (
	"errors"
	"fmt"

	"denoise/internal/audio"
	"denoise/internal/filter"
	"denoise/internal/noisesuppression"
	"denoise/internal/stft"
)

var (
	// ErrInvalidParameter covers bad sizes, rates, ranges and empty input.
	// It is the same value the stft and spectral packages return.
	ErrInvalidParameter = stft.ErrInvalidParameter
	// ErrInvalidBand is returned when the clamped lowcut is not below highcut.
	ErrInvalidBand = filter.ErrInvalidBand
	// ErrUnknownMethod is returned for an unrecognised method name.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrDelegateFailure wraps errors from the noise suppression delegate.
	ErrDelegateFailure = noisesuppression.ErrDelegateFailure
)

// classify makes lower-level parameter errors match ErrInvalidParameter.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidParameter), errors.Is(err, ErrInvalidBand), errors.Is(err, ErrDelegateFailure):
		return err
	case errors.Is(err, filter.ErrInvalidParameter),
		errors.Is(err, audio.ErrEmptyBuffer),
		errors.Is(err, audio.ErrInvalidSampleRate):
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	default:
		return err
	}
}

// ErrorType returns a short label for metrics and logs.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidBand):
		return "invalid_band"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, ErrDelegateFailure):
		return "delegate_failure"
	default:
		return "internal"
	}
}

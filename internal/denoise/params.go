// SPDX-License-Identifier: MIT
package denoise

import (
	"fmt"

	"denoise/internal/filter"
	"denoise/internal/noisesuppression"
	"denoise/internal/spectral"
	"denoise/internal/stft"
)

// BandpassParams configures the band-pass stage and its mains notch.
type BandpassParams struct {
	Order   int    `yaml:"order" json:"order"`
	Profile string `yaml:"profile" json:"profile"`
	// LowCut and HighCut override the profile edges when positive.
	LowCut  float64 `yaml:"lowcut" json:"lowcut"`
	HighCut float64 `yaml:"highcut" json:"highcut"`
	// NotchFreq of zero disables the notch.
	NotchFreq float64 `yaml:"notch_freq" json:"notch_freq"`
	NotchQ    float64 `yaml:"notch_q" json:"notch_q"`
}

func (p BandpassParams) Validate() error {
	if p.Order <= 0 {
		return fmt.Errorf("%w: band-pass order %d must be positive", ErrInvalidParameter, p.Order)
	}
	if p.LowCut < 0 || p.HighCut < 0 {
		return fmt.Errorf("%w: cutoffs must not be negative", ErrInvalidParameter)
	}
	if _, err := filter.Profile(p.Profile); err != nil {
		return classify(err)
	}
	if p.NotchFreq < 0 {
		return fmt.Errorf("%w: notch frequency %.1f must not be negative", ErrInvalidParameter, p.NotchFreq)
	}
	if p.NotchFreq > 0 && p.NotchQ <= 0 {
		return fmt.Errorf("%w: notch Q %.2f must be positive", ErrInvalidParameter, p.NotchQ)
	}
	return nil
}

// SubtractionParams configures spectral subtraction.
type SubtractionParams struct {
	FFTSize         int     `yaml:"n_fft" json:"n_fft"`
	HopSize         int     `yaml:"hop_length" json:"hop_length"`
	OverSubtraction float64 `yaml:"alpha" json:"alpha"`
	SpectralFloor   float64 `yaml:"beta" json:"beta"`
	// NoiseDuration is the lead-in, in seconds, used for the noise profile.
	NoiseDuration float64 `yaml:"noise_duration" json:"noise_duration"`
}

func (p SubtractionParams) Validate() error {
	if err := stft.ValidateSizes(p.FFTSize, p.HopSize); err != nil {
		return err
	}
	if p.NoiseDuration <= 0 {
		return fmt.Errorf("%w: noise duration %.3f must be positive", ErrInvalidParameter, p.NoiseDuration)
	}
	return p.options().Validate()
}

func (p SubtractionParams) options() spectral.SubtractionOptions {
	return spectral.SubtractionOptions{
		OverSubtraction: p.OverSubtraction,
		SpectralFloor:   p.SpectralFloor,
	}
}

// WienerParams configures the Wiener filter. Smoothing is carried for
// configuration compatibility and is not applied.
type WienerParams struct {
	FFTSize       int     `yaml:"n_fft" json:"n_fft"`
	HopSize       int     `yaml:"hop_length" json:"hop_length"`
	Smoothing     float64 `yaml:"smoothing" json:"smoothing"`
	NoiseDuration float64 `yaml:"noise_duration" json:"noise_duration"`
}

func (p WienerParams) Validate() error {
	if err := stft.ValidateSizes(p.FFTSize, p.HopSize); err != nil {
		return err
	}
	if p.Smoothing < 0 || p.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing %.3f must be in [0, 1]", ErrInvalidParameter, p.Smoothing)
	}
	if p.NoiseDuration <= 0 {
		return fmt.Errorf("%w: noise duration %.3f must be positive", ErrInvalidParameter, p.NoiseDuration)
	}
	return nil
}

// SuppressionParams configures the noise suppression delegate call.
type SuppressionParams struct {
	Stationary    bool    `yaml:"stationary" json:"stationary"`
	PropDecrease  float64 `yaml:"prop_decrease" json:"prop_decrease"`
	FFTSize       int     `yaml:"n_fft" json:"n_fft"`
	HopSize       int     `yaml:"hop_length" json:"hop_length"`
	NoiseDuration float64 `yaml:"noise_duration" json:"noise_duration"`
}

func (p SuppressionParams) Validate() error {
	if err := stft.ValidateSizes(p.FFTSize, p.HopSize); err != nil {
		return err
	}
	if p.PropDecrease < 0 || p.PropDecrease > 1 {
		return fmt.Errorf("%w: prop_decrease %.3f must be in [0, 1]", ErrInvalidParameter, p.PropDecrease)
	}
	if p.NoiseDuration <= 0 {
		return fmt.Errorf("%w: noise duration %.3f must be positive", ErrInvalidParameter, p.NoiseDuration)
	}
	return nil
}

func (p SuppressionParams) options() noisesuppression.Options {
	return noisesuppression.Options{
		Stationary:   p.Stationary,
		PropDecrease: p.PropDecrease,
		FFTSize:      p.FFTSize,
		HopSize:      p.HopSize,
	}
}

// AdaptiveParams holds the noise ratio thresholds that pick a branch.
type AdaptiveParams struct {
	LowThreshold  float64 `yaml:"low_threshold" json:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold" json:"high_threshold"`
}

func (p AdaptiveParams) Validate() error {
	if p.LowThreshold < 0 || p.HighThreshold > 1 || p.LowThreshold > p.HighThreshold {
		return fmt.Errorf("%w: thresholds %.3f/%.3f must satisfy 0 <= low <= high <= 1",
			ErrInvalidParameter, p.LowThreshold, p.HighThreshold)
	}
	return nil
}

// Params holds the configuration of every method.
type Params struct {
	Bandpass    BandpassParams    `yaml:"bandpass" json:"bandpass"`
	Subtraction SubtractionParams `yaml:"spectral_subtraction" json:"spectral_subtraction"`
	Wiener      WienerParams      `yaml:"wiener" json:"wiener"`
	Suppression SuppressionParams `yaml:"noisereduce" json:"noisereduce"`
	Adaptive    AdaptiveParams    `yaml:"adaptive" json:"adaptive"`
}

// DefaultParams returns the stock tuning for every method.
func DefaultParams() Params {
	ns := noisesuppression.DefaultOptions()
	return Params{
		Bandpass: BandpassParams{
			Order:     filter.DefaultOrder,
			Profile:   filter.DefaultProfile,
			NotchFreq: filter.DefaultNotchFreq,
			NotchQ:    filter.DefaultNotchQ,
		},
		Subtraction: SubtractionParams{
			FFTSize:         2048,
			HopSize:         512,
			OverSubtraction: 1.5,
			SpectralFloor:   0.01,
			NoiseDuration:   0.5,
		},
		Wiener: WienerParams{
			FFTSize:       2048,
			HopSize:       512,
			Smoothing:     0.98,
			NoiseDuration: 0.5,
		},
		Suppression: SuppressionParams{
			Stationary:    ns.Stationary,
			PropDecrease:  ns.PropDecrease,
			FFTSize:       ns.FFTSize,
			HopSize:       ns.HopSize,
			NoiseDuration: 0.5,
		},
		Adaptive: AdaptiveParams{
			LowThreshold:  0.05,
			HighThreshold: 0.15,
		},
	}
}

// Validate checks every method's parameters. Cutoff order is not checked
// here: it depends on the sample rate and is reported as ErrInvalidBand.
func (p Params) Validate() error {
	for _, v := range []interface{ Validate() error }{
		p.Bandpass, p.Subtraction, p.Wiener, p.Suppression, p.Adaptive,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

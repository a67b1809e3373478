// SPDX-License-Identifier: MIT

// Package evaluate scores denoised audio against a clean reference.
package evaluate

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// epsilon keeps every ratio finite.
const epsilon = 1e-10

// ErrInvalidInput is returned for empty signals or a non-positive rate.
var ErrInvalidInput = errors.New("invalid evaluation input")

// Metrics compares one denoised signal with the clean reference.
type Metrics struct {
	MSE             float64 `json:"mse"`
	SNR             float64 `json:"snr_db"`
	PSNR            float64 `json:"psnr_db"`
	SISNR           float64 `json:"si_snr_db"`
	SNRImprovement  float64 `json:"snr_improvement_db"`
	Length          int     `json:"length_samples"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Compare scores denoised against clean. All signals are cut to the shortest
// length. The SNR improvement is the denoised SNR minus the SNR of noisy;
// with a nil noisy it is zero.
func Compare(clean, noisy, denoised []float64, sampleRate int) (Metrics, error) {
	if sampleRate <= 0 {
		return Metrics{}, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	n := min(len(clean), len(denoised))
	if noisy != nil {
		n = min(n, len(noisy))
	}
	if n == 0 {
		return Metrics{}, fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}
	clean, denoised = clean[:n], denoised[:n]

	mse := meanSquaredError(clean, denoised)
	snr := SNR(clean, denoised)
	peak := math.Max(math.Abs(floats.Max(clean)), math.Abs(floats.Min(clean)))

	m := Metrics{
		MSE:             mse,
		SNR:             snr,
		PSNR:            10 * math.Log10(peak*peak/(mse+epsilon)),
		SISNR:           SISNR(clean, denoised),
		Length:          n,
		DurationSeconds: float64(n) / float64(sampleRate),
	}
	if noisy != nil {
		m.SNRImprovement = snr - SNR(clean, noisy[:n])
	}
	return m, nil
}

// SNR returns 10*log10(power(clean) / power(clean-estimate)) in dB.
func SNR(clean, estimate []float64) float64 {
	signal := floats.Dot(clean, clean) / float64(len(clean))
	return 10 * math.Log10(signal/(meanSquaredError(clean, estimate)+epsilon))
}

// SISNR is the scale-invariant SNR: estimate is projected onto clean and the
// residual is treated as noise.
func SISNR(clean, estimate []float64) float64 {
	alpha := floats.Dot(clean, estimate) / (floats.Dot(clean, clean) + epsilon)

	target := make([]float64, len(clean))
	floats.ScaleTo(target, alpha, clean)
	residual := make([]float64, len(estimate))
	floats.SubTo(residual, estimate, target)

	return 10 * math.Log10(floats.Dot(target, target)/(floats.Dot(residual, residual)+epsilon)+epsilon)
}

func meanSquaredError(a, b []float64) float64 {
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	return floats.Dot(diff, diff) / float64(len(a))
}

// MethodResult is the evaluation of one method.
type MethodResult struct {
	Method      string        `json:"method"`
	Description string        `json:"description"`
	Metrics     Metrics       `json:"metrics"`
	Elapsed     time.Duration `json:"processing_time_ns"`
	Error       string        `json:"error,omitempty"`
}

// Summary collects the results for one clean/noisy pair.
type Summary struct {
	CleanFile  string         `json:"clean_file"`
	NoisyFile  string         `json:"noisy_file"`
	SampleRate int            `json:"sample_rate"`
	Duration   float64        `json:"duration_seconds"`
	Date       time.Time      `json:"evaluation_date"`
	Results    []MethodResult `json:"methods"`
}

// Ranked returns the successful results sorted by SNR improvement, best first.
func (s Summary) Ranked() []MethodResult {
	var ok []MethodResult
	for _, r := range s.Results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}
	slices.SortStableFunc(ok, func(a, b MethodResult) int {
		switch {
		case a.Metrics.SNRImprovement > b.Metrics.SNRImprovement:
			return -1
		case a.Metrics.SNRImprovement < b.Metrics.SNRImprovement:
			return 1
		default:
			return 0
		}
	})
	return ok
}

// Best returns the method with the largest SNR improvement.
func (s Summary) Best() (MethodResult, bool) {
	ranked := s.Ranked()
	if len(ranked) == 0 {
		return MethodResult{}, false
	}
	return ranked[0], true
}

// WriteText writes a plain-text table of the ranked results.
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	line := strings.Repeat("=", 70)

	fmt.Fprintf(&b, "%s\nDENOISING EVALUATION\n%s\n\n", line, line)
	fmt.Fprintf(&b, "Noisy file:   %s\n", s.NoisyFile)
	fmt.Fprintf(&b, "Clean file:   %s\n", s.CleanFile)
	fmt.Fprintf(&b, "Sample rate:  %d Hz\n", s.SampleRate)
	fmt.Fprintf(&b, "Duration:     %.2f s\n\n", s.Duration)
	fmt.Fprintf(&b, "%-22s %10s %10s %10s %10s\n", "METHOD", "SNR+ dB", "SI-SNR dB", "PSNR dB", "TIME s")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 70))

	for _, r := range s.Ranked() {
		fmt.Fprintf(&b, "%-22s %10.2f %10.2f %10.2f %10.3f\n",
			r.Method, r.Metrics.SNRImprovement, r.Metrics.SISNR, r.Metrics.PSNR, r.Elapsed.Seconds())
	}
	for _, r := range s.Results {
		if r.Error != "" {
			fmt.Fprintf(&b, "%-22s failed: %s\n", r.Method, r.Error)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"testing"
)

func formatFloat(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

func tone(n, rate int, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestNormalizeTargetBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},  // Middle
		{0.9, 0.9},  // Default
		{1.0, 1.0},  // Maximum
		{1.5, 1.0},  // Above max
	}

	samples := tone(1600, 16000, 440, 0.25)

	for _, tt := range tests {
		t.Run(formatFloat(tt.input), func(t *testing.T) {
			got := Peak(Normalize(samples, tt.input))

			if absFloat(got-tt.expected) > 0.001 {
				t.Errorf("Normalize peak: got %.3f, want %.3f", got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := tone(4000, 16000, 300, 0.3)

	once := Normalize(samples, DefaultTargetLevel)
	twice := Normalize(once, DefaultTargetLevel)

	for i := range once {
		if absFloat(once[i]-twice[i]) > 1e-12 {
			t.Fatalf("sample %d: %.12f != %.12f", i, once[i], twice[i])
		}
	}
}

func TestNormalizeSilenceAndInputUntouched(t *testing.T) {
	silent := make([]float64, 128)
	out := Normalize(silent, DefaultTargetLevel)
	if len(out) != len(silent) || Peak(out) != 0 {
		t.Errorf("Normalize of silence should return zeros, got peak %.3f", Peak(out))
	}

	in := []float64{0.1, -0.2}
	Normalize(in, 0.9)
	if in[0] != 0.1 || in[1] != -0.2 {
		t.Errorf("Normalize mutated its input: %v", in)
	}
}

func TestTrimSilence(t *testing.T) {
	const rate = 16000
	lead := make([]float64, rate/2)
	body := tone(rate, rate, 440, 0.5)
	tail := make([]float64, rate/2)

	samples := append(append(append([]float64{}, lead...), body...), tail...)

	tests := []struct {
		desc    string
		samples []float64
		check   func(t *testing.T, out []float64)
	}{
		{"Leading and trailing silence", samples, func(t *testing.T, out []float64) {
			if len(out) >= len(samples) {
				t.Errorf("expected trimmed output, got %d of %d samples", len(out), len(samples))
			}
			// Trimming stays within one frame of the tone boundaries.
			if len(out) < len(body) || len(out) > len(body)+2*DefaultTrimFrame {
				t.Errorf("trimmed length %d not near body length %d", len(out), len(body))
			}
		}},
		{"All silence", make([]float64, 4096), func(t *testing.T, out []float64) {
			if len(out) != 4096 {
				t.Errorf("silent input should be returned unchanged, got %d samples", len(out))
			}
		}},
		{"No silence", body, func(t *testing.T, out []float64) {
			if len(out) != len(body) {
				t.Errorf("tone without silence should keep its length, got %d want %d", len(out), len(body))
			}
		}},
		{"Empty", nil, func(t *testing.T, out []float64) {
			if len(out) != 0 {
				t.Errorf("empty input should stay empty")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			out := TrimSilence(tt.samples, DefaultTopDB, DefaultTrimFrame, DefaultTrimHop)
			tt.check(t, out)
		})
	}
}

func BenchmarkNormalize(b *testing.B) {
	values := []float64{0.25, 0.5, 0.9}
	samples := tone(16000, 16000, 440, 0.3)

	for _, v := range values {
		b.Run(formatFloat(v), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for b.Loop() {
				_ = Normalize(samples, v)
			}
		})
	}
}

func BenchmarkTrimSilence(b *testing.B) {
	samples := append(make([]float64, 8000), tone(16000, 16000, 440, 0.5)...)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		_ = TrimSilence(samples, DefaultTopDB, DefaultTrimFrame, DefaultTrimHop)
	}
}

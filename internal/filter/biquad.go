// SPDX-License-Identifier: MIT

// Package filter implements the time-domain filter bank: Butterworth
// band-pass and IIR notch filters expressed as cascaded second-order
// sections, applied forward and backward for zero phase.
package filter

// Biquad is one second-order section with a0 normalised to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// DCGain returns H(1).
func (q Biquad) DCGain() float64 {
	den := 1 + q.A1 + q.A2
	if den == 0 {
		return 0
	}
	return (q.B0 + q.B1 + q.B2) / den
}

// steadyState returns the transposed direct form II state reached after an
// infinitely long unit step.
func (q Biquad) steadyState() [2]float64 {
	g := q.DCGain()
	z2 := q.B2 - q.A2*g
	z1 := q.B1 - q.A1*g + z2
	return [2]float64{z1, z2}
}

// Cascade is a chain of second-order sections applied in order.
type Cascade []Biquad

// Apply runs x through every section starting from state zi (one pair per
// section, nil for rest). x is not modified.
func (c Cascade) Apply(x []float64, zi [][2]float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)

	for s, q := range c {
		var z1, z2 float64
		if zi != nil {
			z1, z2 = zi[s][0], zi[s][1]
		}
		for i, in := range y {
			out := q.B0*in + z1
			z1 = q.B1*in - q.A1*out + z2
			z2 = q.B2*in - q.A2*out
			y[i] = out
		}
	}
	return y
}

// steadyState returns the initial conditions for a unit step through the
// whole cascade. Each section's state is scaled by the DC gain of the
// sections before it.
func (c Cascade) steadyState() [][2]float64 {
	zi := make([][2]float64, len(c))
	scale := 1.0
	for s, q := range c {
		st := q.steadyState()
		zi[s] = [2]float64{st[0] * scale, st[1] * scale}
		scale *= q.DCGain()
	}
	return zi
}

// padLength is the odd-extension length used by FiltFilt.
func (c Cascade) padLength() int {
	return 3 * (2*len(c) + 1)
}

// FiltFilt applies the cascade forward then backward, giving zero phase and
// squared magnitude response. Edges are handled with an odd extension of
// 3*(2*sections+1) samples (capped at len(x)-1) and steady-state initial
// conditions.
func (c Cascade) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 || len(c) == 0 {
		out := make([]float64, n)
		copy(out, x)
		return out
	}

	pad := min(c.padLength(), n-1)
	ext := oddExtend(x, pad)
	zi := c.steadyState()

	y := c.Apply(ext, scaleState(zi, ext[0]))
	reverse(y)
	y = c.Apply(y, scaleState(zi, y[0]))
	reverse(y)

	out := make([]float64, n)
	copy(out, y[pad:pad+n])
	return out
}

func scaleState(zi [][2]float64, v float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for i, z := range zi {
		out[i] = [2]float64{z[0] * v, z[1] * v}
	}
	return out
}

// oddExtend mirrors pad samples around each end point:
// 2*x[0]-x[pad..1], x, 2*x[n-1]-x[n-2..n-1-pad].
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
		ext[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(ext[pad:], x)
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// SPDX-License-Identifier: MIT
package noisesuppression

import "context"

// Dummy returns its input unchanged.
type Dummy struct{}

var _ NoiseSuppression = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{}
}

func (*Dummy) Close() error {
	return nil
}

func (*Dummy) Reduce(_ context.Context, samples []float64, _ int, _ []float64, _ Options) ([]float64, error) {
	out := make([]float64, len(samples))
	copy(out, samples)
	return out, nil
}

// SPDX-License-Identifier: MIT
package noisesuppression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyCopies(t *testing.T) {
	d := NewDummy()
	defer d.Close()

	in := []float64{0.1, -0.2, 0.3}
	out, err := d.Reduce(context.Background(), in, 16000, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0] = 1
	assert.Equal(t, 0.1, in[0])
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.False(t, o.Stationary)
	assert.Equal(t, 0.9, o.PropDecrease)
	assert.Equal(t, 2048, o.FFTSize)
	assert.Equal(t, 512, o.HopSize)
}

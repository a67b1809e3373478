// SPDX-License-Identifier: MIT
package denoise

import (
	"fmt"
	"strings"
)

// Method selects the denoising algorithm.
type Method int

const (
	MethodBandpass Method = iota
	MethodSpectralSubtraction
	MethodWiener
	MethodNoiseReduce
	MethodAdaptive
)

// DefaultMethod is used when no method is requested.
const DefaultMethod = MethodAdaptive

var methodNames = [...]string{
	MethodBandpass:            "bandpass",
	MethodSpectralSubtraction: "spectral_subtraction",
	MethodWiener:              "wiener",
	MethodNoiseReduce:         "noisereduce",
	MethodAdaptive:            "adaptive",
}

var methodDescriptions = [...]string{
	MethodBandpass:            "Band-pass filtering: removes energy outside the speech band",
	MethodSpectralSubtraction: "Spectral subtraction: removes an estimated noise spectrum",
	MethodWiener:              "Wiener filter: per-bin statistical gain from the estimated SNR",
	MethodNoiseReduce:         "Noise suppression delegate: spectral gating or an external service",
	MethodAdaptive:            "Adaptive: band-pass, then more stages as measured noise rises",
}

// Methods lists every method in a stable order.
func Methods() []Method {
	return []Method{MethodBandpass, MethodSpectralSubtraction, MethodWiener, MethodNoiseReduce, MethodAdaptive}
}

func (m Method) valid() bool {
	return m >= MethodBandpass && m <= MethodAdaptive
}

// String returns the wire name of the method.
func (m Method) String() string {
	if !m.valid() {
		return fmt.Sprintf("method(%d)", int(m))
	}
	return methodNames[m]
}

// Description returns a one-line human description.
func (m Method) Description() string {
	if !m.valid() {
		return "Unknown method"
	}
	return methodDescriptions[m]
}

// ParseMethod converts a case-insensitive name to a Method.
func ParseMethod(name string) (Method, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range methodNames {
		if s == n {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so methods can be named
// in YAML and JSON.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

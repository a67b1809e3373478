// SPDX-License-Identifier: MIT
package config

import (
	"fmt"

	"denoise/internal/denoise"
	"denoise/internal/log"
	"denoise/internal/noisesuppression"
	"denoise/internal/noisesuppression/implementations/sidecar"
	"denoise/internal/noisesuppression/implementations/spectralgate"
	"denoise/internal/transport"
)

// ResolvedMethod returns the configured method. Validate guarantees it parses.
func (c *Config) ResolvedMethod() denoise.Method {
	m, err := denoise.ParseMethod(c.Method)
	if err != nil {
		return denoise.DefaultMethod
	}
	return m
}

// Level returns the effective log level. Debug wins over log_level.
func (c *Config) Level() log.LogLevel {
	if c.Debug {
		return log.LevelDebug
	}
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// NewDelegate builds the configured noise suppression backend.
func (c *Config) NewDelegate() (noisesuppression.NoiseSuppression, error) {
	switch c.Delegate.Kind {
	case DelegateDummy:
		return noisesuppression.NewDummy(), nil
	case DelegateSpectralGate:
		return spectralgate.New(), nil
	case DelegateSidecar:
		return sidecar.New(c.Delegate.URL, c.Delegate.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: delegate.kind %q", ErrInvalidConfig, c.Delegate.Kind)
	}
}

// NewTransport builds the progress transport, or nil when none is configured.
func (c *Config) NewTransport() transport.Transport {
	switch c.Transport.Kind {
	case TransportLog:
		return transport.NewLoggingTransport()
	case TransportWebSocket:
		return transport.NewWebSocketTransport(c.Transport.PublishAddr)
	default:
		return nil
	}
}

// NewEngine builds an engine from Params and the configured delegate.
func (c *Config) NewEngine(opts ...denoise.Option) (*denoise.Engine, error) {
	delegate, err := c.NewDelegate()
	if err != nil {
		return nil, err
	}
	return denoise.New(c.Params, delegate, opts...), nil
}

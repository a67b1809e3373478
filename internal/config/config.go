// SPDX-License-Identifier: MIT

// Package config loads the denoiser configuration from YAML, environment
// overrides and built-in defaults.
package config

import (
	"time"

	"denoise/internal/audio"
	"denoise/internal/denoise"
	"denoise/internal/noisesuppression/implementations/sidecar"
)

// Core configuration constants that define the boundaries and defaults.
const (
	DefaultLogLevel = "info"
	DefaultMethod   = "adaptive"
	DefaultWorkers  = 4

	// Delegate kinds.
	DelegateDummy        = "dummy"
	DelegateSidecar      = "sidecar"
	DelegateSpectralGate = "spectralgate"

	// Progress transport kinds.
	TransportNone      = ""
	TransportLog       = "log"
	TransportWebSocket = "websocket"

	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Enable debug logging.
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn" or "error".
	LogJSON  bool   `yaml:"log_json"`  // Emit JSON log lines.

	// TargetSampleRate resamples input before denoising; 0 keeps the file rate.
	TargetSampleRate int    `yaml:"target_sample_rate"`
	Method           string `yaml:"method"`

	Params    denoise.Params      `yaml:"params"`
	Post      denoise.PostProcess `yaml:"post"`
	Output    OutputConfig        `yaml:"output"`
	Batch     BatchConfig         `yaml:"batch"`
	Delegate  DelegateConfig      `yaml:"delegate"`
	Transport TransportConfig     `yaml:"transport"`
	Metrics   MetricsConfig       `yaml:"metrics"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	BitDepth int `yaml:"bit_depth"` // 8, 16, 24 or 32.
}

// BatchConfig controls directory processing.
type BatchConfig struct {
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`
}

// DelegateConfig selects the noise suppression backend.
type DelegateConfig struct {
	Kind    string        `yaml:"kind"`    // dummy, sidecar or spectralgate.
	URL     string        `yaml:"url"`     // Sidecar base URL.
	Timeout time.Duration `yaml:"timeout"` // Sidecar request timeout.
}

// TransportConfig holds settings for publishing batch progress.
type TransportConfig struct {
	Kind        string `yaml:"kind"`         // "", log or websocket.
	PublishAddr string `yaml:"publish_addr"` // WebSocket listen address.
}

// MetricsConfig holds the Prometheus endpoint address. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// NewConfig returns a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Method:   DefaultMethod,
		Params:   denoise.DefaultParams(),
		Post:     denoise.DefaultPostProcess(),
		Output: OutputConfig{
			BitDepth: audio.DefaultBitDepth,
		},
		Batch: BatchConfig{
			Workers:    DefaultWorkers,
			Extensions: []string{".wav"},
		},
		Delegate: DelegateConfig{
			Kind:    DelegateSpectralGate,
			Timeout: sidecar.DefaultTimeout,
		},
		Transport: TransportConfig{
			PublishAddr: "127.0.0.1:8765",
		},
	}
}

// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"denoise/internal/denoise"
	"denoise/internal/log"
	"denoise/pkg/bitint"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"config.yaml", "denoise.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debugf("configuration: loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if _, err := denoise.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("%w: method: %w", ErrInvalidConfig, err)
	}
	if c.TargetSampleRate != 0 && (c.TargetSampleRate < MinSampleRate || c.TargetSampleRate > MaxSampleRate) {
		return fmt.Errorf("%w: target_sample_rate %d outside [%d, %d]",
			ErrInvalidConfig, c.TargetSampleRate, MinSampleRate, MaxSampleRate)
	}

	for name, n := range map[string]int{
		"params.spectral_subtraction.n_fft": c.Params.Subtraction.FFTSize,
		"params.wiener.n_fft":               c.Params.Wiener.FFTSize,
		"params.noisereduce.n_fft":          c.Params.Suppression.FFTSize,
	} {
		if !bitint.IsPowerOfTwo(n) {
			if n <= 1 {
				return fmt.Errorf("%w: %s %d must be a power of two", ErrInvalidConfig, name, n)
			}
			return fmt.Errorf("%w: %s %d must be a power of two (nearest are %d and %d)",
				ErrInvalidConfig, name, n, bitint.PrevPowerOfTwo(n), bitint.NextPowerOfTwo(n))
		}
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: params: %w", ErrInvalidConfig, err)
	}

	if c.Post.Trim && (c.Post.TopDB <= 0 || c.Post.FrameLength <= 0 || c.Post.HopLength <= 0) {
		return fmt.Errorf("%w: post trim needs positive top_db, frame_length and hop_length", ErrInvalidConfig)
	}
	if c.Post.TargetLevel < 0 || c.Post.TargetLevel > 1 {
		return fmt.Errorf("%w: post.target_level %.2f outside [0, 1]", ErrInvalidConfig, c.Post.TargetLevel)
	}

	switch c.Output.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: output.bit_depth %d", ErrInvalidConfig, c.Output.BitDepth)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("%w: batch.workers must be positive", ErrInvalidConfig)
	}

	switch c.Delegate.Kind {
	case DelegateDummy, DelegateSpectralGate:
	case DelegateSidecar:
		if c.Delegate.URL == "" {
			return fmt.Errorf("%w: delegate.url must be set for the sidecar delegate", ErrInvalidConfig)
		}
		if c.Delegate.Timeout <= 0 {
			return fmt.Errorf("%w: delegate.timeout must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: delegate.kind %q", ErrInvalidConfig, c.Delegate.Kind)
	}

	switch c.Transport.Kind {
	case TransportNone, TransportLog:
	case TransportWebSocket:
		if !strings.Contains(c.Transport.PublishAddr, ":") {
			return fmt.Errorf("%w: transport.publish_addr %q appears invalid (missing port?)",
				ErrInvalidConfig, c.Transport.PublishAddr)
		}
	default:
		return fmt.Errorf("%w: transport.kind %q", ErrInvalidConfig, c.Transport.Kind)
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded values.
// Unparseable values are ignored with a warning.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Infof("configuration: Overriding debug from env: %v", bVal)
		} else {
			log.Warnf("configuration: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Infof("configuration: Overriding log_level from env: %s", val)
	}
	// ENV_METHOD
	if val, ok := os.LookupEnv("ENV_METHOD"); ok {
		cfg.Method = val
		log.Infof("configuration: Overriding method from env: %s", val)
	}
	// ENV_TARGET_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_TARGET_SAMPLE_RATE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.TargetSampleRate = iVal
			log.Infof("configuration: Overriding target_sample_rate from env: %d", iVal)
		} else {
			log.Warnf("configuration: Ignoring ENV_TARGET_SAMPLE_RATE=%q: %v", val, err)
		}
	}

	// ENV_BATCH_{...}

	// ENV_BATCH_WORKERS
	if val, ok := os.LookupEnv("ENV_BATCH_WORKERS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Batch.Workers = iVal
			log.Infof("configuration: Overriding batch.workers from env: %d", iVal)
		} else {
			log.Warnf("configuration: Ignoring ENV_BATCH_WORKERS=%q: %v", val, err)
		}
	}

	// ENV_DELEGATE_{...}

	// ENV_DELEGATE_KIND
	if val, ok := os.LookupEnv("ENV_DELEGATE_KIND"); ok {
		cfg.Delegate.Kind = val
		log.Infof("configuration: Overriding delegate.kind from env: %s", val)
	}
	// ENV_DELEGATE_URL
	if val, ok := os.LookupEnv("ENV_DELEGATE_URL"); ok {
		cfg.Delegate.URL = val
		log.Infof("configuration: Overriding delegate.url from env: %s", val)
	}
	// ENV_DELEGATE_TIMEOUT
	if val, ok := os.LookupEnv("ENV_DELEGATE_TIMEOUT"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Delegate.Timeout = dur
			log.Infof("configuration: Overriding delegate.timeout from env: %s", dur)
		} else {
			log.Warnf("configuration: Ignoring ENV_DELEGATE_TIMEOUT=%q: %v", val, err)
		}
	}

	// ENV_PUBLISH_ADDR
	if val, ok := os.LookupEnv("ENV_PUBLISH_ADDR"); ok {
		cfg.Transport.PublishAddr = val
		log.Infof("configuration: Overriding transport.publish_addr from env: %s", val)
	}
	// ENV_METRICS_ADDR
	if val, ok := os.LookupEnv("ENV_METRICS_ADDR"); ok {
		cfg.Metrics.Addr = val
		log.Infof("configuration: Overriding metrics.addr from env: %s", val)
	}
}

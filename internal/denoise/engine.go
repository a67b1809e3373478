// SPDX-License-Identifier: MIT

// Package denoise is the denoising engine. It dispatches a mono buffer to one
// of the filter, spectral or delegate methods and returns a new buffer; the
// input is never modified.
package denoise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"denoise/internal/analysis"
	"denoise/internal/audio"
	"denoise/internal/filter"
	"denoise/internal/log"
	"denoise/internal/noisesuppression"
	"denoise/internal/spectral"
	"denoise/internal/stft"
)

// Request selects a method and optionally overrides its parameters. Nil
// overrides fall back to the engine's configured params.
type Request struct {
	Method      Method
	Bandpass    *BandpassParams
	Subtraction *SubtractionParams
	Wiener      *WienerParams
	Suppression *SuppressionParams
	Adaptive    *AdaptiveParams
}

// Result is the output of one Denoise call.
type Result struct {
	Buffer audio.Buffer
	Method Method
	// Branch is set only by the adaptive method.
	Branch     Branch
	NoiseRatio float64
	Elapsed    time.Duration
	// InputShape and OutputShape are sample counts.
	InputShape  int
	OutputShape int
}

// Option customises an Engine.
type Option func(*Engine)

// WithNoiseEstimator replaces the heuristic the adaptive method uses.
func WithNoiseEstimator(est analysis.NoiseEstimator) Option {
	return func(e *Engine) {
		if est != nil {
			e.estimator = est
		}
	}
}

// Engine holds immutable configuration and can be used from many goroutines
// as long as its delegate can.
type Engine struct {
	params    Params
	delegate  noisesuppression.NoiseSuppression
	estimator analysis.NoiseEstimator
}

// New creates an engine. A nil delegate is replaced by a pass-through.
func New(params Params, delegate noisesuppression.NoiseSuppression, opts ...Option) *Engine {
	if delegate == nil {
		delegate = noisesuppression.NewDummy()
	}
	e := &Engine{
		params:    params,
		delegate:  delegate,
		estimator: analysis.NewHighBandRatio(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns a copy of the engine's configured parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Close releases the delegate.
func (e *Engine) Close() error {
	return e.delegate.Close()
}

// Denoise runs req.Method over buf. The buffer and the parameters the method
// needs are validated before any processing starts.
func (e *Engine) Denoise(ctx context.Context, buf audio.Buffer, req Request) (*Result, error) {
	if !req.Method.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(req.Method))
	}
	if err := buf.Validate(); err != nil {
		return nil, classify(err)
	}
	params := e.params.merge(req)
	if err := params.validateFor(req.Method); err != nil {
		return nil, classify(err)
	}

	start := time.Now()
	res := &Result{Method: req.Method, InputShape: buf.Len()}

	var (
		out []float64
		err error
	)
	switch req.Method {
	case MethodBandpass:
		out, err = bandpass(buf.Samples, buf.SampleRate, params.Bandpass)
	case MethodSpectralSubtraction:
		out, err = subtract(buf.Samples, buf.SampleRate, params.Subtraction)
	case MethodWiener:
		out, err = wiener(buf.Samples, buf.SampleRate, params.Wiener)
	case MethodNoiseReduce:
		out, err = e.suppress(ctx, buf.Samples, buf.SampleRate, params.Suppression)
	case MethodAdaptive:
		out, res.Branch, res.NoiseRatio, err = e.adaptive(ctx, buf.Samples, buf.SampleRate, params)
	}
	if err != nil {
		return nil, classify(err)
	}

	res.Buffer = buf.WithSamples(out)
	res.OutputShape = len(out)
	res.Elapsed = time.Since(start)

	log.WithFields(log.Fields{
		"method":  req.Method.String(),
		"samples": res.InputShape,
		"rate":    buf.SampleRate,
		"elapsed": res.Elapsed,
	}).Debug("denoise complete")

	return res, nil
}

// merge applies the request overrides.
func (p Params) merge(req Request) Params {
	if req.Bandpass != nil {
		p.Bandpass = *req.Bandpass
	}
	if req.Subtraction != nil {
		p.Subtraction = *req.Subtraction
	}
	if req.Wiener != nil {
		p.Wiener = *req.Wiener
	}
	if req.Suppression != nil {
		p.Suppression = *req.Suppression
	}
	if req.Adaptive != nil {
		p.Adaptive = *req.Adaptive
	}
	return p
}

// validateFor checks only the parameters method m reads.
func (p Params) validateFor(m Method) error {
	switch m {
	case MethodBandpass:
		return p.Bandpass.Validate()
	case MethodSpectralSubtraction:
		return p.Subtraction.Validate()
	case MethodWiener:
		return p.Wiener.Validate()
	case MethodNoiseReduce:
		return p.Suppression.Validate()
	default:
		return p.Validate()
	}
}

// bandpass runs the Butterworth band-pass and, unless the band already
// reaches into the mains region, the hum notch.
func bandpass(samples []float64, rate int, p BandpassParams) ([]float64, error) {
	band, err := filter.Resolve(p.Profile, p.LowCut, p.HighCut)
	if err != nil {
		return nil, err
	}

	out, err := filter.Bandpass(samples, rate, band.Low, band.High, p.Order)
	if err != nil {
		return nil, err
	}

	low, high := filter.ClampBand(rate, band.Low, band.High)
	if p.NotchFreq == 0 || filter.OverlapsMains(low, high) {
		return out, nil
	}
	return filter.Notch(out, rate, p.NotchFreq, p.NotchQ)
}

func subtract(samples []float64, rate int, p SubtractionParams) ([]float64, error) {
	noise, err := spectral.EstimateNoiseProfile(audio.NewBuffer(samples, rate), p.NoiseDuration, p.FFTSize, p.HopSize, stft.Hann)
	if err != nil {
		return nil, err
	}

	spec, err := stft.Forward(samples, p.FFTSize, p.HopSize, stft.Hann)
	if err != nil {
		return nil, err
	}

	clean, err := spectral.Subtract(spec, noise, p.options())
	if err != nil {
		return nil, err
	}
	return stft.Inverse(clean, p.HopSize, stft.Hann, len(samples))
}

func wiener(samples []float64, rate int, p WienerParams) ([]float64, error) {
	spec, err := stft.Forward(samples, p.FFTSize, p.HopSize, stft.Hann)
	if err != nil {
		return nil, err
	}

	clean, err := spectral.Wiener(spec, rate, p.HopSize, p.NoiseDuration)
	if err != nil {
		return nil, err
	}
	return stft.Inverse(clean, p.HopSize, stft.Hann, len(samples))
}

// suppress hands the signal to the delegate with the leading NoiseDuration
// seconds as the noise clip.
func (e *Engine) suppress(ctx context.Context, samples []float64, rate int, p SuppressionParams) ([]float64, error) {
	n := min(len(samples), int(p.NoiseDuration*float64(rate)))
	clip := make([]float64, n)
	copy(clip, samples[:n])

	out, err := e.delegate.Reduce(ctx, samples, rate, clip, p.options())
	if err != nil {
		if errors.Is(err, ErrDelegateFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDelegateFailure, err)
	}
	if len(out) != len(samples) {
		return nil, fmt.Errorf("%w: delegate returned %d samples, want %d", ErrDelegateFailure, len(out), len(samples))
	}
	return out, nil
}

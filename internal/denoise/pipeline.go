// SPDX-License-Identifier: MIT
package denoise

import (
	"context"

	"denoise/internal/audio"
	"denoise/internal/metrics"
)

// PostProcess configures what the pipeline does after the engine.
type PostProcess struct {
	// TargetLevel is the peak after normalisation; zero skips it.
	TargetLevel float64 `yaml:"target_level" json:"target_level"`
	// Trim removes leading and trailing audio quieter than TopDB below peak.
	Trim        bool    `yaml:"trim" json:"trim"`
	TopDB       float64 `yaml:"top_db" json:"top_db"`
	FrameLength int     `yaml:"frame_length" json:"frame_length"`
	HopLength   int     `yaml:"hop_length" json:"hop_length"`
}

// DefaultPostProcess normalises to 0.9 and trims at 30 dB.
func DefaultPostProcess() PostProcess {
	return PostProcess{
		TargetLevel: audio.DefaultTargetLevel,
		Trim:        true,
		TopDB:       audio.DefaultTopDB,
		FrameLength: audio.DefaultTrimFrame,
		HopLength:   audio.DefaultTrimHop,
	}
}

// Pipeline wraps an Engine with post-processing and metrics.
type Pipeline struct {
	engine   *Engine
	post     PostProcess
	recorder *metrics.Recorder
}

// NewPipeline wraps engine. recorder may be nil.
func NewPipeline(engine *Engine, post PostProcess, recorder *metrics.Recorder) *Pipeline {
	return &Pipeline{engine: engine, post: post, recorder: recorder}
}

// Engine returns the wrapped engine.
func (p *Pipeline) Engine() *Engine {
	return p.engine
}

// Process denoises buf and then normalises and trims the result. Elapsed in
// the returned result covers the engine only.
func (p *Pipeline) Process(ctx context.Context, buf audio.Buffer, req Request) (*Result, error) {
	done := p.recorder.Track()
	defer done()

	res, err := p.engine.Denoise(ctx, buf, req)
	if err != nil {
		p.recorder.ObserveError(req.Method.String(), ErrorType(err))
		return nil, err
	}

	samples := res.Buffer.Samples
	if p.post.TargetLevel > 0 {
		samples = audio.Normalize(samples, p.post.TargetLevel)
	}
	if p.post.Trim {
		samples = audio.TrimSilence(samples, p.post.TopDB, p.post.FrameLength, p.post.HopLength)
	}
	res.Buffer = res.Buffer.WithSamples(samples)
	res.OutputShape = len(samples)

	p.recorder.ObserveRun(req.Method.String(), res.Branch.String(), res.Elapsed, res.NoiseRatio, req.Method == MethodAdaptive)
	return res, nil
}

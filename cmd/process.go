// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"denoise/internal/audio"
	"denoise/internal/config"
	"denoise/internal/denoise"
	"denoise/internal/log"
)

// requestFlags are the per-run overrides shared by process and batch.
type requestFlags struct {
	method  string
	voice   string
	lowcut  float64
	highcut float64
	noPost  bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "m", "",
		"Denoising method (see 'methods'). Defaults to the configured method")
	cmd.Flags().StringVar(&f.voice, "voice", "",
		"Voice profile for band-pass: male, female or broadband")
	cmd.Flags().Float64Var(&f.lowcut, "lowcut", 0, "Band-pass low cutoff in Hz, overrides the profile")
	cmd.Flags().Float64Var(&f.highcut, "highcut", 0, "Band-pass high cutoff in Hz, overrides the profile")
	cmd.Flags().BoolVar(&f.noPost, "no-post", false, "Skip normalisation and silence trimming")
}

// request builds the engine request from the config and flags.
func (f *requestFlags) request(cfg *config.Config) (denoise.Request, error) {
	req := denoise.Request{Method: cfg.ResolvedMethod()}
	if f.method != "" {
		m, err := denoise.ParseMethod(f.method)
		if err != nil {
			return req, err
		}
		req.Method = m
	}

	if f.voice != "" || f.lowcut > 0 || f.highcut > 0 {
		bp := cfg.Params.Bandpass
		if f.voice != "" {
			bp.Profile = f.voice
		}
		if f.lowcut > 0 {
			bp.LowCut = f.lowcut
		}
		if f.highcut > 0 {
			bp.HighCut = f.highcut
		}
		req.Bandpass = &bp
	}
	return req, nil
}

func (f *requestFlags) post(cfg *config.Config) denoise.PostProcess {
	if f.noPost {
		return denoise.PostProcess{}
	}
	return cfg.Post
}

func newProcessCommand(opts *options) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "process <in.wav> <out.wav>",
		Short: "Denoise a single WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}

			engine, err := cfg.NewEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			pipeline := denoise.NewPipeline(engine, flags.post(cfg), nil)
			res, err := processFile(cmd.Context(), pipeline, cfg, req, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s", args[0], args[1], res.Method)
			if res.Branch != denoise.BranchNone {
				fmt.Fprintf(cmd.OutOrStdout(), ", %s branch, noise ratio %.3f", res.Branch, res.NoiseRatio)
			}
			fmt.Fprintf(cmd.OutOrStdout(), ", %d -> %d samples, %s)\n", res.InputShape, res.OutputShape, res.Elapsed)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// processFile loads in, resamples when configured, runs the pipeline and
// writes out.
func processFile(ctx context.Context, p *denoise.Pipeline, cfg *config.Config, req denoise.Request, in, out string) (*denoise.Result, error) {
	buf, err := loadInput(in, cfg.TargetSampleRate)
	if err != nil {
		return nil, err
	}

	res, err := p.Process(ctx, buf, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in, err)
	}

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := audio.SaveFile(out, res.Buffer, cfg.Output.BitDepth); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"input":  in,
		"output": out,
		"method": res.Method.String(),
	}).Info("saved")
	return res, nil
}

// loadInput decodes a WAV file to mono and resamples it to rate when rate
// is positive.
func loadInput(path string, rate int) (audio.Buffer, error) {
	buf, err := audio.LoadFile(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	if rate > 0 && rate != buf.SampleRate {
		log.Debugf("resampling %s from %d Hz to %d Hz", path, buf.SampleRate, rate)
		return audio.Resample(buf, rate)
	}
	return buf, nil
}

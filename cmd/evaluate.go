// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"denoise/internal/audio"
	"denoise/internal/denoise"
	"denoise/internal/evaluate"
	"denoise/internal/log"
)

func newEvaluateCommand(opts *options) *cobra.Command {
	var (
		methods   []string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <clean.wav> <noisy.wav>",
		Short: "Score denoising methods against a clean reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			clean, noisy, err := loadPair(args[0], args[1], cfg.TargetSampleRate)
			if err != nil {
				return err
			}

			engine, err := cfg.NewEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			summary := evaluate.Summary{
				CleanFile:  args[0],
				NoisyFile:  args[1],
				SampleRate: noisy.SampleRate,
				Duration:   noisy.Duration(),
				Date:       time.Now().UTC(),
			}
			outputs := map[string]audio.Buffer{}

			for _, name := range methods {
				m, err := denoise.ParseMethod(name)
				if err != nil {
					log.Warnf("skipping %v", err)
					continue
				}

				r := evaluate.MethodResult{Method: m.String(), Description: m.Description()}
				res, err := engine.Denoise(cmd.Context(), noisy, denoise.Request{Method: m})
				if err == nil {
					r.Elapsed = res.Elapsed
					r.Metrics, err = evaluate.Compare(clean.Samples, noisy.Samples, res.Buffer.Samples, noisy.SampleRate)
					outputs[r.Method] = res.Buffer
				}
				if err != nil {
					r.Error = err.Error()
					log.Warnf("%s: %v", m, err)
				}
				summary.Results = append(summary.Results, r)
			}

			if err := summary.WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
			if outputDir == "" {
				return nil
			}
			return saveEvaluation(outputDir, summary, outputs)
		},
	}
	cmd.Flags().StringSliceVar(&methods, "methods",
		[]string{"bandpass", "spectral_subtraction", "adaptive"}, "Methods to evaluate")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Directory for the JSON report and the best denoised file")
	return cmd
}

// loadPair loads both files at a common rate and cuts them to equal length.
// Without a configured rate the lower of the two file rates is used.
func loadPair(cleanPath, noisyPath string, rate int) (audio.Buffer, audio.Buffer, error) {
	clean, err := audio.LoadFile(cleanPath)
	if err != nil {
		return audio.Buffer{}, audio.Buffer{}, err
	}
	noisy, err := audio.LoadFile(noisyPath)
	if err != nil {
		return audio.Buffer{}, audio.Buffer{}, err
	}

	if rate <= 0 {
		rate = min(clean.SampleRate, noisy.SampleRate)
	}
	if clean, err = audio.Resample(clean, rate); err != nil {
		return audio.Buffer{}, audio.Buffer{}, err
	}
	if noisy, err = audio.Resample(noisy, rate); err != nil {
		return audio.Buffer{}, audio.Buffer{}, err
	}

	n := min(clean.Len(), noisy.Len())
	return clean.WithSamples(clean.Samples[:n]), noisy.WithSamples(noisy.Samples[:n]), nil
}

func saveEvaluation(dir string, summary evaluate.Summary, outputs map[string]audio.Buffer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stamp := summary.Date.Format("20060102_150405")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "evaluation_"+stamp+".json"), data, 0o644); err != nil {
		return err
	}

	best, ok := summary.Best()
	if !ok {
		return nil
	}
	path := filepath.Join(dir, fmt.Sprintf("best_denoised_%s.wav", best.Method))
	if err := audio.SaveFile(path, outputs[best.Method], audio.DefaultBitDepth); err != nil {
		return err
	}
	log.Infof("best method %s saved to %s", best.Method, path)
	return nil
}

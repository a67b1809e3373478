// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"denoise/internal/batch"
	"denoise/internal/config"
	"denoise/internal/denoise"
	"denoise/internal/log"
	"denoise/internal/metrics"
)

func newBatchCommand(opts *options) *cobra.Command {
	flags := &requestFlags{}
	var (
		workers     int
		publishAddr string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "batch <in-dir> <out-dir>",
		Short: "Denoise every WAV file in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if workers > 0 {
				cfg.Batch.Workers = workers
			}
			if publishAddr != "" {
				cfg.Transport.Kind = config.TransportWebSocket
				cfg.Transport.PublishAddr = publishAddr
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}
			return runBatch(cmd, cfg, flags, args[0], args[1])
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed in parallel. Defaults to batch.workers")
	cmd.Flags().StringVar(&publishAddr, "publish-addr", "", "Serve progress events over WebSocket on this address")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func runBatch(cmd *cobra.Command, cfg *config.Config, flags *requestFlags, inDir, outDir string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	req, err := flags.request(cfg)
	if err != nil {
		return err
	}

	files, err := batch.FindAudioFiles(inDir, cfg.Batch.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files found in %s", inDir)
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Addr != "" {
		recorder = metrics.NewRecorder(prometheus.NewRegistry())
		go func() {
			if err := recorder.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	engine, err := cfg.NewEngine()
	if err != nil {
		return err
	}
	defer engine.Close()
	pipeline := denoise.NewPipeline(engine, flags.post(cfg), recorder)

	var batchOpts []batch.Option
	if t := cfg.NewTransport(); t != nil {
		defer t.Close()
		batchOpts = append(batchOpts, batch.WithTransport(t))
	}

	items := batch.PlanItems(files, outDir)
	log.Infof("processing %d files with %d workers", len(items), cfg.Batch.Workers)

	report := batch.Run(ctx, items, cfg.Batch.Workers,
		func(ctx context.Context, item batch.Item) (*denoise.Result, error) {
			return processFile(ctx, pipeline, cfg, req, item.Input, item.Output)
		}, batchOpts...)

	out := cmd.OutOrStdout()
	for _, o := range report.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", o.Item.Input, o.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s -> %s (%s)\n", o.Item.Input, o.Item.Output, o.Elapsed)
	}
	fmt.Fprintf(out, "%d succeeded, %d failed in %s\n", report.Succeeded(), report.Failed(), report.Elapsed)

	if err := report.Err(); err != nil {
		return errors.Join(errBatchFailed, err)
	}
	return nil
}

var errBatchFailed = errors.New("batch finished with failures")

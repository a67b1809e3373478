// SPDX-License-Identifier: MIT

// Package cmd wires the denoise command line.
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"denoise/internal/config"
	"denoise/internal/denoise"
	"denoise/internal/evaluate"
	"denoise/internal/log"
	"denoise/pkg/build"
)

// Exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// options are the flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	logJSON    bool

	cfg *config.Config
}

// Execute runs the CLI with args and returns the first error.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file. Defaults to ./config.yaml when present")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false,
		"Write log lines as JSON")

	rootCmd.AddCommand(
		newProcessCommand(opts),
		newBatchCommand(opts),
		newEvaluateCommand(opts),
		newMethodsCommand(),
	)
	return rootCmd
}

// load reads the configuration and applies the logging flags.
func (o *options) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Debug = true
	}
	if o.logJSON {
		cfg.LogJSON = true
	}

	log.SetLevel(cfg.Level())
	log.SetJSON(cfg.LogJSON)
	o.cfg = cfg
	return nil
}

// ExitCode maps an error to a process exit status. Bad input and bad
// configuration exit with ExitUsage.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, denoise.ErrInvalidParameter),
		errors.Is(err, denoise.ErrInvalidBand),
		errors.Is(err, denoise.ErrUnknownMethod),
		errors.Is(err, evaluate.ErrInvalidInput):
		return ExitUsage
	default:
		return ExitFailure
	}
}

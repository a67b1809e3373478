// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"denoise/cmd"
	"denoise/internal/log"
	"denoise/pkg/build"
)

// main is the entry point for the denoise command line.
//
// 1. Startup: load build information and install signal handling.
// 2. Run: parse arguments, load configuration and execute the command.
// 3. Shutdown: a signal cancels the context so in-flight work stops and
//    the exit code reflects the first error.
func main() {
	// Development builds have no ldflags; that is not fatal.
	if err := build.Initialize(); err != nil {
		log.Debugf("build info: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx, os.Args[1:])
	if err != nil {
		log.Errorf("%v", err)
	}
	stop()
	os.Exit(cmd.ExitCode(err))
}

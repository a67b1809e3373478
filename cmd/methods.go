// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"denoise/internal/denoise"
	"denoise/internal/filter"
)

func newMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List denoising methods and voice profiles",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range denoise.Methods() {
				fmt.Fprintf(out, "%-22s %s\n", m, m.Description())
			}
			fmt.Fprintln(out)
			for _, name := range filter.Profiles() {
				band, _ := filter.Profile(name)
				fmt.Fprintf(out, "%-22s %.0f-%.0f Hz\n", name, band.Low, band.High)
			}
			return nil
		},
	}
}

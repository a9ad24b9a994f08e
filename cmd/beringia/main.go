// Command beringia runs the landscape succession and fire simulation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beringia",
		Short: "Landscape succession, fire and erosion simulation",
		Long: `beringia simulates vegetation succession, wildfire, erosion and
simple flora/fauna dynamics over a lattice of locales.

Runs are reproducible from their seed and configuration.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newConfigCmd(),
		newRunsCmd(),
		newExportCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "beringia version %s\n", version)
		},
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netcomp",
	Short: "Compare two netlists for structural equivalence",
	Long: `netcomp compares two netlists device-by-device and net-by-net,
establishing a one-to-one correspondence under pin permutability,
parallel/series device reduction, and hierarchical subcell matching.

Examples:
  netcomp compare a.net b.net
  netcomp compare -i -v --top1 top --top2 top a.net b.net`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

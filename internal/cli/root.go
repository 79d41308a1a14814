// Package cli implements the linknormctl commands using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linknormctl",
	Short: "Normalize, inspect and deduplicate URLs",
	Long: `linknormctl reduces URLs to canonical keys suitable for deduplication:
tracking parameters are dropped, AMP wrappers are unwrapped, hosts are
lowercased and punycode-decoded, and cosmetic variations collapse to a
single form.

Usage:
  linknormctl normalize <url>...
  cat urls.txt | linknormctl dedupe`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

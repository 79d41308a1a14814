package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"linknorm/internal/urlutil"
)

var flagAMPOnly bool

var ampCmd = &cobra.Command{
	Use:   "amp [url]...",
	Short: "Report whether URLs look like AMP URLs",
	Long: `Amp checks each URL for AMP markers: amp subdomains, amp path segments
or suffixes, amp query parameters and ampproject.org hosts.

With --only, matching URLs are printed and the rest are dropped, which
makes the command usable as a filter.`,
	RunE: runAMP,
}

func init() {
	rootCmd.AddCommand(ampCmd)

	ampCmd.Flags().BoolVar(&flagAMPOnly, "only", false, "Print only the URLs that look like AMP URLs")
}

func runAMP(cmd *cobra.Command, args []string) error {
	emit := func(raw string) {
		isAMP := urlutil.IsAMPURL(raw)
		if flagAMPOnly {
			if isAMP {
				fmt.Fprintln(cmd.OutOrStdout(), raw)
			}
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%t\t%s\n", isAMP, raw)
	}

	if len(args) > 0 {
		for _, raw := range args {
			emit(raw)
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		emit(line)
	}
	return scanner.Err()
}

package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"linknorm/internal/urlutil"
)

var flagShowCanonical bool

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Drop URLs that normalize to an already seen canonical form",
	Long: `Dedupe reads URLs line by line from stdin and prints only the first URL
seen for each canonical form, preserving input order.

Examples:
  cat urls.txt | linknormctl dedupe
  cat urls.txt | linknormctl dedupe --canonical`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	dedupeCmd.Flags().BoolVar(&flagShowCanonical, "canonical", false, "Print the canonical form instead of the original URL")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		canonical := urlutil.Normalize(line, opts)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		if flagShowCanonical {
			fmt.Fprintln(cmd.OutOrStdout(), canonical)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	return scanner.Err()
}

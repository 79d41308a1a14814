package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"linknorm/internal/urlutil"
)

var hostnameCmd = &cobra.Command{
	Use:   "hostname [url]...",
	Short: "Print the normalized hostname of URLs",
	Long: `Hostname prints the normalized hostname for each URL: lowercased,
punycode-decoded, with irrelevant subdomains removed. URLs with no usable
host print an empty line.`,
	RunE: runHostname,
}

func init() {
	rootCmd.AddCommand(hostnameCmd)

	hostnameCmd.Flags().BoolVar(&flagNoAMP, "no-amp", false, "Do not strip AMP subdomains")
	hostnameCmd.Flags().BoolVar(&flagStripLang, "strip-lang-subdomains", false, "Drop language subdomains such as en. or fr-ca.")
}

func runHostname(cmd *cobra.Command, args []string) error {
	emit := func(raw string) {
		host, _ := urlutil.NormalizedHostname(raw, !flagNoAMP, flagStripLang)
		fmt.Fprintln(cmd.OutOrStdout(), host)
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

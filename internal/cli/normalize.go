package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"linknorm/internal/urlutil"
)

var (
	flagNoSortQuery    bool
	flagKeepAuth       bool
	flagStripTrailing  bool
	flagKeepIndex      bool
	flagKeepProtocol   bool
	flagKeepSubdomains bool
	flagStripLang      bool
	flagFragment       string
	flagNoAMP          bool
	flagNoFixMistakes  bool
	flagUnwrapRedirect bool
	flagUnquoted       bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [url]...",
	Short: "Reduce URLs to their canonical form",
	Long: `Normalize reduces each URL to the canonical form used for deduplication.
URLs are given as arguments, or read line by line from stdin when no
arguments are present.

Examples:
  linknormctl normalize "https://www.example.com/page?utm_source=x"
  linknormctl normalize --keep-protocol "http://example.com/index.html"
  cat urls.txt | linknormctl normalize`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().BoolVar(&flagNoSortQuery, "no-sort-query", false, "Keep query parameters in their original order")
	normalizeCmd.Flags().BoolVar(&flagKeepAuth, "keep-auth", false, "Keep user:password credentials")
	normalizeCmd.Flags().BoolVar(&flagStripTrailing, "strip-trailing-slash", false, "Drop the trailing slash even on non-root paths")
	normalizeCmd.Flags().BoolVar(&flagKeepIndex, "keep-index", false, "Keep index.html and friends")
	normalizeCmd.Flags().BoolVar(&flagKeepProtocol, "keep-protocol", false, "Keep the scheme prefix")
	normalizeCmd.Flags().BoolVar(&flagKeepSubdomains, "keep-subdomains", false, "Keep www, m and mobile subdomains")
	normalizeCmd.Flags().BoolVar(&flagStripLang, "strip-lang-subdomains", false, "Drop language subdomains such as en. or fr-ca.")
	normalizeCmd.Flags().StringVar(&flagFragment, "fragment", "except-routing", "Fragment handling: off, always, except-routing")
	normalizeCmd.Flags().BoolVar(&flagNoAMP, "no-amp", false, "Do not unwrap or strip AMP artifacts")
	normalizeCmd.Flags().BoolVar(&flagNoFixMistakes, "no-fix-mistakes", false, "Do not repair common encoding mistakes")
	normalizeCmd.Flags().BoolVar(&flagUnwrapRedirect, "unwrap-redirects", false, "Follow obvious redirect parameters such as ?url=")
	normalizeCmd.Flags().BoolVar(&flagUnquoted, "unquoted", false, "Leave percent-encoding as found instead of requoting")
}

func optionsFromFlags() (urlutil.Options, error) {
	opts := urlutil.DefaultOptions()
	opts.SortQuery = !flagNoSortQuery
	opts.StripAuthentication = !flagKeepAuth
	opts.StripTrailingSlash = flagStripTrailing
	opts.StripIndex = !flagKeepIndex
	opts.StripProtocol = !flagKeepProtocol
	opts.StripIrrelevantSubdomain = !flagKeepSubdomains
	opts.StripLangSubdomains = flagStripLang
	opts.NormalizeAMP = !flagNoAMP
	opts.FixCommonMistakes = !flagNoFixMistakes
	opts.ResolveObviousRedirects = flagUnwrapRedirect
	opts.Quoted = !flagUnquoted

	switch urlutil.FragmentPolicy(flagFragment) {
	case urlutil.FragmentKeep, urlutil.FragmentStripAlways, urlutil.FragmentStripExceptRouting:
		opts.FragmentPolicy = urlutil.FragmentPolicy(flagFragment)
	default:
		return opts, fmt.Errorf("invalid --fragment value %q (want off, always or except-routing)", flagFragment)
	}
	return opts, nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags()
	if err != nil {
		return err
	}

	emit := func(raw string) {
		fmt.Fprintln(cmd.OutOrStdout(), urlutil.Normalize(raw, opts))
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

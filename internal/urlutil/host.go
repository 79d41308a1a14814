package urlutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/language"
)

// Leading subdomain labels that never discriminate between resources.
// The AMP variant additionally recognizes a whole "amp" label.
var (
	irrelevantSubdomainRe    = regexp.MustCompile(`(?i)^(?:(?:www\d?|mobile|m)\.)+`)
	irrelevantSubdomainAMPRe = regexp.MustCompile(`(?i)^(?:(?:www\d?|mobile|amp|m)\.)+`)
)

func irrelevantSubdomainPattern(normalizeAMP bool) *regexp.Regexp {
	if normalizeAMP {
		return irrelevantSubdomainAMPRe
	}
	return irrelevantSubdomainRe
}

// decodePunycode decodes every ACE label of the host independently. A label
// that fails to decode is kept as-is.
func decodePunycode(host string) string {
	if !strings.Contains(host, "xn--") {
		return host
	}
	labels := strings.Split(host, ".")
	for i, label := range labels {
		if decoded, err := idna.ToUnicode(label); err == nil {
			labels[i] = decoded
		}
	}
	return strings.Join(labels, ".")
}

// isCountryCode reports whether code is a known ISO 3166-1 alpha-2 country.
func isCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	region, err := language.ParseRegion(code)
	return err == nil && region.IsCountry()
}

// stripLangSubdomains drops a leftmost subdomain that only encodes language
// or country, such as "fr" or "fr-FR". Unknown codes are kept.
func stripLangSubdomains(host string) string {
	if strings.Count(host, ".") < 2 {
		return host
	}
	subdomain, remaining, _ := strings.Cut(host, ".")
	switch {
	case len(subdomain) == 5 && strings.Contains(subdomain, "-"):
		lang, country, _ := strings.Cut(subdomain, "-")
		if isCountryCode(lang) && isCountryCode(country) {
			return remaining
		}
	case len(subdomain) == 2:
		if isCountryCode(subdomain) {
			return remaining
		}
	}
	return host
}

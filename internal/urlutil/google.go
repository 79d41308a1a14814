package urlutil

import (
	"regexp"
	"strings"
)

// Query parameters that, in the wild, carry the real destination of a
// redirecting link.
var (
	obviousRedirectsRe = regexp.MustCompile(`(?i)[?&](?:redirect(?:_to)?|url|[lu])=([^&#]+)`)
	urlExtractRe       = regexp.MustCompile(`(?i)[?&]url=([^&#]+)`)
)

// extractObviousRedirect searches the raw URL text for a well-known redirect
// parameter whose decoded value is itself an absolute http(s) URL. It works
// on the raw string, before any parsing.
func extractObviousRedirect(raw string) (string, bool) {
	m := obviousRedirectsRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	target := unquote(m[1])
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target, true
	}
	return "", false
}

// ExtractURLFromGoogleLink returns the percent-decoded value of a "url"
// query parameter, the convention Google result links use to wrap their
// true destination. The second return is false when no such parameter
// exists.
func ExtractURLFromGoogleLink(raw string) (string, bool) {
	m := urlExtractRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return unquote(m[1]), true
}

package urlutil

import (
	"regexp"
	"strings"
)

var (
	ampQueryRe           = regexp.MustCompile(`(?i)amp(_.+)=?`)
	ampProjectRedirectRe = regexp.MustCompile(`(?i)^/[cv]/(?:s/)?`)
)

// stripAMPSuffix removes an AMP marker from the end of a path: ".amp" right
// before a trailing ".html", a trailing ".amp" file suffix, or a trailing
// "amp" path segment. Matching is case-insensitive.
func stripAMPSuffix(p string) string {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".amp.html"):
		return p[:len(p)-len(".amp.html")] + p[len(p)-len(".html"):]
	case strings.HasSuffix(lower, ".amp"):
		return p[:len(p)-len(".amp")]
	case strings.HasSuffix(lower, ".amp/"):
		return p[:len(p)-len(".amp/")]
	case strings.HasSuffix(lower, "/amp"):
		return p[:len(p)-len("amp")]
	case strings.HasSuffix(lower, "/amp/"):
		return p[:len(p)-len("amp/")]
	}
	return p
}

func hasAMPSuffix(p string) bool {
	return stripAMPSuffix(p) != p
}

// IsAMPURL reports whether the URL looks like a Google AMP page, judging by
// host, path and query conventions. Any single signal suffices.
func IsAMPURL(raw string) bool {
	s, err := split(EnsureProtocol(raw, "http"))
	if err != nil {
		return false
	}
	host := strings.ToLower(hostOnly(s.Host))
	if strings.HasSuffix(host, ".ampproject.org") {
		return true
	}
	if strings.HasPrefix(host, "amp-") || strings.HasPrefix(host, "amp.") {
		return true
	}
	if strings.Contains(s.Path, "/amp/") {
		return true
	}
	if hasAMPSuffix(s.Path) {
		return true
	}
	return s.Query != "" && ampQueryRe.MatchString(s.Query)
}

// resolveAMPProjectRedirect rewrites an *.ampproject.org viewer URL to the
// origin page it mirrors. URLs that do not follow the /c/ or /v/ viewer
// convention are returned unchanged.
func resolveAMPProjectRedirect(s SplitURL) SplitURL {
	host := strings.ToLower(hostOnly(s.Host))
	if host == "" || !strings.HasSuffix(host, ".ampproject.org") || !ampProjectRedirectRe.MatchString(s.Path) {
		return s
	}

	redirected := "https://" + ampProjectRedirectRe.ReplaceAllString(s.Path, "")
	if s.Query != "" {
		redirected += "?" + s.Query
	}
	if s.Fragment != "" {
		redirected += "#" + s.Fragment
	}

	resolved, err := split(redirected)
	if err != nil {
		return s
	}
	return resolved
}

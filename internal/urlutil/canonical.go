// Package urlutil reduces URLs to a stable canonical key so that
// semantically-equivalent links (the same page shared through different
// trackers, mirrors or AMP caches) compare equal after normalization.
//
// Normalization is intentionally lossy and total: every heuristic step
// degrades to a no-op when it cannot confidently apply, and input the URL
// parser rejects outright is returned unchanged.
package urlutil

import "strings"

// FragmentPolicy selects what happens to the URL fragment.
type FragmentPolicy string

const (
	// FragmentKeep passes the fragment through unchanged.
	FragmentKeep FragmentPolicy = "off"
	// FragmentStripAlways drops every fragment.
	FragmentStripAlways FragmentPolicy = "always"
	// FragmentStripExceptRouting drops decorative fragments but keeps
	// client-side-router ones (starting with "/" or "!").
	FragmentStripExceptRouting FragmentPolicy = "except-routing"
)

// Options configures the normalization pipeline. Each rewrite rule is
// independently togglable. The zero value disables everything; start from
// DefaultOptions for the usual dedup behavior.
type Options struct {
	SortQuery                bool
	StripAuthentication      bool
	StripTrailingSlash       bool
	StripIndex               bool
	StripProtocol            bool
	StripIrrelevantSubdomain bool
	StripLangSubdomains      bool
	FragmentPolicy           FragmentPolicy
	NormalizeAMP             bool
	FixCommonMistakes        bool
	ResolveObviousRedirects  bool
	Quoted                   bool
}

// DefaultOptions returns the options used for deduplication keys.
func DefaultOptions() Options {
	return Options{
		SortQuery:                true,
		StripAuthentication:      true,
		StripIndex:               true,
		StripProtocol:            true,
		StripIrrelevantSubdomain: true,
		FragmentPolicy:           FragmentStripExceptRouting,
		NormalizeAMP:             true,
		FixCommonMistakes:        true,
		Quoted:                   true,
	}
}

// Normalize canonicalizes a URL string. Input the parser cannot interpret is
// returned byte-for-byte unchanged; no other input ever fails.
func Normalize(raw string, opts Options) string {
	s, schemeDropped, err := normalize(raw, opts)
	if err != nil {
		return raw
	}
	out := s.String()
	if schemeDropped {
		// Serialization leaves the empty-scheme "//" marker in front of
		// the host; a scheme-less key starts directly at the host.
		out = strings.TrimPrefix(out, "//")
	}
	return out
}

// NormalizeSplit is Normalize returning the structured five-component result
// instead of a joined string. The error is non-nil only when the parser
// rejects the input.
func NormalizeSplit(raw string, opts Options) (SplitURL, error) {
	s, _, err := normalize(raw, opts)
	return s, err
}

// normalize runs the full pipeline and reports whether the scheme was
// dropped (either on request or because the input never had one).
func normalize(raw string, opts Options) (SplitURL, bool, error) {
	if opts.ResolveObviousRedirects {
		if target, ok := extractObviousRedirect(raw); ok {
			raw = target
		}
	}

	hasProtocol := protocolRe.MatchString(raw)
	parseable := raw
	if !hasProtocol {
		// Provisional scheme so the authority parses; dropped again below.
		parseable = "http://" + raw
	}

	s, err := split(parseable)
	if err != nil {
		return SplitURL{}, false, err
	}

	if opts.NormalizeAMP {
		s = resolveAMPProjectRedirect(s)
	}

	scheme, host, path, query, fragment := s.Scheme, s.Host, s.Path, s.Query, s.Fragment

	// Literal "&amp;" in a query string is an HTML-escaping mistake.
	if opts.FixCommonMistakes && query != "" {
		query = strings.ReplaceAll(query, "&amp;", "&")
	}

	host = decodePunycode(host)

	if strings.HasSuffix(host, ":80") {
		host = host[:len(host)-3]
	} else if strings.HasSuffix(host, ":443") {
		host = host[:len(host)-4]
	}

	path = normalizePathSegments(path, opts.StripTrailingSlash)

	// AMP markers must go after dot-segment collapsing, else "/amp/../x"
	// could mask one, and before index stripping, which their removal can
	// expose.
	if opts.NormalizeAMP {
		path = stripAMPSuffix(path)
	}

	if opts.StripIndex {
		path = stripIndexSegment(path)
	}

	if query != "" {
		query = normalizeQuery(query, opts.SortQuery, opts.NormalizeAMP)
	}

	if fragment != "" && opts.FragmentPolicy != FragmentKeep && opts.FragmentPolicy != "" {
		if opts.FragmentPolicy == FragmentStripAlways || !isRoutingFragment(fragment) {
			fragment = ""
		}
	}

	// Canonical root form carries no trailing slash when nothing follows.
	if path == "/" && fragment == "" && query == "" {
		path = ""
	}

	if opts.StripIrrelevantSubdomain {
		re := irrelevantSubdomainPattern(opts.NormalizeAMP)
		if i := strings.LastIndexByte(host, '@'); i >= 0 {
			host = host[:i+1] + re.ReplaceAllString(host[i+1:], "")
		} else {
			host = re.ReplaceAllString(host, "")
		}
	}

	if opts.StripLangSubdomains {
		host = stripLangSubdomains(host)
	}

	schemeDropped := opts.StripProtocol || !hasProtocol
	if schemeDropped {
		scheme = ""
	}

	if opts.StripAuthentication {
		if i := strings.LastIndexByte(host, '@'); i >= 0 {
			host = host[i+1:]
		}
	}

	if opts.NormalizeAMP {
		host = strings.TrimPrefix(host, "amp-")
	}

	if opts.StripTrailingSlash && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
	}

	if opts.Quoted {
		path = quoteWith(path, safeCharacters)
		query = quoteWith(query, reservedCharacters)
		fragment = quoteWith(fragment, safeCharacters)
	} else {
		path = unquote(path)
		query = unquote(query)
		fragment = unquote(fragment)
	}

	result := SplitURL{
		Scheme:   scheme,
		Host:     strings.ToLower(host),
		Path:     path,
		Query:    query,
		Fragment: fragment,
	}
	return result, schemeDropped, nil
}

// NormalizedHostname runs the host-only reduction of the pipeline: punycode
// decoding, irrelevant/AMP/language subdomain stripping and lower-casing.
// The second return is false when the input has no host or does not parse.
func NormalizedHostname(raw string, normalizeAMP, stripLang bool) (string, bool) {
	s, err := split(EnsureProtocol(raw, "http"))
	if err != nil {
		return "", false
	}

	if normalizeAMP {
		s = resolveAMPProjectRedirect(s)
	}

	host := hostOnly(s.Host)
	if host == "" {
		return "", false
	}
	host = strings.ToLower(host)

	host = irrelevantSubdomainPattern(normalizeAMP).ReplaceAllString(host, "")

	if normalizeAMP {
		host = strings.TrimPrefix(host, "amp-")
	}

	host = decodePunycode(host)

	if stripLang {
		host = stripLangSubdomains(host)
	}

	return host, true
}

package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// SplitURL is the five-component decomposition of a URL reference that the
// normalization pipeline operates on. All fields hold raw (still escaped)
// component text; Host carries the full authority including any userinfo
// and port, mirroring what appears between "//" and the path.
type SplitURL struct {
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// protocolRe matches a leading scheme marker, including the protocol-relative
// "//" form.
var protocolRe = regexp.MustCompile(`^[a-zA-Z0-9+.-]*:?//`)

// split parses a raw URL string into its five components using net/url,
// keeping the components in their escaped form.
func split(raw string) (SplitURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return SplitURL{}, err
	}

	host := u.Host
	if u.User != nil {
		host = u.User.String() + "@" + u.Host
	}

	path := u.EscapedPath()
	if u.Opaque != "" {
		// Opaque forms like mailto:user@host carry their content as the path.
		path = u.Opaque
	}

	return SplitURL{
		Scheme:   u.Scheme,
		Host:     host,
		Path:     path,
		Query:    u.RawQuery,
		Fragment: u.EscapedFragment(),
	}, nil
}

// String re-joins the components into a URL reference. An empty query or
// fragment emits no "?" or "#" delimiter.
func (s SplitURL) String() string {
	var b strings.Builder
	if s.Scheme != "" {
		b.WriteString(s.Scheme)
		b.WriteByte(':')
	}
	if s.Host != "" {
		b.WriteString("//")
		b.WriteString(s.Host)
	}
	b.WriteString(s.Path)
	if s.Query != "" {
		b.WriteByte('?')
		b.WriteString(s.Query)
	}
	if s.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(s.Fragment)
	}
	return b.String()
}

// hostOnly reduces an authority to its bare hostname: userinfo and port
// are dropped. IPv6 literals keep their brackets.
func hostOnly(authority string) string {
	host := authority
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		if i := strings.IndexByte(host, ']'); i >= 0 {
			return host[:i+1]
		}
		return host
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// EnsureProtocol prepends the given protocol to a URL that carries no scheme
// marker, so parsing resolves the host consistently.
func EnsureProtocol(raw, protocol string) string {
	if protocolRe.MatchString(raw) {
		return raw
	}
	return protocol + "://" + raw
}

// StripProtocol removes a leading scheme marker, if any.
func StripProtocol(raw string) string {
	return protocolRe.ReplaceAllString(raw, "")
}

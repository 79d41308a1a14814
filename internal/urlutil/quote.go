package urlutil

import "strings"

// Safe character sets for percent-encoding, per RFC 2396 terminology.
// The path and fragment keep the full reserved+unreserved set as literals,
// the query keeps only the reserved set.
const (
	reservedCharacters   = ";,/?:@&=+$"
	unreservedCharacters = "-_.!~*'()"
	safeCharacters       = reservedCharacters + unreservedCharacters
)

const upperhex = "0123456789ABCDEF"

func isUnreservedByte(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// quoteWith percent-encodes every byte that is neither unreserved nor listed
// in safe. Existing percent escapes are left alone so that quoting is
// idempotent over already-encoded input.
func quoteWith(s, safe string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) || c == '%' || strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// unquote decodes percent escapes, leaving malformed sequences untouched.
func unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '%' && i+2 < len(s) {
			if hi, ok := unhex(s[i+1]); ok {
				if lo, ok := unhex(s[i+2]); ok {
					b.WriteByte(hi<<4 | lo)
					i += 3
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// unquotePlus decodes a form-encoded token: "+" means space, then percent
// escapes are decoded.
func unquotePlus(s string) string {
	return unquote(strings.ReplaceAll(s, "+", " "))
}

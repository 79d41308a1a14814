package urlutil

import "strings"

// isRoutingFragment reports whether a fragment encodes client-side router
// state rather than a decorative in-page anchor. A bare "/", "!" or "!/"
// addresses nothing and does not count.
func isRoutingFragment(fragment string) bool {
	switch fragment {
	case "!/", "/", "!":
		return false
	}
	return strings.HasPrefix(fragment, "/") || strings.HasPrefix(fragment, "!")
}

package urlutil

import "testing"

func TestIsRoutingFragment(t *testing.T) {
	routing := []string{"/profile", "!/profile", "!page", "/a/b"}
	for _, f := range routing {
		if !isRoutingFragment(f) {
			t.Errorf("expected %q to be a routing fragment", f)
		}
	}

	plain := []string{"comments", "section-2", "/", "!", "!/", ""}
	for _, f := range plain {
		if isRoutingFragment(f) {
			t.Errorf("expected %q not to be a routing fragment", f)
		}
	}
}

package urlutil

import "testing"

func TestIsAMPURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example-com.cdn.ampproject.org/c/s/example.com/page", true},
		{"https://amp.example.com/article", true},
		{"https://amp-cnn.example.com/article", true},
		{"https://www.google.com/amp/s/example.com/page", true},
		{"https://example.com/page.amp.html", true},
		{"https://example.com/page.amp", true},
		{"https://example.com/article/amp/", true},
		{"https://example.com/page?amp_js_v=0.1", true},
		{"example.com/article/amp", true},
		{"https://example.com/page", false},
		{"https://example.com/campaign", false},
		{"https://example.com/?amp=1", false},
		{"https://example.com/stamp", false},
		{"http://[::1", false},
	}

	for _, tt := range tests {
		if got := IsAMPURL(tt.input); got != tt.want {
			t.Errorf("IsAMPURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStripAMPSuffix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/page.amp.html", "/page.html"},
		{"/page.amp", "/page"},
		{"/page.amp/", "/page"},
		{"/article/amp", "/article/"},
		{"/article/amp/", "/article/"},
		{"/article/AMP/", "/article/"},
		{"/stamp", "/stamp"},
		{"/article", "/article"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripAMPSuffix(tt.input); got != tt.want {
			t.Errorf("stripAMPSuffix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveAMPProjectRedirect(t *testing.T) {
	t.Run("viewer URL resolves to origin", func(t *testing.T) {
		s, err := split("https://example-com.cdn.ampproject.org/v/s/example.com/page?x=1#frag")
		if err != nil {
			t.Fatal(err)
		}
		got := resolveAMPProjectRedirect(s)
		if got.Host != "example.com" || got.Path != "/page" || got.Query != "x=1" || got.Fragment != "frag" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("non-viewer path untouched", func(t *testing.T) {
		s, err := split("https://cdn.ampproject.org/about")
		if err != nil {
			t.Fatal(err)
		}
		if got := resolveAMPProjectRedirect(s); got != s {
			t.Errorf("got %+v, want unchanged", got)
		}
	})

	t.Run("other hosts untouched", func(t *testing.T) {
		s, err := split("https://example.com/c/s/whatever")
		if err != nil {
			t.Fatal(err)
		}
		if got := resolveAMPProjectRedirect(s); got != s {
			t.Errorf("got %+v, want unchanged", got)
		}
	})
}

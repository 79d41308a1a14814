package urlutil

import "testing"

func TestNormalizePathSegments(t *testing.T) {
	tests := []struct {
		input string
		strip bool
		want  string
	}{
		{"/a/./b/../c", false, "/a/c"},
		{"//a//b", false, "/a/b"},
		{"/a/b/", false, "/a/b/"},
		{"/a/b/", true, "/a/b"},
		{"/", false, "/"},
		{"", false, ""},
	}

	for _, tt := range tests {
		if got := normalizePathSegments(tt.input, tt.strip); got != tt.want {
			t.Errorf("normalizePathSegments(%q, %v) = %q, want %q", tt.input, tt.strip, got, tt.want)
		}
	}
}

func TestStripIndexSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/index.html", ""},
		{"/index.php", ""},
		{"/index", ""},
		{"/docs/index.html", "/docs"},
		{"/indexation", "/indexation"},
		{"/docs/page.html", "/docs/page.html"},
		{"index.html", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripIndexSegment(tt.input); got != tt.want {
			t.Errorf("stripIndexSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

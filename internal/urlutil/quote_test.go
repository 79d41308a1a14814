package urlutil

import "testing"

func TestQuoteWith(t *testing.T) {
	tests := []struct {
		input string
		safe  string
		want  string
	}{
		{"/a b/c", safeCharacters, "/a%20b/c"},
		{"/a%20b", safeCharacters, "/a%20b"},
		{"a=b c", reservedCharacters, "a=b%20c"},
		{"déjà", safeCharacters, "d%C3%A9j%C3%A0"},
		{"~tilde", safeCharacters, "~tilde"},
		{"", safeCharacters, ""},
	}

	for _, tt := range tests {
		if got := quoteWith(tt.input, tt.safe); got != tt.want {
			t.Errorf("quoteWith(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQuoteWithIsIdempotent(t *testing.T) {
	inputs := []string{"/a b/c", "/a%2Fb", "déjà vu", "100%"}
	for _, input := range inputs {
		once := quoteWith(input, safeCharacters)
		twice := quoteWith(once, safeCharacters)
		if once != twice {
			t.Errorf("quoteWith not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"%41%42", "AB"},
		{"a%20b", "a b"},
		{"no escapes", "no escapes"},
		{"%", "%"},
		{"%2", "%2"},
		{"%zz", "%zz"},
		{"trailing%2F", "trailing/"},
	}

	for _, tt := range tests {
		if got := unquote(tt.input); got != tt.want {
			t.Errorf("unquote(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUnquotePlus(t *testing.T) {
	if got := unquotePlus("a+b%20c"); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

package urlutil

import "testing"

func TestExtractObviousRedirect(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "facebook l.php",
			input:  "https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com%2Fpage&h=AT0x",
			want:   "https://example.com/page",
			wantOK: true,
		},
		{
			name:   "redirect parameter",
			input:  "https://example.com/out?redirect=https%3A%2F%2Ftarget.example%2F",
			want:   "https://target.example/",
			wantOK: true,
		},
		{
			name:   "redirect_to parameter",
			input:  "https://example.com/login?redirect_to=https%3A%2F%2Ftarget.example%2Fadmin",
			want:   "https://target.example/admin",
			wantOK: true,
		},
		{
			name:   "url parameter",
			input:  "https://example.com/go?url=http%3A%2F%2Ftarget.example",
			want:   "http://target.example",
			wantOK: true,
		},
		{
			name:  "relative target rejected",
			input: "https://example.com/go?url=%2Flocal%2Fpath",
		},
		{
			name:  "no redirect parameter",
			input: "https://example.com/page?id=42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractObviousRedirect(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("extractObviousRedirect(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("extractObviousRedirect(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractURLFromGoogleLink(t *testing.T) {
	t.Run("google result link", func(t *testing.T) {
		input := "https://www.google.com/url?sa=t&rct=j&url=https%3A%2F%2Fexample.com%2Farticle&usg=AOvVaw0"
		got, ok := ExtractURLFromGoogleLink(input)
		if !ok {
			t.Fatal("expected a url parameter")
		}
		if got != "https://example.com/article" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no url parameter", func(t *testing.T) {
		if _, ok := ExtractURLFromGoogleLink("https://www.google.com/search?q=test"); ok {
			t.Error("expected no url parameter")
		}
	})
}

package urlutil

import "testing"

func TestParseQueryItems(t *testing.T) {
	items := parseQueryItems("a=1&b&c=x+y&d=%C3%A9")
	want := []QueryItem{
		{Key: "a", Value: "1"},
		{Key: "b", Value: ""},
		{Key: "c", Value: "x y"},
		{Key: "d", Value: "é"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestShouldStripQueryItem(t *testing.T) {
	tests := []struct {
		name string
		item QueryItem
		amp  bool
		want bool
	}{
		{"utm prefix", QueryItem{Key: "utm_source", Value: "x"}, false, true},
		{"utm prefix uppercase", QueryItem{Key: "UTM_CAMPAIGN", Value: "x"}, false, true},
		{"fbclid", QueryItem{Key: "fbclid", Value: "abc"}, false, true},
		{"xtor", QueryItem{Key: "xtor", Value: "x"}, false, true},
		{"seen", QueryItem{Key: "seen", Value: "1"}, false, true},
		{"amp key with amp on", QueryItem{Key: "amp", Value: "1"}, true, true},
		{"amp key with amp off", QueryItem{Key: "amp", Value: "1"}, false, false},
		{"amp underscore key", QueryItem{Key: "amp_analytics", Value: "1"}, true, true},
		{"ref known tracker", QueryItem{Key: "ref", Value: "twitter"}, false, true},
		{"ref unknown value", QueryItem{Key: "ref", Value: "homepage"}, false, false},
		{"ref value is case sensitive", QueryItem{Key: "ref", Value: "Twitter"}, false, false},
		{"spref tracker", QueryItem{Key: "spref", Value: "fb"}, false, true},
		{"platform hootsuite", QueryItem{Key: "platform", Value: "hootsuite"}, false, true},
		{"ordinary key", QueryItem{Key: "id", Value: "42"}, false, false},
		{"utmost is not utm", QueryItem{Key: "utmost", Value: "x"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldStripQueryItem(tt.item, tt.amp); got != tt.want {
				t.Errorf("shouldStripQueryItem(%+v, amp=%v) = %v, want %v", tt.item, tt.amp, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		sort  bool
		amp   bool
		want  string
	}{
		{"sorts survivors", "b=2&a=1", true, true, "a=1&b=2"},
		{"keeps order unsorted", "b=2&a=1", false, true, "b=2&a=1"},
		{"drops trackers", "utm_source=tw&id=42&fbclid=x", true, true, "id=42"},
		{"all dropped", "utm_source=tw&utm_medium=email", true, true, ""},
		{"bare key survives", "debug&a=1", true, true, "a=1&debug"},
		{"amp keys gated", "amp=1&id=2", true, false, "amp=1&id=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeQuery(tt.query, tt.sort, tt.amp); got != tt.want {
				t.Errorf("normalizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

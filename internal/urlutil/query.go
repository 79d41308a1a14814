package urlutil

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// QueryItem is a single key/value pair of a query string, in parse order.
// Value is empty for bare keys ("?foo").
type QueryItem struct {
	Key   string
	Value string
}

// Keys whose presence never discriminates between resources (trackers,
// share counters, analytics). The AMP variant additionally recognizes
// "amp" and "amp_*" keys.
const irrelevantQueryPattern = `^(?:__twitter_impression|echobox|fbclid|feature|recruiter|fref|igshid|ncid|utm_.+%s|s?een|xt(?:loc|ref|cr|np|or|s))$`

var (
	irrelevantQueryRe    = regexp.MustCompile(`(?i)` + fmt.Sprintf(irrelevantQueryPattern, ``))
	irrelevantQueryAMPRe = regexp.MustCompile(`(?i)` + fmt.Sprintf(irrelevantQueryPattern, `|amp_.+|amp`))
)

// Key/value combinations that identify share trackers. Unlike the pattern
// rules, these match the key exactly and the value case-sensitively.
var irrelevantQueryCombos = map[string]map[string]struct{}{
	"platform": setOf("hootsuite"),
	"ref": setOf(
		"bookmark", "bookmarks", "distributor_share", "fb", "fb_i",
		"m_notif", "nf", "notif", "shortener", "ts", "tw", "tw_i",
		"twhr", "twhs", "twitter", "viral",
	),
	"sns":   setOf("tw"),
	"spref": setOf("fb", "ts", "tw", "tw_i", "twitter"),
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// parseQueryItems splits a raw query string into ordered key/value pairs,
// decoding form escapes and keeping blank values.
func parseQueryItems(query string) []QueryItem {
	var items []QueryItem
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		items = append(items, QueryItem{Key: unquotePlus(key), Value: unquotePlus(value)})
	}
	return items
}

// shouldStripQueryItem decides whether an item is an irrelevant query item.
// The key is matched case-insensitively, combo values case-sensitively.
func shouldStripQueryItem(item QueryItem, normalizeAMP bool) bool {
	key := strings.ToLower(item.Key)

	pattern := irrelevantQueryRe
	if normalizeAMP {
		pattern = irrelevantQueryAMPRe
	}
	if pattern.MatchString(key) {
		return true
	}

	if values, ok := irrelevantQueryCombos[key]; ok {
		_, strip := values[item.Value]
		return strip
	}
	return false
}

func stringifyQueryItem(item QueryItem) string {
	if item.Value == "" {
		return item.Key
	}
	return item.Key + "=" + item.Value
}

// normalizeQuery filters irrelevant items out of the query and re-serializes
// the survivors, optionally in lexicographic order. Stripping is a pure
// filter: surviving items are never rewritten.
func normalizeQuery(query string, sortQuery, normalizeAMP bool) string {
	items := parseQueryItems(query)
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if !shouldStripQueryItem(item, normalizeAMP) {
			kept = append(kept, stringifyQueryItem(item))
		}
	}
	if sortQuery {
		sort.Strings(kept)
	}
	return strings.Join(kept, "&")
}

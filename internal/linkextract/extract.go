// Package linkextract pulls hyperlinks out of HTML documents and reduces
// them to canonical keys, so a page's outbound links can be fed straight
// into the dedup registry.
package linkextract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"linknorm/internal/urlutil"
)

// Link pairs the href as written in the document with its canonical key.
type Link struct {
	Href      string `json:"href"`
	Canonical string `json:"canonical"`
}

// Extract parses HTML from r, resolves every <a href> against baseURL and
// normalizes the result. Non-http(s) links are dropped, and links that
// normalize to the same key are reported once, in first-seen order.
func Extract(r io.Reader, baseURL string, opts urlutil.Options) ([]Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	seen := make(map[string]struct{})
	var links []Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		canonical := urlutil.Normalize(abs.String(), opts)
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		links = append(links, Link{Href: href, Canonical: canonical})
	})

	return links, nil
}

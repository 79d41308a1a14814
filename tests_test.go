package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"linknorm/internal/api"
	"linknorm/internal/models"
	"linknorm/internal/renorm"
	"linknorm/internal/storage/sqlite"
	"linknorm/internal/urlutil"
)

// newE2EServer wires the real SQLite store behind the real router, the way
// cmd/linknorm does, and returns both for end-to-end exercising.
func newE2EServer(t *testing.T) (*sqlite.SQLiteStore, *httptest.Server) {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handlers := api.NewHandlers(store, urlutil.DefaultOptions())
	server := httptest.NewServer(api.NewRouter(handlers))
	t.Cleanup(server.Close)
	return store, server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestEndToEndTargetFlow(t *testing.T) {
	_, server := newE2EServer(t)

	// First submission registers a new target.
	resp := postJSON(t, server.URL+"/v1/targets", map[string]string{
		"url":    "https://www.example.com/page?utm_source=news",
		"source": "crawler",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 on first submission, got %d", resp.StatusCode)
	}
	var created models.Target
	decodeJSON(t, resp, &created)
	if created.CanonicalURL != "example.com/page" {
		t.Errorf("expected canonical example.com/page, got %q", created.CanonicalURL)
	}
	if created.Host != "example.com" {
		t.Errorf("expected host example.com, got %q", created.Host)
	}

	// A cosmetic variant of the same page deduplicates onto the target.
	resp = postJSON(t, server.URL+"/v1/targets", map[string]string{
		"url": "http://m.example.com/page#comments",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on duplicate submission, got %d", resp.StatusCode)
	}
	var dup models.Target
	decodeJSON(t, resp, &dup)
	if dup.ID != created.ID {
		t.Errorf("expected duplicate to resolve to target %s, got %s", created.ID, dup.ID)
	}
	if dup.SeenCount != 2 {
		t.Errorf("expected seen_count 2, got %d", dup.SeenCount)
	}

	// Listing shows the single deduplicated target.
	listResp, err := http.Get(server.URL + "/v1/targets")
	if err != nil {
		t.Fatalf("GET /v1/targets failed: %v", err)
	}
	var list struct {
		Items []models.Target `json:"items"`
	}
	decodeJSON(t, listResp, &list)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 target, got %d", len(list.Items))
	}

	// Both raw forms were recorded as sightings.
	sightResp, err := http.Get(server.URL + "/v1/targets/" + created.ID + "/sightings")
	if err != nil {
		t.Fatalf("GET sightings failed: %v", err)
	}
	var sightings struct {
		Items []models.Sighting `json:"items"`
	}
	decodeJSON(t, sightResp, &sightings)
	if len(sightings.Items) != 2 {
		t.Fatalf("expected 2 sightings, got %d", len(sightings.Items))
	}

	healthResp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	healthResp.Body.Close()
	if healthResp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", healthResp.StatusCode)
	}
}

func TestEndToEndNormalizeAndExtract(t *testing.T) {
	_, server := newE2EServer(t)

	resp := postJSON(t, server.URL+"/v1/normalize", map[string]string{
		"url": "https://www.example.com/article/?utm_campaign=x&id=7#comments",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from normalize, got %d", resp.StatusCode)
	}
	var norm struct {
		Canonical string `json:"canonical"`
		Hostname  string `json:"hostname"`
		IsAMP     bool   `json:"is_amp"`
	}
	decodeJSON(t, resp, &norm)
	if norm.Canonical != "example.com/article/?id=7" {
		t.Errorf("unexpected canonical: %q", norm.Canonical)
	}
	if norm.Hostname != "example.com" {
		t.Errorf("unexpected hostname: %q", norm.Hostname)
	}
	if norm.IsAMP {
		t.Error("expected is_amp false")
	}

	resp = postJSON(t, server.URL+"/v1/extract", map[string]string{
		"html":     `<a href="/a?utm_source=x">a</a><a href="https://www.example.com/a">dup</a><a href="/b">b</a>`,
		"base_url": "https://example.com/",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from extract, got %d", resp.StatusCode)
	}
	var extracted struct {
		Items []struct {
			Href      string `json:"href"`
			Canonical string `json:"canonical"`
		} `json:"items"`
	}
	decodeJSON(t, resp, &extracted)
	if len(extracted.Items) != 2 {
		t.Fatalf("expected 2 deduplicated links, got %d", len(extracted.Items))
	}
	if extracted.Items[0].Canonical != "example.com/a" || extracted.Items[1].Canonical != "example.com/b" {
		t.Errorf("unexpected canonical links: %+v", extracted.Items)
	}
}

func TestEndToEndRenormSweep(t *testing.T) {
	store, _ := newE2EServer(t)
	ctx := context.Background()

	// Seed a target whose canonical key predates the current rules.
	stale := &models.Target{
		ID:           "t_stale",
		URL:          "https://www.example.com/page?utm_source=old",
		CanonicalURL: "https://www.example.com/page?utm_source=old",
		Host:         "www.example.com",
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := store.UpsertTarget(ctx, stale, nil); err != nil {
		t.Fatalf("failed to seed target: %v", err)
	}

	sweeper := renorm.New(store, urlutil.DefaultOptions(), 0, 4)
	sweeper.Sweep(ctx)

	got, err := store.GetTargetByID(ctx, "t_stale")
	if err != nil {
		t.Fatalf("failed to fetch target after sweep: %v", err)
	}
	if got.CanonicalURL != "example.com/page" {
		t.Errorf("expected sweep to repoint canonical to example.com/page, got %q", got.CanonicalURL)
	}
	if got.Host != "example.com" {
		t.Errorf("expected sweep to update host, got %q", got.Host)
	}
}

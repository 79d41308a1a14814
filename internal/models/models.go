package models

import "time"

// Target is one deduplicated link: every submitted URL that reduces to the
// same canonical key collapses onto a single Target.
type Target struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"` // first raw form seen
	CanonicalURL string    `json:"canonical_url"`
	Host         string    `json:"host"`
	SeenCount    int64     `json:"seen_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// Sighting records one submission that resolved to a target, keeping the raw
// form and where it was seen for link-graph provenance.
type Sighting struct {
	ID       string    `json:"id"`
	TargetID string    `json:"-"` // implied by the listing route
	RawURL   string    `json:"raw_url"`
	Source   string    `json:"source,omitempty"`
	SeenAt   time.Time `json:"seen_at"`
}

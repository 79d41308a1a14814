package storage

import (
	"context"
	"errors"
	"time"

	"linknorm/internal/models"
)

var (
	// ErrDuplicateKey is returned alongside the existing row when an upsert
	// hits a target that already owns the canonical URL.
	ErrDuplicateKey = errors.New("duplicate")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
)

// ListTargetsParams contains parameters for listing targets with filtering
// and keyset pagination.
type ListTargetsParams struct {
	Host      string
	AfterTime time.Time
	AfterID   string
	Limit     int
}

// ListSightingsParams contains parameters for listing sightings of a target.
type ListSightingsParams struct {
	TargetID string
	Since    *time.Time
	Limit    int
}

// Storer is the persistence interface of the dedup registry.
type Storer interface {
	// UpsertTarget inserts a target, deduplicating on its canonical URL.
	// When the canonical URL is already registered, the existing target is
	// returned with its seen count bumped, together with ErrDuplicateKey.
	UpsertTarget(ctx context.Context, target *models.Target, idempotencyKey *string) (*models.Target, error)
	GetTargetByID(ctx context.Context, id string) (*models.Target, error)
	ListTargets(ctx context.Context, params ListTargetsParams) ([]models.Target, error)
	GetAllTargets(ctx context.Context) ([]models.Target, error)

	// ReplaceCanonicalURL points a target at a new canonical key after a
	// re-normalization sweep. If another target already owns the new key,
	// the two are merged: sightings and seen counts move to the survivor
	// and the stale target is deleted.
	ReplaceCanonicalURL(ctx context.Context, targetID, canonicalURL, host string) error

	RecordSighting(ctx context.Context, sighting *models.Sighting) error
	ListSightingsByTargetID(ctx context.Context, params ListSightingsParams) ([]models.Sighting, error)
}

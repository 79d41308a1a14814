package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linknorm/internal/models"
	"linknorm/internal/storage"
)

// PostgresStore implements the storage.Storer interface for PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// New creates a new PostgresStore and establishes a connection to the
// database. It also runs migrations to ensure the schema is up to date.
func New(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &PostgresStore{db: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

// migrate ensures the database schema is created.
func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS targets (
		id            TEXT PRIMARY KEY,
		url           TEXT NOT NULL,
		canonical_url TEXT NOT NULL UNIQUE,
		host          TEXT NOT NULL,
		seen_count    BIGINT NOT NULL DEFAULT 1,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_targets_created_at_id ON targets (created_at, id);
	CREATE INDEX IF NOT EXISTS idx_targets_host ON targets (host);

	CREATE TABLE IF NOT EXISTS sightings (
		id           TEXT PRIMARY KEY,
		target_id    TEXT NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
		raw_url      TEXT NOT NULL,
		source       TEXT,
		seen_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_sightings_target_id_seen_at ON sightings (target_id, seen_at DESC);

	CREATE TABLE IF NOT EXISTS idempotency_keys (
		key          TEXT PRIMARY KEY,
		target_id    TEXT NOT NULL REFERENCES targets(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := s.db.Exec(ctx, schema)
	return err
}

const targetColumns = `id, url, canonical_url, host, seen_count, created_at, last_seen_at`

// UpsertTarget implements the Storer interface.
func (s *PostgresStore) UpsertTarget(ctx context.Context, target *models.Target, idempotencyKey *string) (*models.Target, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if idempotencyKey != nil {
		var existingTargetID string
		err := tx.QueryRow(ctx, `SELECT target_id FROM idempotency_keys WHERE key = $1`, *idempotencyKey).Scan(&existingTargetID)
		if err == nil {
			return s.getTargetByIDTx(ctx, tx, existingTargetID)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO targets (id, url, canonical_url, host, seen_count, created_at, last_seen_at)
VALUES ($1, $2, $3, $4, 1, $5, $5)
ON CONFLICT (canonical_url) DO NOTHING`,
		target.ID, target.URL, target.CanonicalURL, target.Host, target.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert target: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var existing models.Target
		err := tx.QueryRow(ctx, `
UPDATE targets SET seen_count = seen_count + 1, last_seen_at = NOW()
WHERE canonical_url = $1
RETURNING `+targetColumns, target.CanonicalURL).Scan(
			&existing.ID, &existing.URL, &existing.CanonicalURL, &existing.Host,
			&existing.SeenCount, &existing.CreatedAt, &existing.LastSeenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to bump existing target: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &existing, storage.ErrDuplicateKey
	}

	if idempotencyKey != nil {
		if _, err := tx.Exec(ctx, `INSERT INTO idempotency_keys (key, target_id) VALUES ($1, $2)`, *idempotencyKey, target.ID); err != nil {
			return nil, fmt.Errorf("failed to record idempotency key: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	target.SeenCount = 1
	target.LastSeenAt = target.CreatedAt
	return target, nil
}

func (s *PostgresStore) getTargetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*models.Target, error) {
	var t models.Target
	err := tx.QueryRow(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = $1`, id).Scan(
		&t.ID, &t.URL, &t.CanonicalURL, &t.Host, &t.SeenCount, &t.CreatedAt, &t.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target by id: %w", err)
	}
	return &t, nil
}

// GetTargetByID implements the Storer interface.
func (s *PostgresStore) GetTargetByID(ctx context.Context, id string) (*models.Target, error) {
	var t models.Target
	err := s.db.QueryRow(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = $1`, id).Scan(
		&t.ID, &t.URL, &t.CanonicalURL, &t.Host, &t.SeenCount, &t.CreatedAt, &t.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target by id: %w", err)
	}
	return &t, nil
}

// ListTargets implements the Storer interface.
func (s *PostgresStore) ListTargets(ctx context.Context, params storage.ListTargetsParams) ([]models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets WHERE ($1 = '' OR host = $1)`
	args := []interface{}{params.Host}
	if !params.AfterTime.IsZero() && params.AfterID != "" {
		query += ` AND (created_at, id) > ($2, $3) ORDER BY created_at, id LIMIT $4`
		args = append(args, params.AfterTime, params.AfterID, params.Limit)
	} else {
		query += ` ORDER BY created_at, id LIMIT $2`
		args = append(args, params.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()
	return collectTargets(rows)
}

// GetAllTargets implements the Storer interface.
func (s *PostgresStore) GetAllTargets(ctx context.Context) ([]models.Target, error) {
	rows, err := s.db.Query(ctx, `SELECT `+targetColumns+` FROM targets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all targets: %w", err)
	}
	defer rows.Close()
	return collectTargets(rows)
}

func collectTargets(rows pgx.Rows) ([]models.Target, error) {
	var targets []models.Target
	for rows.Next() {
		var t models.Target
		if err := rows.Scan(&t.ID, &t.URL, &t.CanonicalURL, &t.Host, &t.SeenCount, &t.CreatedAt, &t.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan target row: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// ReplaceCanonicalURL implements the Storer interface.
func (s *PostgresStore) ReplaceCanonicalURL(ctx context.Context, targetID, canonicalURL, host string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT id FROM targets WHERE canonical_url = $1`, canonicalURL).Scan(&ownerID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx,
			`UPDATE targets SET canonical_url = $1, host = $2 WHERE id = $3`,
			canonicalURL, host, targetID); err != nil {
			return fmt.Errorf("failed to update canonical url: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up canonical url owner: %w", err)
	case ownerID == targetID:
		// Already pointing at the key.
	default:
		if _, err := tx.Exec(ctx, `UPDATE sightings SET target_id = $1 WHERE target_id = $2`, ownerID, targetID); err != nil {
			return fmt.Errorf("failed to move sightings: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE idempotency_keys SET target_id = $1 WHERE target_id = $2`, ownerID, targetID); err != nil {
			return fmt.Errorf("failed to move idempotency keys: %w", err)
		}
		if _, err := tx.Exec(ctx, `
UPDATE targets SET
	seen_count = seen_count + (SELECT seen_count FROM targets WHERE id = $1),
	last_seen_at = GREATEST(last_seen_at, (SELECT last_seen_at FROM targets WHERE id = $1))
WHERE id = $2`, targetID, ownerID); err != nil {
			return fmt.Errorf("failed to merge counters: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM targets WHERE id = $1`, targetID); err != nil {
			return fmt.Errorf("failed to delete merged target: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecordSighting implements the Storer interface.
func (s *PostgresStore) RecordSighting(ctx context.Context, sighting *models.Sighting) error {
	if sighting.ID == "" {
		sighting.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO sightings (id, target_id, raw_url, source, seen_at) VALUES ($1, $2, $3, $4, $5)`,
		sighting.ID, sighting.TargetID, sighting.RawURL, sighting.Source, sighting.SeenAt)
	if err != nil {
		return fmt.Errorf("failed to record sighting: %w", err)
	}
	return nil
}

// ListSightingsByTargetID implements the Storer interface.
func (s *PostgresStore) ListSightingsByTargetID(ctx context.Context, params storage.ListSightingsParams) ([]models.Sighting, error) {
	query := `SELECT id, target_id, raw_url, COALESCE(source, ''), seen_at FROM sightings WHERE target_id = $1`
	args := []interface{}{params.TargetID}
	if params.Since != nil {
		query += ` AND seen_at > $2 ORDER BY seen_at DESC LIMIT $3`
		args = append(args, *params.Since, params.Limit)
	} else {
		query += ` ORDER BY seen_at DESC LIMIT $2`
		args = append(args, params.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sightings: %w", err)
	}
	defer rows.Close()

	var sightings []models.Sighting
	for rows.Next() {
		var sg models.Sighting
		if err := rows.Scan(&sg.ID, &sg.TargetID, &sg.RawURL, &sg.Source, &sg.SeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan sighting row: %w", err)
		}
		sightings = append(sightings, sg)
	}
	return sightings, rows.Err()
}

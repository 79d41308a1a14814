package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"linknorm/internal/models"
	"linknorm/internal/storage"
)

// SQLiteStore implements the storage.Storer interface for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore and establishes a connection to the database
// file. It also runs migrations to ensure the schema is up to date.
func New(ctx context.Context, dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// migrate ensures the database schema is created.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS targets (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	canonical_url TEXT NOT NULL UNIQUE,
	host          TEXT NOT NULL,
	seen_count    INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL,
	last_seen_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_targets_created_at_id ON targets (created_at, id);
CREATE INDEX IF NOT EXISTS idx_targets_host ON targets (host);

CREATE TABLE IF NOT EXISTS sightings (
	id           TEXT PRIMARY KEY,
	target_id    TEXT NOT NULL,
	raw_url      TEXT NOT NULL,
	source       TEXT,
	seen_at      TEXT NOT NULL,
	FOREIGN KEY(target_id) REFERENCES targets(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_sightings_target_id_seen_at ON sightings (target_id, seen_at DESC);

CREATE TABLE IF NOT EXISTS idempotency_keys (
	key          TEXT PRIMARY KEY,
	target_id    TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY(target_id) REFERENCES targets(id)
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// UpsertTarget saves a target, deduplicating on its canonical URL and
// handling idempotency.
func (s *SQLiteStore) UpsertTarget(ctx context.Context, target *models.Target, idempotencyKey *string) (*models.Target, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if idempotencyKey != nil {
		var existingTargetID string
		query := `SELECT target_id FROM idempotency_keys WHERE key = ?`
		err := tx.QueryRowContext(ctx, query, *idempotencyKey).Scan(&existingTargetID)
		if err == nil {
			return s.getTargetByIDTx(ctx, tx, existingTargetID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	// Insert target if not exists by canonical URL
	query := `
INSERT INTO targets (id, url, canonical_url, host, seen_count, created_at, last_seen_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
ON CONFLICT(canonical_url) DO NOTHING`
	res, err := tx.ExecContext(ctx, query,
		target.ID, target.URL, target.CanonicalURL, target.Host,
		target.CreatedAt.Format(time.RFC3339Nano), target.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to insert target: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		// Duplicate canonical URL: bump the sighting counters on the
		// existing row and hand it back.
		now := time.Now().UTC().Format(time.RFC3339Nano)
		bump := `UPDATE targets SET seen_count = seen_count + 1, last_seen_at = ? WHERE canonical_url = ?`
		if _, err := tx.ExecContext(ctx, bump, now, target.CanonicalURL); err != nil {
			return nil, fmt.Errorf("failed to bump seen count: %w", err)
		}
		existing, err := s.getTargetByCanonicalTx(ctx, tx, target.CanonicalURL)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return existing, storage.ErrDuplicateKey
	}

	if idempotencyKey != nil {
		insertKeyQuery := `INSERT INTO idempotency_keys (key, target_id, created_at) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insertKeyQuery, *idempotencyKey, target.ID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			return nil, fmt.Errorf("failed to record idempotency key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	target.SeenCount = 1
	target.LastSeenAt = target.CreatedAt
	return target, nil
}

func scanTarget(row *sql.Row) (*models.Target, error) {
	var t models.Target
	var createdAtStr, lastSeenAtStr string
	err := row.Scan(&t.ID, &t.URL, &t.CanonicalURL, &t.Host, &t.SeenCount, &createdAtStr, &lastSeenAtStr)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
	t.LastSeenAt, _ = time.Parse(time.RFC3339Nano, lastSeenAtStr)
	return &t, nil
}

const targetColumns = `id, url, canonical_url, host, seen_count, created_at, last_seen_at`

// getTargetByIDTx retrieves a target within a transaction.
func (s *SQLiteStore) getTargetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Target, error) {
	t, err := scanTarget(tx.QueryRowContext(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target by id: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) getTargetByCanonicalTx(ctx context.Context, tx *sql.Tx, canonicalURL string) (*models.Target, error) {
	t, err := scanTarget(tx.QueryRowContext(ctx, `SELECT `+targetColumns+` FROM targets WHERE canonical_url = ?`, canonicalURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target by canonical url: %w", err)
	}
	return t, nil
}

// GetTargetByID retrieves a single target by its unique ID.
func (s *SQLiteStore) GetTargetByID(ctx context.Context, id string) (*models.Target, error) {
	t, err := scanTarget(s.db.QueryRowContext(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target by id: %w", err)
	}
	return t, nil
}

// ListTargets retrieves a paginated list of targets.
func (s *SQLiteStore) ListTargets(ctx context.Context, params storage.ListTargetsParams) ([]models.Target, error) {
	var args []interface{}
	qb := strings.Builder{}
	qb.WriteString(`SELECT ` + targetColumns + ` FROM targets WHERE 1=1`)
	if params.Host != "" {
		args = append(args, params.Host)
		qb.WriteString(" AND host = ?")
	}
	if !params.AfterTime.IsZero() && params.AfterID != "" {
		args = append(args, params.AfterTime.Format(time.RFC3339Nano), params.AfterID)
		qb.WriteString(" AND (created_at, id) > (?, ?)")
	}
	qb.WriteString(" ORDER BY created_at, id LIMIT ?")
	args = append(args, params.Limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()
	return collectTargets(rows)
}

// GetAllTargets retrieves all targets from the database.
func (s *SQLiteStore) GetAllTargets(ctx context.Context) ([]models.Target, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+targetColumns+` FROM targets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all targets: %w", err)
	}
	defer rows.Close()
	return collectTargets(rows)
}

func collectTargets(rows *sql.Rows) ([]models.Target, error) {
	var targets []models.Target
	for rows.Next() {
		var t models.Target
		var createdAtStr, lastSeenAtStr string
		if err := rows.Scan(&t.ID, &t.URL, &t.CanonicalURL, &t.Host, &t.SeenCount, &createdAtStr, &lastSeenAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan target row: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
		t.LastSeenAt, _ = time.Parse(time.RFC3339Nano, lastSeenAtStr)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// ReplaceCanonicalURL points a target at a new canonical key, merging it
// into an existing owner of that key when there is one.
func (s *SQLiteStore) ReplaceCanonicalURL(ctx context.Context, targetID, canonicalURL, host string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM targets WHERE canonical_url = ?`, canonicalURL).Scan(&ownerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Key is free: a plain repoint.
		if _, err := tx.ExecContext(ctx,
			`UPDATE targets SET canonical_url = ?, host = ? WHERE id = ?`,
			canonicalURL, host, targetID); err != nil {
			return fmt.Errorf("failed to update canonical url: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up canonical url owner: %w", err)
	case ownerID == targetID:
		// Already pointing at the key.
	default:
		// Merge: provenance and counters move to the surviving target.
		if _, err := tx.ExecContext(ctx,
			`UPDATE sightings SET target_id = ? WHERE target_id = ?`, ownerID, targetID); err != nil {
			return fmt.Errorf("failed to move sightings: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE idempotency_keys SET target_id = ? WHERE target_id = ?`, ownerID, targetID); err != nil {
			return fmt.Errorf("failed to move idempotency keys: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE targets SET
	seen_count = seen_count + (SELECT seen_count FROM targets WHERE id = ?),
	last_seen_at = MAX(last_seen_at, (SELECT last_seen_at FROM targets WHERE id = ?))
WHERE id = ?`, targetID, targetID, ownerID); err != nil {
			return fmt.Errorf("failed to merge counters: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, targetID); err != nil {
			return fmt.Errorf("failed to delete merged target: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecordSighting saves a new sighting to the database.
func (s *SQLiteStore) RecordSighting(ctx context.Context, sighting *models.Sighting) error {
	if sighting.ID == "" {
		sighting.ID = uuid.NewString()
	}
	query := `INSERT INTO sightings (id, target_id, raw_url, source, seen_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		sighting.ID, sighting.TargetID, sighting.RawURL, sighting.Source,
		sighting.SeenAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record sighting: %w", err)
	}
	return nil
}

// ListSightingsByTargetID retrieves recent sightings of a target.
func (s *SQLiteStore) ListSightingsByTargetID(ctx context.Context, params storage.ListSightingsParams) ([]models.Sighting, error) {
	args := []interface{}{params.TargetID}
	qb := strings.Builder{}
	qb.WriteString("SELECT id, target_id, raw_url, source, seen_at FROM sightings WHERE target_id = ?")
	if params.Since != nil {
		args = append(args, params.Since.Format(time.RFC3339Nano))
		qb.WriteString(" AND seen_at > ?")
	}
	qb.WriteString(" ORDER BY seen_at DESC LIMIT ?")
	args = append(args, params.Limit)
	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sightings: %w", err)
	}
	defer rows.Close()
	var sightings []models.Sighting
	for rows.Next() {
		var sg models.Sighting
		var source sql.NullString
		var seenAtStr string
		if err := rows.Scan(&sg.ID, &sg.TargetID, &sg.RawURL, &source, &seenAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan sighting row: %w", err)
		}
		sg.Source = source.String
		sg.SeenAt, _ = time.Parse(time.RFC3339Nano, seenAtStr)
		sightings = append(sightings, sg)
	}
	return sightings, rows.Err()
}

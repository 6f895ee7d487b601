package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRunConflict is returned when another run already holds the
// ingestion lease for a document version.
var ErrRunConflict = errors.New("ingestion already in progress for this version")

// DefaultLeaseTTL bounds how long a crashed owner can block a version.
const DefaultLeaseTTL = 15 * time.Minute

// AcquireLease takes the per-version ingestion lease, failing fast with
// ErrRunConflict when a live owner holds it. A lease older than ttl is
// treated as abandoned and taken over.
func (s *Store) AcquireLease(ctx context.Context, versionID, owner string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	res, err := tx.ExecContext(ctx, `INSERT INTO lease(version_id, owner, acquired_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(version_id) DO NOTHING`, versionID, owner)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return tx.Commit()
	}
	var curOwner string
	var acquiredAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT owner, acquired_at FROM lease WHERE version_id = ?`,
		versionID).Scan(&curOwner, &acquiredAt); err != nil {
		return err
	}
	if time.Since(acquiredAt) <= ttl {
		return fmt.Errorf("version %s held by %s: %w", versionID, curOwner, ErrRunConflict)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE lease SET owner = ?, acquired_at = CURRENT_TIMESTAMP
		WHERE version_id = ?`, owner, versionID); err != nil {
		return err
	}
	return tx.Commit()
}

// ReleaseLease releases the lease if held by this owner.
func (s *Store) ReleaseLease(ctx context.Context, versionID, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lease WHERE version_id = ? AND owner = ?`, versionID, owner)
	return err
}

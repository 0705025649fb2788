package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by LatestSnapshot when a document has no
// snapshot yet. Callers fall back to a full-log replay.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is one compacted document state: the versioned binary
// encoding of the full block list, plus the total historical operation
// count at creation time. Replaying the log tail from OperationCount on
// top of Data must be state-equivalent to a full replay.
type Snapshot struct {
	ID             string
	DocumentID     string
	Data           []byte
	CreatedAt      int64
	OperationCount int64
}

// WriteSnapshot inserts a snapshot row.
func (s *Store) WriteSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, document_id, snapshot_data, created_at, operation_count)
		VALUES (?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.DocumentID,
		snap.Data,
		snap.CreatedAt,
		snap.OperationCount,
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a document, or
// ErrNoSnapshot if none exists. Snapshot ids are UUIDv7, so the id is a
// stable tiebreaker for snapshots created in the same millisecond.
func (s *Store) LatestSnapshot(ctx context.Context, documentID string) (Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, snapshot_data, created_at, operation_count
		FROM snapshots
		WHERE document_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, documentID).Scan(&snap.ID, &snap.DocumentID, &snap.Data, &snap.CreatedAt, &snap.OperationCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns all snapshots for a document, newest first,
// without the binary payload.
func (s *Store) ListSnapshots(ctx context.Context, documentID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, created_at, operation_count
		FROM snapshots
		WHERE document_id = ?
		ORDER BY created_at DESC, id DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.DocumentID, &snap.CreatedAt, &snap.OperationCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	if snaps == nil {
		snaps = []Snapshot{}
	}

	return snaps, nil
}

// PruneSnapshots deletes all but the keep most recent snapshots for a
// document. Called immediately after a new snapshot commits.
func (s *Store) PruneSnapshots(ctx context.Context, documentID string, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE document_id = ?
		  AND id NOT IN (
			SELECT id FROM snapshots
			WHERE document_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		  )
	`, documentID, documentID, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/inkwell/internal/block"
)

// AppendOperation inserts one operation-log row and returns its assigned
// ordinal id. The log is append-only: rows are never updated or deleted.
//
// The engine calls this BEFORE applying the operation in memory; if the
// insert fails the operation must not be applied, because the log is the
// source of truth.
func (s *Store) AppendOperation(ctx context.Context, rec block.Record) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO operations
		(document_id, operation_type, block_id, operation_data, applied_at,
		 source, user_id, checksum, batch_id, request_id, origin_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.DocumentID,
		string(rec.OperationType),
		rec.BlockID,
		rec.OperationData,
		rec.AppliedAt,
		string(rec.Source),
		nullable(rec.UserID),
		rec.Checksum,
		nullable(rec.BatchID),
		nullable(rec.RequestID),
		rec.OriginData,
	)
	if err != nil {
		return 0, fmt.Errorf("append operation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append operation: last insert id: %w", err)
	}

	return id, nil
}

// ReadOperations returns a document's operations in application order,
// starting at ordinal offset: 0 for a full replay, or a snapshot's
// operation count for a tail replay.
func (s *Store) ReadOperations(ctx context.Context, documentID string, offset int64) ([]block.Record, error) {
	// Rowid order is both application order and insertion order, so
	// same-millisecond ties keep their submission order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, operation_type, block_id, operation_data,
		       applied_at, source, user_id, checksum, batch_id, request_id, origin_data
		FROM operations
		WHERE document_id = ?
		ORDER BY id ASC
		LIMIT -1 OFFSET ?
	`, documentID, offset)
	if err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}
	defer rows.Close()

	var records []block.Record
	for rows.Next() {
		rec, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	if records == nil {
		records = []block.Record{}
	}

	return records, nil
}

// ReadBatch returns the operations persisted under one batch id, across
// documents, in application order. Used by audit tooling.
func (s *Store) ReadBatch(ctx context.Context, batchID string) ([]block.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, operation_type, block_id, operation_data,
		       applied_at, source, user_id, checksum, batch_id, request_id, origin_data
		FROM operations
		WHERE batch_id = ?
		ORDER BY id ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	defer rows.Close()

	var records []block.Record
	for rows.Next() {
		rec, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch: %w", err)
	}

	if records == nil {
		records = []block.Record{}
	}

	return records, nil
}

// CountOperations returns the total historical operation count for a
// document. This is the authoritative "how many operations ever applied"
// figure used for snapshot bookkeeping.
func (s *Store) CountOperations(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM operations WHERE document_id = ?
	`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return count, nil
}

// scanOperation reads one operations row from a rows cursor.
func scanOperation(rows *sql.Rows) (block.Record, error) {
	var rec block.Record
	var opType, source string
	var userID, batchID, requestID sql.NullString

	err := rows.Scan(
		&rec.ID,
		&rec.DocumentID,
		&opType,
		&rec.BlockID,
		&rec.OperationData,
		&rec.AppliedAt,
		&source,
		&userID,
		&rec.Checksum,
		&batchID,
		&requestID,
		&rec.OriginData,
	)
	if err != nil {
		return block.Record{}, fmt.Errorf("scan operation: %w", err)
	}

	rec.OperationType = block.OpType(opType)
	rec.Source = block.Source(source)
	rec.UserID = userID.String
	rec.BatchID = batchID.String
	rec.RequestID = requestID.String

	return rec, nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

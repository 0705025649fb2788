package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Document is one row of descriptive document metadata. It exists for
// listings and diagnostics only; the operation log is the sole
// authoritative state source.
type Document struct {
	ID         string
	Title      string
	CreatedAt  int64
	UpdatedAt  int64
	BlockCount int
}

// ErrNoDocument is returned by GetDocument for an unknown id.
var ErrNoDocument = errors.New("no document")

// TouchDocument upserts a document's metadata row after a transaction:
// block count and updated_at change, created_at is set only on first
// insert. Title is left alone (see SetDocumentTitle).
func (s *Store) TouchDocument(ctx context.Context, documentID string, blockCount int, now int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, created_at, updated_at, block_count)
		VALUES (?, '', ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			block_count = excluded.block_count
	`, documentID, now, now, blockCount)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

// SetDocumentTitle updates a document's stored title. Titles are NFC
// normalized so listings compare and sort consistently regardless of how
// the editor composed the input.
func (s *Store) SetDocumentTitle(ctx context.Context, documentID, title string, now int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, created_at, updated_at, block_count)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`, documentID, norm.NFC.String(title), now, now)
	if err != nil {
		return fmt.Errorf("set document title: %w", err)
	}
	return nil
}

// GetDocument returns one document's metadata, or ErrNoDocument.
func (s *Store) GetDocument(ctx context.Context, documentID string) (Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at, block_count
		FROM documents
		WHERE id = ?
	`, documentID).Scan(&doc.ID, &doc.Title, &doc.CreatedAt, &doc.UpdatedAt, &doc.BlockCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNoDocument
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all document metadata rows ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at, block_count
		FROM documents
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.CreatedAt, &doc.UpdatedAt, &doc.BlockCount); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if docs == nil {
		docs = []Document{}
	}

	return docs, nil
}

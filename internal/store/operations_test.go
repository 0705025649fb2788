package store

import (
	"context"
	"testing"

	"github.com/roach88/inkwell/internal/block"
)

func TestAppendOperation_AssignsIncreasingIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.AppendOperation(ctx, createTestRecord("doc-1", "b1", block.OpInsert, 1000))
		if err != nil {
			t.Fatalf("AppendOperation() failed: %v", err)
		}
		if id <= last {
			t.Errorf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestReadOperations_OrderAndOffset(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Same applied_at for all rows: insertion order must still hold.
	blockIDs := []string{"b1", "b2", "b3", "b4"}
	for _, id := range blockIDs {
		if _, err := s.AppendOperation(ctx, createTestRecord("doc-1", id, block.OpInsert, 1000)); err != nil {
			t.Fatalf("AppendOperation() failed: %v", err)
		}
	}

	all, err := s.ReadOperations(ctx, "doc-1", 0)
	if err != nil {
		t.Fatalf("ReadOperations() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d records, want 4", len(all))
	}
	for i, rec := range all {
		if rec.BlockID != blockIDs[i] {
			t.Errorf("record %d: block %s, want %s", i, rec.BlockID, blockIDs[i])
		}
	}

	tail, err := s.ReadOperations(ctx, "doc-1", 2)
	if err != nil {
		t.Fatalf("ReadOperations(offset=2) failed: %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("got %d tail records, want 2", len(tail))
	}
	if tail[0].BlockID != "b3" || tail[1].BlockID != "b4" {
		t.Errorf("tail = [%s, %s], want [b3, b4]", tail[0].BlockID, tail[1].BlockID)
	}
}

func TestReadOperations_ScopedToDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.AppendOperation(ctx, createTestRecord("doc-1", "b1", block.OpInsert, 1000)); err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}
	if _, err := s.AppendOperation(ctx, createTestRecord("doc-2", "b2", block.OpInsert, 1000)); err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}

	records, err := s.ReadOperations(ctx, "doc-1", 0)
	if err != nil {
		t.Fatalf("ReadOperations() failed: %v", err)
	}
	if len(records) != 1 || records[0].BlockID != "b1" {
		t.Errorf("expected only doc-1 operations, got %+v", records)
	}
}

func TestReadOperations_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	records, err := s.ReadOperations(context.Background(), "missing", 0)
	if err != nil {
		t.Fatalf("ReadOperations() failed: %v", err)
	}
	if records == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestCountOperations(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	count, err := s.CountOperations(ctx, "doc-1")
	if err != nil {
		t.Fatalf("CountOperations() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh count = %d, want 0", count)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.AppendOperation(ctx, createTestRecord("doc-1", "b1", block.OpUpdate, 1000)); err != nil {
			t.Fatalf("AppendOperation() failed: %v", err)
		}
	}

	count, err = s.CountOperations(ctx, "doc-1")
	if err != nil {
		t.Fatalf("CountOperations() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestReadBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRecord("doc-1", "b1", block.OpInsert, 1000)
	rec.BatchID = "batch-7"
	if _, err := s.AppendOperation(ctx, rec); err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}
	other := createTestRecord("doc-1", "b2", block.OpInsert, 1000)
	other.BatchID = "batch-8"
	if _, err := s.AppendOperation(ctx, other); err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}

	records, err := s.ReadBatch(ctx, "batch-7")
	if err != nil {
		t.Fatalf("ReadBatch() failed: %v", err)
	}
	if len(records) != 1 || records[0].BlockID != "b1" {
		t.Errorf("batch lookup returned %+v", records)
	}
}

func TestAppendOperation_NullableColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Empty user/batch/request ids persist as NULL and scan back as "".
	rec := createTestRecord("doc-1", "b1", block.OpDelete, 1000)
	rec.UserID = ""
	rec.BatchID = ""
	rec.RequestID = ""
	if _, err := s.AppendOperation(ctx, rec); err != nil {
		t.Fatalf("AppendOperation() failed: %v", err)
	}

	records, err := s.ReadOperations(ctx, "doc-1", 0)
	if err != nil {
		t.Fatalf("ReadOperations() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.UserID != "" || got.BatchID != "" || got.RequestID != "" {
		t.Errorf("nullable columns not empty: %+v", got)
	}
	if got.Checksum != "deadbeef" {
		t.Errorf("checksum = %q, want deadbeef", got.Checksum)
	}
}

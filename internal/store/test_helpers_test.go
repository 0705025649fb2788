package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/inkwell/internal/block"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates an operation record with minimal required fields.
func createTestRecord(docID, blockID string, opType block.OpType, appliedAt int64) block.Record {
	return block.Record{
		DocumentID:    docID,
		OperationType: opType,
		BlockID:       blockID,
		OperationData: `{"type":"` + string(opType) + `","blockId":"` + blockID + `"}`,
		AppliedAt:     appliedAt,
		Source:        block.SourceUser,
		Checksum:      "deadbeef",
		OriginData:    `{"source":"user"}`,
	}
}

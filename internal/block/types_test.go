package block

import (
	"encoding/json"
	"testing"
)

func TestBlockClone_Independent(t *testing.T) {
	original := Block{
		ID:    "b1",
		Type:  "paragraph",
		Props: map[string]any{"text": "hello"},
		Children: []Block{
			{ID: "b2", Type: "paragraph", Props: map[string]any{"text": "child"}},
		},
	}

	clone := original.Clone()
	clone.Props["text"] = "mutated"
	clone.Children[0].Props["text"] = "mutated"

	if original.Props["text"] != "hello" {
		t.Error("clone shares props with original")
	}
	if original.Children[0].Props["text"] != "child" {
		t.Error("clone shares child props with original")
	}
}

func TestCloneBlocks_NilStaysNil(t *testing.T) {
	if CloneBlocks(nil) != nil {
		t.Error("CloneBlocks(nil) should be nil")
	}
}

func TestRecord_OperationRoundTrip(t *testing.T) {
	pos := 2
	op := Operation{
		Type:     OpInsert,
		BlockID:  "b1",
		Position: &pos,
		Block:    &Block{ID: "b1", Type: "paragraph"},
		Source:   SourceUser,
	}

	data, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := Record{OperationData: string(data), OriginData: `{"source":"user"}`}

	got, err := rec.Operation()
	if err != nil {
		t.Fatalf("Record.Operation() failed: %v", err)
	}
	if got.Type != OpInsert || got.BlockID != "b1" || got.Position == nil || *got.Position != 2 {
		t.Errorf("operation not preserved: %+v", got)
	}

	origin, err := rec.Origin()
	if err != nil {
		t.Fatalf("Record.Origin() failed: %v", err)
	}
	if origin.Source != SourceUser {
		t.Errorf("origin source = %q, want user", origin.Source)
	}
}

func TestRecord_MalformedOperation(t *testing.T) {
	rec := Record{OperationData: "{truncated"}
	if _, err := rec.Operation(); err == nil {
		t.Error("expected error for malformed operation data")
	}
}

func TestOpType_Valid(t *testing.T) {
	for _, typ := range []OpType{OpInsert, OpUpdate, OpDelete, OpMove} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if OpType("merge").Valid() {
		t.Error("unknown type should be invalid")
	}
}

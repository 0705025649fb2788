package block

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestEncodeState_RoundTrip(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Type: "paragraph", Props: map[string]any{"text": "hello"}},
		{ID: "b2", Type: "heading", Props: map[string]any{"level": float64(2), "text": "Title"}},
		{ID: "b3", Type: "bulletListItem", Children: []Block{
			{ID: "b4", Type: "paragraph", Props: map[string]any{"text": "nested"}},
		}},
	}

	data, err := EncodeState(blocks)
	if err != nil {
		t.Fatalf("EncodeState() failed: %v", err)
	}

	decoded, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}

	if len(decoded) != len(blocks) {
		t.Fatalf("got %d blocks, want %d", len(decoded), len(blocks))
	}
	for i := range blocks {
		if decoded[i].ID != blocks[i].ID || decoded[i].Type != blocks[i].Type {
			t.Errorf("block %d: got %s/%s, want %s/%s",
				i, decoded[i].ID, decoded[i].Type, blocks[i].ID, blocks[i].Type)
		}
	}
	if len(decoded[2].Children) != 1 || decoded[2].Children[0].ID != "b4" {
		t.Errorf("nested children not preserved: %+v", decoded[2].Children)
	}
}

func TestEncodeState_NilIsEmptyDocument(t *testing.T) {
	data, err := EncodeState(nil)
	if err != nil {
		t.Fatalf("EncodeState() failed: %v", err)
	}

	decoded, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}
	if decoded == nil {
		t.Error("decoded blocks should be empty slice, not nil")
	}
	if len(decoded) != 0 {
		t.Errorf("got %d blocks, want 0", len(decoded))
	}
}

func TestDecodeState_RejectsUnknownVersion(t *testing.T) {
	if _, err := DecodeState([]byte(`{"version":99,"blocks":[]}`)); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestDecodeState_RejectsGarbage(t *testing.T) {
	if _, err := DecodeState([]byte("not a snapshot")); err == nil {
		t.Error("expected error for malformed snapshot")
	}
}

// TestEncodeState_Golden pins the on-disk snapshot byte format. A diff
// here means the encoding changed and StateVersion must be bumped.
func TestEncodeState_Golden(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Type: "paragraph", Props: map[string]any{"text": "Hello"}},
		{ID: "b2", Type: "heading", Props: map[string]any{"level": 2, "text": "Title"}},
		{ID: "b3", Type: "bulletListItem", Children: []Block{
			{ID: "b4", Type: "paragraph"},
		}},
	}

	data, err := EncodeState(blocks)
	if err != nil {
		t.Fatalf("EncodeState() failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "state_v1", data)
}

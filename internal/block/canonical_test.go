package block

import (
	"testing"
)

func TestMarshalCanonical_SortsObjectKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	}

	data, err := marshalCanonical(obj)
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	want := `{"alpha":2,"mango":3,"zebra":1}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_NFCNormalizesStrings(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) and U+00E9 (precomposed) must
	// canonicalize identically.
	decomposed, err := marshalCanonical("cafe\u0301")
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}
	precomposed, err := marshalCanonical("caf\u00e9")
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	if string(decomposed) != string(precomposed) {
		t.Errorf("NFC mismatch: %q vs %q", decomposed, precomposed)
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := marshalCanonical("<b> & </b>")
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	want := `"<b> & </b>"`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_IntegralFloatsAsIntegers(t *testing.T) {
	data, err := marshalCanonical(map[string]any{"level": float64(2)})
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	want := `{"level":2}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_Structs(t *testing.T) {
	op := Operation{
		Type:    OpInsert,
		BlockID: "b1",
		Block:   &Block{ID: "b1", Type: "paragraph"},
	}

	first, err := marshalCanonical(op)
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}
	second, err := marshalCanonical(op)
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("non-deterministic output: %s vs %s", first, second)
	}
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	data, err := marshalCanonical([]any{"a", 1, map[string]any{"k": true}, nil})
	if err != nil {
		t.Fatalf("marshalCanonical() failed: %v", err)
	}

	want := `["a",1,{"k":true},null]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

package canonicalize

import (
	"testing"
)

func TestCanonicalizeStableAcrossKeyOrder(t *testing.T) {
	a := map[string]any{"b": 1, "a": "x", "c": []any{"y", "z"}}
	b := map[string]any{"c": []any{"y", "z"}, "a": "x", "b": 1}

	ca, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("canonicalize a: %v", err)
	}
	cb, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("canonicalize b: %v", err)
	}
	if string(ca) != string(cb) {
		t.Errorf("canonical forms differ: %s vs %s", ca, cb)
	}
}

func TestCanonicalizeSortsKeys(t *testing.T) {
	got, err := Canonicalize(map[string]any{"z": 1, "a": 2})
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	want := `{"a":2,"z":1}`
	if string(got) != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCanonicalizeNoHTMLEscaping(t *testing.T) {
	got, err := Canonicalize(map[string]any{"k": "<a>&</a>"})
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	want := `{"k":"<a>&</a>"}`
	if string(got) != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCanonicalHashDeterministic(t *testing.T) {
	type entry struct {
		ID   string `json:"id"`
		Seq  int    `json:"seq"`
		Note string `json:"note,omitempty"`
	}
	h1, err := CanonicalHash(entry{ID: "e-1", Seq: 3})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := CanonicalHash(entry{ID: "e-1", Seq: 3})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not deterministic: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}

	h3, err := CanonicalHash(entry{ID: "e-1", Seq: 4})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h3 {
		t.Error("different content should produce different hashes")
	}
}

package index

import (
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"":           KindAuto,
		"auto":       KindAuto,
		" Brute ":    KindBrute,
		"bruteforce": KindBrute,
		"COVER":      KindCover,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseKind("hnsw"); err == nil {
		t.Fatalf("ParseKind(hnsw) expected error")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(KindAuto, 10, 300); got != KindBrute {
		t.Fatalf("Resolve(auto, small) = %q, want brute", got)
	}
	if got := Resolve(KindAuto, 3000000, 300); got != KindCover {
		t.Fatalf("Resolve(auto, large) = %q, want cover", got)
	}
	if got := Resolve(KindAuto, 5000, 400); got != KindBrute {
		t.Fatalf("Resolve(auto, sparse) = %q, want brute", got)
	}
	if got := Resolve(KindCover, 1, 1); got != KindCover {
		t.Fatalf("Resolve(cover) = %q, want cover", got)
	}
	if got := Resolve(KindBrute, 3000000, 300); got != KindBrute {
		t.Fatalf("Resolve(brute) = %q, want brute", got)
	}
}

func TestNewAgreesAcrossKinds(t *testing.T) {
	ids := []string{"cat", "dog", "car", "kitten", "truck"}
	vecs := [][]float32{
		{1, 0.1, 0},
		{0.9, 0.3, 0.1},
		{0, 1, 0.2},
		{0.95, 0.05, 0.02},
		{0.1, 0.9, 0.4},
	}
	query := []float32{1, 0, 0}

	var results [][]string
	for _, kind := range []Kind{KindBrute, KindCover} {
		idx := New(kind, len(ids), 3)
		if err := idx.Build(ids, vecs); err != nil {
			t.Fatalf("%s Build failed: %v", kind, err)
		}
		if idx.Len() != len(ids) {
			t.Fatalf("%s Len = %d, want %d", kind, idx.Len(), len(ids))
		}
		got, _, err := idx.Query(query, 3)
		if err != nil {
			t.Fatalf("%s Query failed: %v", kind, err)
		}
		results = append(results, got)
	}
	for i := range results[0] {
		if results[0][i] != results[1][i] {
			t.Fatalf("brute %v and cover %v disagree", results[0], results[1])
		}
	}
}

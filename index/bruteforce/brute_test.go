package bruteforce

import (
	"math"
	"testing"
)

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := &Index{}
	ids := []string{"a", "b", "c", "zero", "d"}
	vecs := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
		{0, 0},
		{-1, 0},
	}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 5 || idx.Dim() != 2 {
		t.Fatalf("Len/Dim = %d/%d, want 5/2", idx.Len(), idx.Dim())
	}
	return idx
}

func TestQueryOrdersByCosine(t *testing.T) {
	idx := buildIndex(t)

	ids, scores, err := idx.Query([]float32{2, 0}, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []string{"a", "c", "b"}
	if len(ids) != len(want) {
		t.Fatalf("Query returned %v, want %v", ids, want)
	}
	for n := range want {
		if ids[n] != want[n] {
			t.Fatalf("Query ids = %v, want %v", ids, want)
		}
	}
	if math.Abs(scores[0]-1) > 1e-9 || math.Abs(scores[1]-math.Sqrt2/2) > 1e-6 || math.Abs(scores[2]) > 1e-9 {
		t.Fatalf("Query scores = %v", scores)
	}
}

func TestQuerySkipsZeroVectorsAndReturnsAll(t *testing.T) {
	idx := buildIndex(t)

	ids, scores, err := idx.Query([]float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("Query(k=0) returned %d ids, want 4 (zero vector skipped): %v", len(ids), ids)
	}
	for n := 1; n < len(scores); n++ {
		if scores[n] > scores[n-1] {
			t.Fatalf("scores not non-increasing: %v", scores)
		}
	}
	if ids[len(ids)-1] != "d" {
		t.Fatalf("opposite vector should rank last, got %v", ids)
	}
}

func TestQueryTiesKeepBuildOrder(t *testing.T) {
	idx := &Index{}
	ids := []string{"x", "y", "z", "w"}
	vecs := [][]float32{{1, 0}, {2, 0}, {3, 0}, {0, 1}}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		got, _, err := idx.Query([]float32{1, 0}, 2)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 2 || got[0] != "x" || got[1] != "y" {
			t.Fatalf("tie order = %v, want [x y]", got)
		}
	}
}

func TestQueryErrors(t *testing.T) {
	idx := buildIndex(t)
	if _, _, err := idx.Query([]float32{1, 0, 0}, 1); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
	ids, _, err := idx.Query([]float32{0, 0}, 1)
	if err != nil || ids != nil {
		t.Fatalf("zero query = %v, %v; want nil, nil", ids, err)
	}
	empty := &Index{}
	ids, _, err = empty.Query([]float32{1}, 1)
	if err != nil || ids != nil {
		t.Fatalf("empty index query = %v, %v; want nil, nil", ids, err)
	}
}

func TestBuildValidation(t *testing.T) {
	idx := &Index{}
	if err := idx.Build([]string{"a"}, nil); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if err := idx.Build([]string{"a", "b"}, [][]float32{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected inconsistent dims error")
	}
}

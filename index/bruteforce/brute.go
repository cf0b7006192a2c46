package bruteforce

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/DanielSebasCM/research-stay-2024/vector"
)

// Index is a brute-force vector index implementing cosine similarity.
type Index struct {
	ids  []string
	vecs [][]float32
	dim  int
	mags []float64
}

// Build loads ids and vectors and precomputes magnitudes.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.mags, i.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	mags := make([]float64, len(vectors))
	for j, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(v), dim)
		}
		mags[j] = math.Sqrt(vector.Dot(v, v))
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.ids) }

// Dim returns the vector dimension, 0 for an empty index.
func (i *Index) Dim() int { return i.dim }

// Query returns top-k by cosine similarity. Zero-magnitude entries cannot be
// scored and are skipped.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := math.Sqrt(vector.Dot(query, query))
	if qm == 0 {
		return nil, nil, nil
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	h := make(minHeap, 0, k)
	for j := range i.vecs {
		if i.mags[j] == 0 {
			continue
		}
		s := vector.Dot(query, i.vecs[j]) / (qm * i.mags[j])
		if math.IsNaN(s) {
			continue
		}
		c := candidate{idx: j, score: s}
		if h.Len() < k {
			heap.Push(&h, c)
		} else if c.better(h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}
	sort.Slice(h, func(a, b int) bool { return h[a].better(h[b]) })
	outIDs := make([]string, len(h))
	outScores := make([]float64, len(h))
	for n, c := range h {
		outIDs[n] = i.ids[c.idx]
		outScores[n] = c.score
	}
	return outIDs, outScores, nil
}

type candidate struct {
	idx   int
	score float64
}

// better orders by descending score, then by build order.
func (c candidate) better(o candidate) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	return c.idx < o.idx
}

// minHeap keeps the worst retained candidate at the root.
type minHeap []candidate

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(a, b int) bool  { return h[b].better(h[a]) }
func (h minHeap) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

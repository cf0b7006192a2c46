package cover

import (
	"errors"
	"math"
	"sort"

	"github.com/DanielSebasCM/research-stay-2024/index/bruteforce"
	"github.com/DanielSebasCM/research-stay-2024/internal/cover/tree"
	"github.com/DanielSebasCM/research-stay-2024/vector"
)

// Option customises a cover index.
type Option func(*Index)

// WithBase sets the cover-tree expansion base (> 1).
func WithBase(base float32) Option {
	return func(i *Index) {
		if base > 1 {
			i.base = base
		}
	}
}

// Index implements a cosine kNN index over a cover tree.
type Index struct {
	base float32
	ids  []string
	vecs [][]float32
	dim  int
	tree *tree.Tree[int]
}

// New creates an empty cover index.
func New(opts ...Option) *Index {
	i := &Index{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build constructs the tree. Zero-magnitude vectors are kept for persistence
// but not inserted, since they have no cosine similarity to anything.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return errors.New("cover: ids/vectors length mismatch")
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = 0
	i.tree = tree.NewTree[int](i.base, tree.EuclideanDistance)
	if len(vectors) == 0 {
		return nil
	}
	i.dim = len(vectors[0])
	for j, v := range vectors {
		if len(v) != i.dim {
			return errors.New("cover: inconsistent dims")
		}
		if vector.Magnitude(v) == 0 {
			continue
		}
		i.tree.Insert(j, tree.NewPoint(vector.Normalize(v)...))
	}
	return nil
}

// Len returns the number of vectors the index was built from.
func (i *Index) Len() int { return len(i.ids) }

// Query returns up to k ids ordered by decreasing cosine similarity. Scores
// are recomputed exactly from the stored vectors.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.dim == 0 || i.tree == nil || i.tree.Len() == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, errors.New("cover: query dim mismatch")
	}
	if vector.Magnitude(query) == 0 {
		return nil, nil, nil
	}
	if k <= 0 || k > i.tree.Len() {
		k = i.tree.Len()
	}
	found := i.tree.KNearestNeighbors(tree.NewPoint(vector.Normalize(query)...), k)
	type hit struct {
		idx   int
		score float64
	}
	hits := make([]hit, 0, len(found))
	for _, n := range found {
		idx := i.tree.Value(n.Point)
		s, err := vector.CosineSimilarity(query, i.vecs[idx])
		if err != nil || math.IsNaN(s) {
			continue
		}
		hits = append(hits, hit{idx: idx, score: s})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})
	ids := make([]string, len(hits))
	scores := make([]float64, len(hits))
	for n, h := range hits {
		ids[n] = i.ids[h.idx]
		scores[n] = h.score
	}
	return ids, scores, nil
}

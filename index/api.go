package index

// Index is a cosine-similarity kNN index over (id, embedding) pairs.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length and all vectors the same
	// dimension.
	Build(ids []string, vectors [][]float32) error

	// Query returns up to k matches as parallel slices of ids and scores,
	// ordered by descending cosine similarity. Equal scores keep build order.
	// k <= 0 returns every scorable entry.
	Query(query []float32, k int) (ids []string, scores []float64, err error)

	// Len returns the number of indexed vectors.
	Len() int
}

// Package index defines a minimal abstraction for vector indexes that can be
// built from term embeddings, queried for cosine kNN, and serialized for
// persistence. Implementations: bruteforce (exact scan) and cover (exact
// cover-tree search for large vocabularies).
package index

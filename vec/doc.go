// Package vec exposes an embedding space to SQL as a read-only virtual table
// with MATCH semantics:
//
//	CREATE VIRTUAL TABLE nn USING vec_neighbors(k=5);
//	SELECT term, score FROM nn WHERE query MATCH 'gato';
//
// Rows come back ordered by descending cosine similarity. A score >= or >
// constraint is pushed down to the space query. An unknown query term yields
// no rows.
package vec

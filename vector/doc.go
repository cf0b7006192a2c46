// Package vector holds the float32 vector helpers shared by the index, store
// and space packages:
//   - BLOB encoding of embeddings for SQLite columns
//   - cosine similarity, magnitude and unit normalization
package vector

// Package bruteforce provides an exact vector index that answers kNN queries
// by scoring every vector with cosine similarity. It supports a compact
// binary format that the cover index reuses for persistence.
package bruteforce

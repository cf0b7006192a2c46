// Package cover provides an exact cosine kNN index backed by the cover tree in
// internal/cover/tree. Vectors are unit-normalized and searched by Euclidean
// distance, which ranks identically to cosine similarity while satisfying the
// triangle inequality the tree prunes with. It persists in the brute-force
// binary format.
package cover

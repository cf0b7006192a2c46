// Package space holds an in-memory word-embedding space: a vocabulary of
// unique terms, their vectors, and a cosine kNN index over them.
package space

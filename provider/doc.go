// Package provider resolves a model name to a ready embedding.Space. A name
// is a sqlite:<path> store, a path to a word2vec or GloVe file, or a dataset
// name looked up in a gensim-data style directory and downloaded on demand.
package provider

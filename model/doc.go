// Package model reads and writes word-embedding files in the word2vec binary
// and text formats. The text reader also accepts GloVe files, which carry no
// header line.
package model

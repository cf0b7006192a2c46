package model

import (
	"fmt"
	"strings"
)

// Format identifies an on-disk embedding layout.
type Format int

const (
	// FormatAuto sniffs the layout from the file contents.
	FormatAuto Format = iota
	// FormatBinary is the word2vec C binary layout.
	FormatBinary
	// FormatText is the word2vec text layout, with or without a header.
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	}
	return "auto"
}

// ParseFormat parses a format name; the empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "binary", "bin":
		return FormatBinary, nil
	case "text", "txt", "glove":
		return FormatText, nil
	}
	return FormatAuto, fmt.Errorf("model: unknown format %q", s)
}

// Embeddings is a decoded embedding file: terms in file order and their
// vectors.
type Embeddings struct {
	Terms   []string
	Vectors [][]float32
}

// Len returns the number of terms.
func (e *Embeddings) Len() int { return len(e.Terms) }

// Dim returns the vector dimension, 0 when empty.
func (e *Embeddings) Dim() int {
	if len(e.Vectors) == 0 {
		return 0
	}
	return len(e.Vectors[0])
}

func (e *Embeddings) add(term string, vec []float32) {
	e.Terms = append(e.Terms, term)
	e.Vectors = append(e.Vectors, vec)
}

// Option customises reading.
type Option func(*options)

type options struct {
	limit  int
	format Format
}

// WithLimit stops reading after n terms; n <= 0 reads everything.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithFormat forces a format instead of sniffing it.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) reached(n int) bool { return o.limit > 0 && n >= o.limit }

package space

import (
	"fmt"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/index"
)

// Option customises a Space.
type Option func(*options)

type options struct {
	kind index.Kind
}

// WithIndex selects the index kind used for neighbor queries.
func WithIndex(kind index.Kind) Option {
	return func(o *options) { o.kind = kind }
}

// Space is an in-memory embedding.Space. It is immutable after New and safe
// for concurrent readers.
type Space struct {
	terms   []string
	vectors [][]float32
	lookup  map[string]int
	dim     int
	idx     index.Index
}

var _ embedding.Space = (*Space)(nil)

// New builds a Space from parallel term and vector slices. Terms are NFC
// normalized; when a term repeats, the first occurrence wins.
func New(terms []string, vectors [][]float32, opts ...Option) (*Space, error) {
	if len(terms) != len(vectors) {
		return nil, fmt.Errorf("space: terms and vectors length mismatch: %d != %d", len(terms), len(vectors))
	}
	o := options{kind: index.KindAuto}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Space{lookup: make(map[string]int, len(terms))}
	for n, term := range terms {
		key := embedding.NormalizeTerm(term)
		if _, dup := s.lookup[key]; dup {
			continue
		}
		v := vectors[n]
		if len(s.vectors) == 0 {
			s.dim = len(v)
		} else if len(v) != s.dim {
			return nil, fmt.Errorf("space: term %q has dimension %d, want %d", term, len(v), s.dim)
		}
		s.lookup[key] = len(s.terms)
		s.terms = append(s.terms, key)
		s.vectors = append(s.vectors, v)
	}
	s.idx = index.New(o.kind, len(s.terms), s.dim)
	if err := s.idx.Build(s.terms, s.vectors); err != nil {
		return nil, fmt.Errorf("space: build index: %w", err)
	}
	return s, nil
}

// Len returns the vocabulary size.
func (s *Space) Len() int { return len(s.terms) }

// Dim returns the vector dimension, 0 for an empty space.
func (s *Space) Dim() int { return s.dim }

// Terms returns the vocabulary in load order.
func (s *Space) Terms() []string { return append([]string(nil), s.terms...) }

// VectorOf returns a copy of the vector for term.
func (s *Space) VectorOf(term string) ([]float32, error) {
	n, ok := s.lookup[embedding.NormalizeTerm(term)]
	if !ok {
		return nil, &embedding.UnknownTermError{Term: term}
	}
	return append([]float32(nil), s.vectors[n]...), nil
}

// MostSimilar returns up to k neighbors of term by descending cosine
// similarity, excluding term itself.
func (s *Space) MostSimilar(term string, k int) ([]embedding.Neighbor, error) {
	key := embedding.NormalizeTerm(term)
	n, ok := s.lookup[key]
	if !ok {
		return nil, &embedding.UnknownTermError{Term: term}
	}
	if k <= 0 {
		return nil, nil
	}
	ids, scores, err := s.idx.Query(s.vectors[n], k+1)
	if err != nil {
		return nil, fmt.Errorf("space: query %q: %w", term, err)
	}
	out := make([]embedding.Neighbor, 0, k)
	for j, id := range ids {
		if id == key {
			continue
		}
		if len(out) == k {
			break
		}
		out = append(out, embedding.Neighbor{Term: id, Score: scores[j]})
	}
	return out, nil
}

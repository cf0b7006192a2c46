package report

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
)

// Reporter writes neighbor reports to w.
type Reporter struct {
	w io.Writer
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report prints the k nearest neighbors of every query in order. It stops at
// the first query the space cannot answer and returns that error, typically
// an *embedding.UnknownTermError.
func (r *Reporter) Report(space embedding.Space, queries []string, k int) error {
	for _, query := range queries {
		neighbors, err := Neighbors(space, query, k)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.w, "\nMost Similar Words to %s:\n", query); err != nil {
			return err
		}
		for neighbor, score := range neighbors {
			if _, err := fmt.Fprintf(r.w, "%s: %s\n", neighbor, FormatScore(score)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Neighbors asks space for the k terms most similar to term and yields them
// in the order the space returned them. The lookup happens before Neighbors
// returns, so an unknown term is reported here rather than mid-iteration.
func Neighbors(space embedding.Space, term string, k int) (iter.Seq2[string, float64], error) {
	found, err := space.MostSimilar(term, k)
	if err != nil {
		return nil, err
	}
	if k >= 0 && len(found) > k {
		found = found[:k]
	}
	return func(yield func(string, float64) bool) {
		for _, n := range found {
			if !yield(n.Term, n.Score) {
				return
			}
		}
	}, nil
}

// FormatScore renders a similarity with exactly two decimals. Infinities
// print as the cosine bounds 1.00 and -1.00, and NaN as 0.00.
func FormatScore(score float64) string {
	switch {
	case math.IsNaN(score):
		score = 0
	case math.IsInf(score, 1):
		score = 1
	case math.IsInf(score, -1):
		score = -1
	}
	return strconv.FormatFloat(score, 'f', 2, 64)
}

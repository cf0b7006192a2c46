package embedding

import "golang.org/x/text/unicode/norm"

// Neighbor is a single nearest-neighbor hit: a vocabulary term and its cosine
// similarity to the query term.
type Neighbor struct {
	Term  string
	Score float64
}

// Space is a read-only word-embedding space.
type Space interface {
	// VectorOf returns the embedding of term. It fails with an
	// *UnknownTermError when term is not part of the vocabulary.
	VectorOf(term string) ([]float32, error)

	// MostSimilar returns up to k terms ordered by descending cosine
	// similarity to term, excluding term itself. It fails with an
	// *UnknownTermError when term is not part of the vocabulary.
	MostSimilar(term string, k int) ([]Neighbor, error)
}

// NormalizeTerm returns the NFC form of term. Vocabularies are keyed by the
// normalized form so that composed and decomposed spellings resolve alike.
func NormalizeTerm(term string) string {
	return norm.NFC.String(term)
}

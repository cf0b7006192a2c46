package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/engine"
	"github.com/DanielSebasCM/research-stay-2024/vector"
)

const (
	selectEmbedding = `SELECT embedding FROM terms WHERE term = ?`
	selectNeighbors = `
SELECT term, score FROM (
    SELECT term, position, vec_cosine(embedding, ?) AS score
    FROM terms
    WHERE term <> ?
)
WHERE score IS NOT NULL
ORDER BY score DESC, position
LIMIT ?`
)

// Store is a SQLite-backed embedding.Space. Terms are kept in NFC form and
// ranked by cosine similarity, ties broken by import order.
type Store struct {
	db    *sql.DB
	owned bool
}

var _ embedding.Space = (*Store)(nil)

// NewStore wraps db, which must have been opened through engine.Open so that
// vec_cosine is available. The caller keeps ownership of db.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens an existing store file read-only in intent: the schema is
// checked, never created, and an empty vocabulary is rejected.
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := engine.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := checkSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %s: %w", path, err)
	}
	return &Store{db: db, owned: true}, nil
}

// Create opens path, creating the file and the terms table if needed.
func Create(ctx context.Context, path string) (*Store, error) {
	db, err := engine.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Close releases the database when the store opened it itself.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// Import appends terms and their vectors. A term that is already stored, or
// repeated within the batch, keeps its first vector.
func (s *Store) Import(ctx context.Context, terms []string, vectors [][]float32) (int, error) {
	if len(terms) != len(vectors) {
		return 0, fmt.Errorf("store: terms and vectors length mismatch: %d != %d", len(terms), len(vectors))
	}
	if len(terms) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM terms`).Scan(&next); err != nil {
		return 0, fmt.Errorf("store: next position: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO terms(term, position, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for n, term := range terms {
		blob, err := vector.EncodeEmbedding(vectors[n])
		if err != nil {
			return 0, fmt.Errorf("store: term %q: %w", term, err)
		}
		if blob == nil {
			return 0, fmt.Errorf("store: term %q has an empty vector", term)
		}
		res, err := stmt.ExecContext(ctx, embedding.NormalizeTerm(term), next, blob)
		if err != nil {
			return 0, fmt.Errorf("store: insert %q: %w", term, err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			added++
			next++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Len returns the number of stored terms.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms`).Scan(&n)
	return n, err
}

// VectorOf implements embedding.Space.
func (s *Store) VectorOf(term string) ([]float32, error) {
	return s.VectorOfContext(context.Background(), term)
}

// VectorOfContext returns the stored vector for term.
func (s *Store) VectorOfContext(ctx context.Context, term string) ([]float32, error) {
	blob, err := s.embedding(ctx, term)
	if err != nil {
		return nil, err
	}
	return vector.DecodeEmbedding(blob)
}

// MostSimilar implements embedding.Space.
func (s *Store) MostSimilar(term string, k int) ([]embedding.Neighbor, error) {
	return s.MostSimilarContext(context.Background(), term, k)
}

// MostSimilarContext ranks every other stored term by cosine similarity to
// term and returns the best k.
func (s *Store) MostSimilarContext(ctx context.Context, term string, k int) ([]embedding.Neighbor, error) {
	blob, err := s.embedding(ctx, term)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, selectNeighbors, blob, embedding.NormalizeTerm(term), k)
	if err != nil {
		return nil, fmt.Errorf("store: neighbors of %q: %w", term, err)
	}
	defer rows.Close()

	var out []embedding.Neighbor
	for rows.Next() {
		var n embedding.Neighbor
		if err := rows.Scan(&n.Term, &n.Score); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) embedding(ctx context.Context, term string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, selectEmbedding, embedding.NormalizeTerm(term)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &embedding.UnknownTermError{Term: term}
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup %q: %w", term, err)
	}
	return blob, nil
}

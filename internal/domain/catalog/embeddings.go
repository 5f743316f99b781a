package catalog

import (
	"fmt"
	"slices"

	"github.com/MSM2025CL/stproject/internal/domain"
)

// Vectors holds the three precomputed embeddings of one row.
type Vectors struct {
	Info        []float32 // combined-info space, also indexed by the ANN forest
	Description []float32
	TFIDF       []float32
}

// Complete reports whether all three embeddings are present.
func (v Vectors) Complete() bool {
	return len(v.Info) > 0 && len(v.Description) > 0 && len(v.TFIDF) > 0
}

// EmbeddingSet maps row ids to their precomputed embeddings.
// Positional alignment with the catalog is checked once, in NewEmbeddingSet.
type EmbeddingSet struct {
	byRow map[int]Vectors
}

// NewEmbeddingSet aligns three positional embedding arrays with the catalog rows.
// All arrays must have exactly one entry per row; an entry may be empty when the row
// has no valid embedding.
func NewEmbeddingSet(c *Catalog, info, description, tfidf [][]float32) (*EmbeddingSet, error) {
	if c == nil || c.Len() == 0 {
		return nil, fmt.Errorf("embedding set: %w", domain.ErrEmptyInput)
	}
	n := c.Len()
	if len(info) != n || len(description) != n || len(tfidf) != n {
		return nil, fmt.Errorf(
			"embedding set: %w: catalog has %d rows, got info=%d description=%d tfidf=%d",
			domain.ErrDimensionMismatch, n, len(info), len(description), len(tfidf),
		)
	}

	s := &EmbeddingSet{byRow: make(map[int]Vectors, n)}
	for i, p := range c.rows {
		s.byRow[p.rowID] = Vectors{Info: info[i], Description: description[i], TFIDF: tfidf[i]}
	}
	return s, nil
}

// Get returns the embeddings of a row.
func (s *EmbeddingSet) Get(rowID int) (Vectors, bool) {
	v, ok := s.byRow[rowID]
	return v, ok
}

// Len returns the number of rows covered.
func (s *EmbeddingSet) Len() int { return len(s.byRow) }

// CheckWidths fails with domain.ErrDimensionMismatch unless at least one complete row
// has embeddings of the given widths in every space. Rows of other widths are skipped
// at scoring time, so a set with no matching row could never produce a result.
func (s *EmbeddingSet) CheckWidths(info, description, tfidf int) error {
	var found [][3]int
	for _, v := range s.byRow {
		if !v.Complete() {
			continue
		}
		got := [3]int{len(v.Info), len(v.Description), len(v.TFIDF)}
		if got == [3]int{info, description, tfidf} {
			return nil
		}
		if !slices.Contains(found, got) {
			found = append(found, got)
		}
	}
	return fmt.Errorf(
		"embedding set: %w: want info=%d description=%d tfidf=%d, rows have %v",
		domain.ErrDimensionMismatch, info, description, tfidf, found,
	)
}

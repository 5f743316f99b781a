package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
)

func TestBuildIndex_SearchEndToEnd(t *testing.T) {
	rows := threeRows()
	rows = append(rows, row{sku: "N1", provider: "Acme", text: "tornillo sin embedding", list: 1})
	c, e, _ := fixture(t, rows)

	idx, err := BuildIndex(context.Background(), c, e, ann.Config{Trees: 4, LeafSize: 2, Seed: 7}, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if st := idx.Stats(); st.Indexed != 3 || st.Skipped != 1 || st.Dimensions != 3 {
		t.Fatalf("unexpected stats %+v", st)
	}

	svc := New(c, e, idx, &fakeEmbedder{vec: []float32{1, 0, 0}},
		fakeVectorizer{vec: []float32{1, 0}}, DefaultTuning(), zap.NewNop())
	resp, err := svc.Search(context.Background(), mustRequest(t, "tornillo", ordering.Price, false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[0].RowID() != 1 || resp.Results[1].RowID() != 0 {
		t.Fatalf("expected rows [1 0], got %v", resp.Results)
	}
	s, _ := resp.Results[1].Scores()
	if s.Info < 0.999 {
		t.Errorf("identical vector should have info similarity ~1, got %f", s.Info)
	}
}

func TestBuildIndex_NoEmbeddings(t *testing.T) {
	rows := []row{{sku: "X", provider: "P", text: "sin datos", list: 1}}
	c, e, _ := fixture(t, rows)
	_, err := BuildIndex(context.Background(), c, e, ann.DefaultConfig(), zap.NewNop())
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

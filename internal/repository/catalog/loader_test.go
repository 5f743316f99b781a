package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/domain"
)

func writeFixture(t *testing.T, rows []rowDTO) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func fixtureRows() []rowDTO {
	return []rowDTO{
		{
			RowID: 0, SKU: "T-100", Provider: "Acme", Description: "Tornillo acero",
			Info: "Tornillo acero 3/8", ListPrice: 100, OfferPrice: 80, SearchText: "Tornillo Acero",
			EmbInfo: []float32{1, 0}, EmbDesc: []float32{1, 0}, EmbTFIDF: []float32{1, 0, 0},
		},
		{
			RowID: 1, SKU: "T-100", Provider: "Bolt", Description: "Tornillo plastico",
			Info: "Tornillo plastico", ListPrice: 50, OfferPrice: math.NaN(), SearchText: "tornillo plastico",
			EmbInfo: []float32{0.9, 0.1}, EmbDesc: []float32{0.9, 0.1}, EmbTFIDF: []float32{1, 1, 0},
		},
		{
			RowID: 2, SKU: "M-1", Provider: "Forge", Description: "Martillo",
			ListPrice: 10, SearchText: "martillo",
		},
	}
}

func TestLoad(t *testing.T) {
	path := writeFixture(t, fixtureRows())

	snap, err := NewLoader(zap.NewNop()).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Catalog.Len() != 3 || snap.Embeddings.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d/%d", snap.Catalog.Len(), snap.Embeddings.Len())
	}

	p, ok := snap.Catalog.Get(1)
	if !ok {
		t.Fatal("row 1 missing")
	}
	if p.Provider() != "Bolt" || p.ListPrice() != 50 {
		t.Errorf("unexpected row 1: %+v", p)
	}
	if p.OfferPrice() != 0 {
		t.Errorf("NaN offer should load as 0, got %f", p.OfferPrice())
	}

	first, _ := snap.Catalog.Get(0)
	if first.SearchText() != "tornillo acero" {
		t.Errorf("search text not lower-cased: %q", first.SearchText())
	}

	if got := snap.Catalog.BySKU("T-100"); len(got) != 2 {
		t.Errorf("expected 2 rows for shared SKU, got %d", len(got))
	}
	if got := snap.Catalog.Providers(); len(got) != 3 || got[0] != "Acme" {
		t.Errorf("unexpected providers %v", got)
	}

	v, ok := snap.Embeddings.Get(0)
	if !ok || !v.Complete() || len(v.TFIDF) != 3 {
		t.Errorf("unexpected vectors for row 0: %+v", v)
	}
	v, _ = snap.Embeddings.Get(2)
	if v.Complete() {
		t.Error("row without embeddings must not be complete")
	}
}

func TestLoad_DuplicateRowID(t *testing.T) {
	rows := fixtureRows()
	rows[2].RowID = 0
	if _, err := NewLoader(zap.NewNop()).Load(writeFixture(t, rows)); err == nil {
		t.Fatal("expected duplicate row id error")
	}
}

func TestLoad_Empty(t *testing.T) {
	_, err := NewLoader(zap.NewNop()).Load(writeFixture(t, []rowDTO{}))
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	l := NewLoader(zap.NewNop())
	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "garbage.parquet")
	if err := os.WriteFile(path, []byte("not parquet"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(path); err == nil {
		t.Error("expected error for invalid parquet")
	}
}

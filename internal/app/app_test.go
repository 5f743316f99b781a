package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/config"
	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
	"github.com/MSM2025CL/stproject/internal/domain/search/request"
	"github.com/MSM2025CL/stproject/internal/tfidf"
	healthuc "github.com/MSM2025CL/stproject/internal/usecase/health"
)

func TestMain(m *testing.M) {
	RegisterMetrics()
	os.Exit(m.Run())
}

// catalogRow mirrors the parquet layout produced by the offline pipeline.
type catalogRow struct {
	RowID       int64     `parquet:"row_id"`
	SKU         string    `parquet:"codigo_prov,optional"`
	Provider    string    `parquet:"proveedor,optional"`
	Description string    `parquet:"descripcion,optional"`
	Info        string    `parquet:"info_producto,optional"`
	ListPrice   float64   `parquet:"precio_msm,optional"`
	OfferPrice  float64   `parquet:"precio_oferta,optional"`
	SearchText  string    `parquet:"search_text,optional"`
	EmbInfo     []float32 `parquet:"emb_info"`
	EmbDesc     []float32 `parquet:"emb_descripcion"`
	EmbTFIDF    []float32 `parquet:"emb_tfidf"`
}

// fakeOpenAI answers /embeddings with a fixed vector and /models with an empty list.
func fakeOpenAI(t *testing.T, vec []float32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/embeddings":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"model":  "test-model",
				"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vec}},
				"usage":  map[string]int{"prompt_tokens": 2, "total_tokens": 2},
			})
		case "/models":
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	dir := t.TempDir()

	rows := []catalogRow{
		{
			RowID: 0, SKU: "TB-1", Provider: "Bosch", Description: "Taladro percutor",
			Info: "Taladro percutor 650W", ListPrice: 120, SearchText: "taladro percutor bosch",
			EmbInfo: []float32{1, 0}, EmbDesc: []float32{1, 0}, EmbTFIDF: []float32{1, 0},
		},
		{
			RowID: 1, SKU: "MS-2", Provider: "Stanley", Description: "Martillo",
			Info: "Martillo carpintero", ListPrice: 30, SearchText: "martillo carpintero stanley",
			EmbInfo: []float32{0, 1}, EmbDesc: []float32{0, 1}, EmbTFIDF: []float32{0, 1},
		},
	}
	catalogPath := filepath.Join(dir, "catalog.parquet")
	if err := parquet.WriteFile(catalogPath, rows); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	vecPath := filepath.Join(dir, "tfidf.msgpack")
	err := tfidf.Save(vecPath, tfidf.Artifact{
		Vocabulary: map[string]int{"taladro": 0, "martillo": 1},
		IDF:        []float64{1, 1},
		Lowercase:  true,
		Norm:       tfidf.NormL2,
		NgramMin:   1,
		NgramMax:   1,
	})
	if err != nil {
		t.Fatalf("save vectorizer: %v", err)
	}

	cfg := config.Config{
		HTTP:      config.HTTPConfig{Port: 8080},
		Catalog:   config.CatalogConfig{Path: catalogPath, VectorizerPath: vecPath},
		Embedding: config.EmbeddingConfig{BaseURL: baseURL, Model: "test-model", APIKey: "k"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestNew_SearchEndToEnd(t *testing.T) {
	srv := fakeOpenAI(t, []float32{1, 0})
	cfg := testConfig(t, srv.URL)

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Catalog.Len() != 2 {
		t.Fatalf("catalog rows: got %d", a.Catalog.Len())
	}
	if st := a.Index.Stats(); st.Indexed != 2 || st.Dimensions != 2 {
		t.Fatalf("index stats: %+v", st)
	}

	req, err := request.New("taladro", ordering.Price, false, 0, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	resp, err := a.Search.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if got := resp.Results[0].Product(); got.SKU() != "TB-1" {
		t.Errorf("top result: got %s, want TB-1", got.SKU())
	}

	report := a.Health.Check(context.Background())
	if report.Status != healthuc.Healthy {
		t.Errorf("health: got %s (%v)", report.Status, report.Checks)
	}
}

func TestNew_MissingCatalog(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.parquet")

	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestNew_MissingVectorizer(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Catalog.VectorizerPath = filepath.Join(t.TempDir(), "missing.msgpack")

	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing vectorizer")
	}
}

func TestNew_VectorizerWidthMismatch(t *testing.T) {
	srv := fakeOpenAI(t, []float32{1, 0})
	cfg := testConfig(t, srv.URL)

	// Three terms against two-column tfidf vectors in the catalog.
	err := tfidf.Save(cfg.Catalog.VectorizerPath, tfidf.Artifact{
		Vocabulary: map[string]int{"taladro": 0, "martillo": 1, "percutor": 2},
		IDF:        []float64{1, 1, 1},
		Lowercase:  true,
		Norm:       tfidf.NormL2,
		NgramMin:   1,
		NgramMax:   1,
	})
	if err != nil {
		t.Fatalf("save vectorizer: %v", err)
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err == nil {
		a.Close()
		t.Fatal("expected startup to fail")
	}
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNew_DescriptionWidthMismatch(t *testing.T) {
	srv := fakeOpenAI(t, []float32{1, 0})
	cfg := testConfig(t, srv.URL)

	rows := []catalogRow{
		{
			RowID: 0, SKU: "TB-1", Provider: "Bosch", Description: "Taladro percutor",
			ListPrice: 120, SearchText: "taladro percutor bosch",
			EmbInfo: []float32{1, 0}, EmbDesc: []float32{1, 0, 0}, EmbTFIDF: []float32{1, 0},
		},
		{
			RowID: 1, SKU: "MS-2", Provider: "Stanley", Description: "Martillo",
			ListPrice: 30, SearchText: "martillo carpintero stanley",
			EmbInfo: []float32{0, 1}, EmbDesc: []float32{0, 1, 0}, EmbTFIDF: []float32{0, 1},
		},
	}
	if err := parquet.WriteFile(cfg.Catalog.Path, rows); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err == nil {
		a.Close()
		t.Fatal("expected startup to fail")
	}
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestTuning(t *testing.T) {
	got := Tuning(config.SearchConfig{MatchRatio: 0.8, DescriptionFloor: 0.1, TFIDFFloor: 0.3, TailPercent: 7})
	if got.MatchRatio != 0.8 || got.DescriptionFloor != 0.1 || got.TFIDFFloor != 0.3 || got.TailPercent != 7 {
		t.Errorf("Tuning: %+v", got)
	}
}

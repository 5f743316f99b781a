package catalog

import (
	"math"

	domcat "github.com/MSM2025CL/stproject/internal/domain/catalog"
)

// rowDTO is one row of the catalog parquet artifact. Embedding columns are
// repeated float columns aligned with the product attributes of the same row.
type rowDTO struct {
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

// toDomain converts a row. Missing prices (NaN or Inf) load as 0, which the
// search filter treats as "no price" and "no offer".
func (r *rowDTO) toDomain() (domcat.Product, error) {
	return domcat.New(
		int(r.RowID), r.SKU, r.Provider, r.Description, r.Info,
		finiteOrZero(r.ListPrice), finiteOrZero(r.OfferPrice), r.SearchText,
	)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

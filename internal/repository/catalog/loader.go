// Package catalog loads the product catalog and its embedding arrays from a
// parquet artifact produced by the offline embedding pipeline.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	domcat "github.com/MSM2025CL/stproject/internal/domain/catalog"
)

const readBatchSize = 1024

// Snapshot is a loaded catalog with its row-aligned embeddings.
type Snapshot struct {
	Catalog    *domcat.Catalog
	Embeddings *domcat.EmbeddingSet
}

// Loader reads catalog snapshots from parquet files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads every row of the parquet file at path.
func (l *Loader) Load(path string) (Snapshot, error) {
	h, err := openParquet(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer h.Close()

	reader := parquet.NewGenericReader[rowDTO](h.pf)
	defer func() { _ = reader.Close() }()

	n := int(reader.NumRows())
	products := make([]domcat.Product, 0, n)
	info := make([][]float32, 0, n)
	desc := make([][]float32, 0, n)
	tfidf := make([][]float32, 0, n)

	buf := make([]rowDTO, readBatchSize)
	for {
		got, readErr := reader.Read(buf)
		for i := 0; i < got; i++ {
			row := &buf[i]
			p, err := row.toDomain()
			if err != nil {
				return Snapshot{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
			}
			products = append(products, p)
			info = append(info, row.EmbInfo)
			desc = append(desc, row.EmbDesc)
			tfidf = append(tfidf, row.EmbTFIDF)
			buf[i] = rowDTO{}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return Snapshot{}, fmt.Errorf("read %s rows: %w", filepath.Base(path), readErr)
		}
	}

	c, err := domcat.NewCatalog(products)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build catalog: %w", err)
	}
	e, err := domcat.NewEmbeddingSet(c, info, desc, tfidf)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build embedding set: %w", err)
	}

	l.logger.Info("Catalog loaded",
		zap.String("path", path),
		zap.Int("rows", c.Len()),
		zap.Int("providers", len(c.Providers())),
	)
	return Snapshot{Catalog: c, Embeddings: e}, nil
}

// parquetHandle wraps parquet.File + underlying os.File for cleanup.
type parquetHandle struct {
	pf   *parquet.File
	file *os.File
}

func (h *parquetHandle) Close() {
	_ = h.file.Close()
}

func openParquet(path string) (*parquetHandle, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet %s: %w", filepath.Base(path), err)
	}
	return &parquetHandle{pf: pf, file: f}, nil
}

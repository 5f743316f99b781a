package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/metrics"
)

// BuildIndex builds the ANN forest over the combined-info embeddings of every
// catalog row. Rows without a usable embedding are skipped and counted.
func BuildIndex(
	ctx context.Context, c *catalog.Catalog, e *catalog.EmbeddingSet, cfg ann.Config, logger *zap.Logger,
) (*ann.Index, error) {
	items := make([]ann.Item, 0, c.Len())
	for _, row := range c.Rows() {
		v, ok := e.Get(row.RowID())
		if !ok {
			continue
		}
		items = append(items, ann.Item{RowID: row.RowID(), Vector: v.Info})
	}

	idx, err := ann.Build(ctx, items, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build index over %d rows: %w", c.Len(), err)
	}
	st := idx.Stats()
	metrics.SetIndexItems(st.Indexed, st.Skipped+c.Len()-len(items))
	return idx, nil
}

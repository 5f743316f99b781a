// Package ann provides an angular approximate nearest neighbour index built
// from a forest of random-projection trees.
//
// The index is immutable after Build and safe for concurrent Query calls.
// Distances are angular: d = sqrt(2 - 2*cos), i.e. the euclidean distance
// between unit-normalised vectors.
package ann

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MSM2025CL/stproject/internal/domain"
)

// Item is one vector to index, tagged with its catalog row id.
type Item struct {
	RowID  int
	Vector []float32
}

// Hit is one query neighbour.
type Hit struct {
	Slot     int
	RowID    int
	Distance float32
}

// Stats describes a built index.
type Stats struct {
	Dimensions int
	Indexed    int
	Skipped    int
	Trees      int
}

// Index is a built forest. Slots are dense 0..Len()-1.
type Index struct {
	dim     int
	vectors []float32 // unit vectors, slot-major
	rowIDs  []int     // slot -> catalog row id
	trees   []tree
	stats   Stats
}

// Build indexes items. Items whose vector is empty, non-finite, zero, or of a
// dimensionality other than the expected one are skipped and counted.
// Fails with domain.ErrEmptyInput when nothing can be indexed, or with
// domain.ErrDimensionMismatch when every usable item had the wrong dimensionality.
func Build(ctx context.Context, items []Item, cfg Config, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if len(items) == 0 {
		return nil, fmt.Errorf("build index: %w", domain.ErrEmptyInput)
	}

	dim := cfg.Dimensions
	idx := &Index{}
	var invalid, mismatched int
	for _, it := range items {
		if !usable(it.Vector) {
			invalid++
			continue
		}
		if dim == 0 {
			dim = len(it.Vector)
		}
		if len(it.Vector) != dim {
			mismatched++
			continue
		}
		idx.vectors = append(idx.vectors, normalize(it.Vector)...)
		idx.rowIDs = append(idx.rowIDs, it.RowID)
	}

	if len(idx.rowIDs) == 0 {
		if mismatched > 0 {
			return nil, fmt.Errorf("build index: %w: no item has %d dimensions", domain.ErrDimensionMismatch, dim)
		}
		return nil, fmt.Errorf("build index: %w: no usable embeddings", domain.ErrEmptyInput)
	}
	idx.dim = dim

	if skipped := invalid + mismatched; skipped > 0 {
		logger.Warn("Skipped embeddings while building index",
			zap.Int("invalid", invalid),
			zap.Int("dimension_mismatch", mismatched),
			zap.Int("expected_dimensions", dim),
		)
	}

	idx.trees = make([]tree, cfg.Trees)
	g, gctx := errgroup.WithContext(ctx)
	for i := range idx.trees {
		g.Go(func() error {
			t, err := buildTree(gctx, idx, cfg.LeafSize, cfg.Seed+int64(i))
			if err != nil {
				return err
			}
			idx.trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	idx.stats = Stats{
		Dimensions: dim,
		Indexed:    len(idx.rowIDs),
		Skipped:    invalid + mismatched,
		Trees:      cfg.Trees,
	}
	logger.Info("ANN index built",
		zap.Int("dimensions", dim),
		zap.Int("indexed", idx.stats.Indexed),
		zap.Int("skipped", idx.stats.Skipped),
		zap.Int("trees", cfg.Trees),
	)
	return idx, nil
}

// Dimensions returns the indexed dimensionality.
func (x *Index) Dimensions() int { return x.dim }

// Len returns the number of indexed slots.
func (x *Index) Len() int { return len(x.rowIDs) }

// Stats returns build statistics.
func (x *Index) Stats() Stats { return x.stats }

// RowID maps a slot to its catalog row id.
func (x *Index) RowID(slot int) int { return x.rowIDs[slot] }

// Query returns up to topN nearest slots ordered by increasing distance, ties
// broken by slot. The result is deterministic for a given index and vector.
func (x *Index) Query(vector []float32, topN int) ([]Hit, error) {
	if len(vector) != x.dim {
		return nil, fmt.Errorf("query index: %w: got %d, index has %d",
			domain.ErrDimensionMismatch, len(vector), x.dim)
	}
	if topN <= 0 {
		return nil, nil
	}
	q := normalize(vector)

	searchK := topN * len(x.trees)
	pq := make(nodeQueue, 0, len(x.trees)*4)
	for ti := range x.trees {
		pq = append(pq, queued{priority: math.Inf(1), tree: ti, node: 0})
	}
	heap.Init(&pq)

	seen := make(map[int32]struct{}, searchK)
	var slots []int32
	for pq.Len() > 0 && len(slots) < searchK {
		top := heap.Pop(&pq).(queued)
		n := &x.trees[top.tree].nodes[top.node]
		if n.leaf() {
			for _, s := range n.items {
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				slots = append(slots, s)
			}
			continue
		}
		margin := float64(dot(n.normal, q))
		heap.Push(&pq, queued{priority: math.Min(top.priority, margin), tree: top.tree, node: n.right})
		heap.Push(&pq, queued{priority: math.Min(top.priority, -margin), tree: top.tree, node: n.left})
	}

	hits := make([]Hit, len(slots))
	for i, s := range slots {
		hits[i] = Hit{Slot: int(s), RowID: x.rowIDs[s], Distance: x.distance(q, int(s))}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Slot < hits[j].Slot
	})
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, nil
}

// Similarity converts an angular distance into the approximate cosine similarity 1 - d²/2.
func Similarity(distance float32) float64 {
	d := float64(distance)
	return 1 - d*d/2
}

func (x *Index) vector(slot int) []float32 {
	return x.vectors[slot*x.dim : (slot+1)*x.dim]
}

// distance is the euclidean distance between unit vectors; identical inputs give exactly 0.
func (x *Index) distance(q []float32, slot int) float32 {
	v := x.vector(slot)
	var sum float64
	for i := range q {
		d := float64(q[i] - v[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

func usable(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	var norm float64
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
		norm += float64(f) * float64(f)
	}
	return norm > 0
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	inv := 1 / math.Sqrt(norm)
	for i, f := range v {
		out[i] = float32(float64(f) * inv)
	}
	return out
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// queued is a tree node waiting to be visited, prioritised by its margin.
type queued struct {
	priority float64
	tree     int
	node     int32
}

type nodeQueue []queued

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	if q[i].tree != q[j].tree {
		return q[i].tree < q[j].tree
	}
	return q[i].node < q[j].node
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

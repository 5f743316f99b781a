package ann

import (
	"context"
	"math/rand"
)

// twoMeansIterations bounds the refinement of each split's two centroids.
const twoMeansIterations = 64

// node is either an inner split (normal != nil) or a leaf holding slots.
type node struct {
	normal      []float32
	left, right int32
	items       []int32
}

func (n *node) leaf() bool { return n.normal == nil }

// tree is one random-projection tree; nodes[0] is the root.
type tree struct {
	nodes []node
}

type treeBuilder struct {
	ctx      context.Context
	idx      *Index
	leafSize int
	rng      *rand.Rand
	nodes    []node
}

func buildTree(ctx context.Context, idx *Index, leafSize int, seed int64) (tree, error) {
	b := &treeBuilder{
		ctx:      ctx,
		idx:      idx,
		leafSize: leafSize,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic split sampling
	}
	slots := make([]int32, idx.Len())
	for i := range slots {
		slots[i] = int32(i)
	}
	b.nodes = append(b.nodes, node{})
	if err := b.split(0, slots); err != nil {
		return tree{}, err
	}
	return tree{nodes: b.nodes}, nil
}

// split fills node at position at with the subtree for slots.
func (b *treeBuilder) split(at int32, slots []int32) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	if len(slots) <= b.leafSize {
		b.nodes[at] = node{items: slots}
		return nil
	}

	normal := b.hyperplane(slots)
	var left, right []int32
	if normal != nil {
		for _, s := range slots {
			m := dot(normal, b.idx.vector(int(s)))
			switch {
			case m > 0:
				right = append(right, s)
			case m < 0:
				left = append(left, s)
			default:
				if b.rng.Intn(2) == 0 {
					left = append(left, s)
				} else {
					right = append(right, s)
				}
			}
		}
	}

	// Degenerate split (duplicates, or all on one side): fall back to a random halving
	// with a random normal so that query descent still visits both children.
	if len(left) == 0 || len(right) == 0 {
		left, right = b.randomHalves(slots)
		normal = b.randomNormal()
	}

	l := int32(len(b.nodes))
	r := l + 1
	b.nodes = append(b.nodes, node{}, node{})
	b.nodes[at] = node{normal: normal, left: l, right: r}
	if err := b.split(l, left); err != nil {
		return err
	}
	return b.split(r, right)
}

// hyperplane returns the unit normal separating two centroids found by a
// sampled two-means pass, or nil when the centroids coincide.
func (b *treeBuilder) hyperplane(slots []int32) []float32 {
	dim := b.idx.dim
	i := b.rng.Intn(len(slots))
	j := b.rng.Intn(len(slots) - 1)
	if j >= i {
		j++
	}
	p := append([]float32(nil), b.idx.vector(int(slots[i]))...)
	q := append([]float32(nil), b.idx.vector(int(slots[j]))...)
	pc, qc := 1, 1

	for it := 0; it < twoMeansIterations; it++ {
		v := b.idx.vector(int(slots[b.rng.Intn(len(slots))]))
		dp := sqDist(p, v)
		dq := sqDist(q, v)
		switch {
		case dp < dq:
			for d := 0; d < dim; d++ {
				p[d] = (p[d]*float32(pc) + v[d]) / float32(pc+1)
			}
			pc++
		case dq < dp:
			for d := 0; d < dim; d++ {
				q[d] = (q[d]*float32(qc) + v[d]) / float32(qc+1)
			}
			qc++
		}
	}

	normal := make([]float32, dim)
	zero := true
	for d := 0; d < dim; d++ {
		normal[d] = p[d] - q[d]
		if normal[d] != 0 {
			zero = false
		}
	}
	if zero {
		return nil
	}
	return normalize(normal)
}

func (b *treeBuilder) randomHalves(slots []int32) ([]int32, []int32) {
	shuffled := append([]int32(nil), slots...)
	b.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	mid := len(shuffled) / 2
	return shuffled[:mid], shuffled[mid:]
}

func (b *treeBuilder) randomNormal() []float32 {
	v := make([]float32, b.idx.dim)
	for d := range v {
		v[d] = float32(b.rng.NormFloat64())
	}
	return normalize(v)
}

func sqDist(a, b []float32) float32 {
	var s float32
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

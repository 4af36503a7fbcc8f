package forest

import (
	"math/rand"
	"sort"

	model "github.com/okian/quiniela/internal/domain/model"
)

const leaf = -1

// node is one entry of a flattened tree. Leaves have left == leaf.
type node struct {
	feature     int
	threshold   float64
	left, right int
	dist        []float64
}

// tree is a CART classifier stored as a flat node slice rooted at index 0.
type tree struct {
	nodes []node
}

// predict returns the class distribution of the leaf x falls into.
func (t *tree) predict(x model.FeatureVector) []float64 {
	i := 0
	for t.nodes[i].left != leaf {
		n := t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].dist
}

// depth returns the longest root-to-leaf path.
func (t *tree) depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		if t.nodes[i].left == leaf {
			return 0
		}
		return 1 + max(walk(t.nodes[i].left), walk(t.nodes[i].right))
	}
	return walk(0)
}

// grower holds the state of a single tree fit.
type grower struct {
	X               []model.FeatureVector
	y               []int
	classes         int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	rng             *rand.Rand
	nodes           []node
}

// split is a candidate partition of a node.
type split struct {
	feature   int
	threshold float64
	impurity  float64
	pos       int
	order     []int
}

func (g *grower) grow(samples []int) *tree {
	g.nodes = nil
	g.build(samples, 0)
	return &tree{nodes: g.nodes}
}

func (g *grower) build(samples []int, depth int) int {
	counts := make([]int, g.classes)
	for _, s := range samples {
		counts[g.y[s]]++
	}

	id := len(g.nodes)
	g.nodes = append(g.nodes, node{left: leaf, right: leaf})

	if depth >= g.maxDepth || len(samples) < g.minSamplesSplit || len(samples) < 2*g.minSamplesLeaf || pure(counts) {
		g.nodes[id].dist = distribution(counts, len(samples))
		return id
	}

	best, ok := g.bestSplit(samples, counts)
	if !ok {
		g.nodes[id].dist = distribution(counts, len(samples))
		return id
	}

	left := g.build(best.order[:best.pos], depth+1)
	right := g.build(best.order[best.pos:], depth+1)
	g.nodes[id].feature = best.feature
	g.nodes[id].threshold = best.threshold
	g.nodes[id].left = left
	g.nodes[id].right = right
	return id
}

// bestSplit scans a random subset of features for the split with the lowest
// weighted gini impurity that respects the minimum leaf size.
func (g *grower) bestSplit(samples []int, counts []int) (split, bool) {
	n := len(samples)
	best := split{impurity: 2}
	found := false

	features := g.rng.Perm(model.FeatureCount)[:g.maxFeatures]
	leftCounts := make([]int, g.classes)
	rightCounts := make([]int, g.classes)

	for _, f := range features {
		order := append([]int(nil), samples...)
		sort.SliceStable(order, func(a, b int) bool { return g.X[order[a]][f] < g.X[order[b]][f] })

		clear(leftCounts)
		copy(rightCounts, counts)

		for i := 1; i < n; i++ {
			c := g.y[order[i-1]]
			leftCounts[c]++
			rightCounts[c]--

			if i < g.minSamplesLeaf || n-i < g.minSamplesLeaf {
				continue
			}
			lo, hi := g.X[order[i-1]][f], g.X[order[i]][f]
			if lo == hi {
				continue
			}

			imp := (float64(i)*gini(leftCounts, i) + float64(n-i)*gini(rightCounts, n-i)) / float64(n)
			if imp < best.impurity {
				threshold := lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, impurity: imp, pos: i, order: order}
				found = true
			}
		}
	}
	return best, found
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum -= p * p
	}
	return sum
}

func pure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func distribution(counts []int, n int) []float64 {
	dist := make([]float64, len(counts))
	if n == 0 {
		return dist
	}
	for i, c := range counts {
		dist[i] = float64(c) / float64(n)
	}
	return dist
}

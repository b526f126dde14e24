package forecast

import (
	"errors"
	"math/rand"
	"sort"
)

// RandomForest averages regression trees, each grown on a bootstrap sample
// of the training rows. Every source of randomness derives from Seed.
type RandomForest struct {
	Trees    int
	MaxDepth int
	Seed     int64

	roots []*treeNode
}

func NewRandomForest(trees, maxDepth int, seed int64) *RandomForest {
	if trees < 1 {
		trees = 1
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &RandomForest{Trees: trees, MaxDepth: maxDepth, Seed: seed}
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return errors.New("forecast: forest fit needs matching non-empty X and y")
	}
	rng := rand.New(rand.NewSource(f.Seed))
	f.roots = make([]*treeNode, f.Trees)
	for t := range f.roots {
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		sample := make([]int, n)
		for i := range sample {
			sample[i] = treeRng.Intn(n)
		}
		g := &treeGrower{X: X, y: y, maxDepth: f.MaxDepth, rng: treeRng}
		f.roots[t] = g.grow(sample, 0)
	}
	return nil
}

func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.roots) == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.roots {
		sum += root.predict(x)
	}
	return sum / float64(len(f.roots))
}

type treeGrower struct {
	X        [][]float64
	y        []float64
	maxDepth int
	rng      *rand.Rand
}

// grow builds a CART node minimizing the summed squared error of the children.
func (g *treeGrower) grow(idx []int, depth int) *treeNode {
	var sum float64
	constant := true
	for _, i := range idx {
		sum += g.y[i]
		if g.y[i] != g.y[idx[0]] {
			constant = false
		}
	}
	node := &treeNode{leaf: true, value: sum / float64(len(idx))}
	if depth >= g.maxDepth || len(idx) < 2 || constant {
		return node
	}

	bestScore := -1.0
	bestFeature, bestPos := -1, 0
	var bestThreshold float64
	var bestOrder []int

	order := make([]int, len(idx))
	for _, f := range g.rng.Perm(len(g.X[0])) {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return g.X[order[a]][f] < g.X[order[b]][f]
		})

		var left float64
		for k := 1; k < len(order); k++ {
			left += g.y[order[k-1]]
			lo, hi := g.X[order[k-1]][f], g.X[order[k]][f]
			if lo == hi {
				continue
			}
			right := sum - left
			nl, nr := float64(k), float64(len(order)-k)
			// maximizing this is minimizing the children's squared error
			score := left*left/nl + right*right/nr
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestPos = k
				bestThreshold = lo + (hi-lo)/2
				bestOrder = append(bestOrder[:0], order...)
			}
		}
	}
	if bestFeature < 0 {
		return node
	}

	node.leaf = false
	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = g.grow(append([]int(nil), bestOrder[:bestPos]...), depth+1)
	node.right = g.grow(append([]int(nil), bestOrder[bestPos:]...), depth+1)
	return node
}

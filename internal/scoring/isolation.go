package scoring

import (
	"fmt"
	"math"

	"github.com/Skufu/GoSymptom/internal/artifact"
)

const eulerGamma = 0.5772156649015329

// IsolationForest scores samples the way a fitted scikit-learn IsolationForest does:
// score = -2^(-E[h(x)] / c(max_samples)), decision = score - offset, outlier when
// decision < 0.
type IsolationForest struct {
	trees  []artifact.TreeSpec
	offset float64
	norm   float64
}

type Anomaly struct {
	Score     float64
	IsAnomaly bool
}

func NewIsolationForest(spec artifact.IsolationForestSpec) *IsolationForest {
	samples := spec.MaxSamples
	if samples < 2 && len(spec.Trees) > 0 && len(spec.Trees[0].Nodes) > 0 {
		samples = spec.Trees[0].Nodes[0].NSamples
	}
	norm := averagePathLength(samples)
	if norm == 0 {
		norm = 1
	}
	return &IsolationForest{trees: spec.Trees, offset: spec.Offset, norm: norm}
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

func (f *IsolationForest) ScoreSamples(x []float64) (float64, error) {
	var total float64
	for ti, tree := range f.trees {
		node, depth := 0, 0
		for tree.Nodes[node].Left != -1 {
			n := tree.Nodes[node]
			if n.Feature >= len(x) {
				return 0, fmt.Errorf("tree %d splits on feature %d, sample has %d", ti, n.Feature, len(x))
			}
			if x[n.Feature] <= n.Threshold {
				node = n.Left
			} else {
				node = n.Right
			}
			depth++
		}
		total += float64(depth) + averagePathLength(tree.Nodes[node].NSamples)
	}
	mean := total / float64(len(f.trees))
	return -math.Pow(2, -mean/f.norm), nil
}

func (f *IsolationForest) Evaluate(x []float64) (Anomaly, error) {
	s, err := f.ScoreSamples(x)
	if err != nil {
		return Anomaly{}, err
	}
	decision := s - f.offset
	return Anomaly{Score: decision, IsAnomaly: decision < 0}, nil
}

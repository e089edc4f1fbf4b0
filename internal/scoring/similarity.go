package scoring

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Jaccard returns |a∩b| / |a∪b| for two index sets, and 0 when both are empty.
// Duplicate indices are ignored.
func Jaccard(a, b []int) float64 {
	set := make(map[int]bool, len(a))
	for _, i := range a {
		set[i] = true
	}
	inter, union := 0, len(set)
	seen := make(map[int]bool, len(b))
	for _, i := range b {
		if seen[i] {
			continue
		}
		seen[i] = true
		if set[i] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Cosine returns the cosine similarity of two equal-length vectors, 0 when either
// has zero norm or the lengths differ. The result is clamped to [-1, 1] since
// parallel vectors can round just past 1.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, floats.Dot(a, b)/(na*nb)))
}

// NormalizeByMax divides xs in place by its maximum. A non-positive maximum leaves
// xs untouched.
func NormalizeByMax(xs []float64) {
	if len(xs) == 0 {
		return
	}
	m := floats.Max(xs)
	if m <= 0 {
		return
	}
	floats.Scale(1/m, xs)
}

type Ranked struct {
	Index int
	Score float64
}

// TopK returns the k highest scores in descending order. Equal scores keep their
// original index order. k <= 0 returns everything.
func TopK(scores []float64, k int) []Ranked {
	ranked := make([]Ranked, len(scores))
	for i, s := range scores {
		ranked[i] = Ranked{Index: i, Score: s}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

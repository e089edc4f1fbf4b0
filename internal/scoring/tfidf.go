package scoring

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/Skufu/GoSymptom/internal/artifact"
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// TFIDF is a fitted term-frequency / inverse-document-frequency vectorizer with L2
// row normalization.
type TFIDF struct {
	vocab    map[string]int
	idf      []float64
	ngramMax int
	sublin   bool
}

func NewTFIDF(spec artifact.VectorizerSpec) *TFIDF {
	n := spec.NgramMax
	if n < 1 {
		n = 1
	}
	return &TFIDF{vocab: spec.Vocabulary, idf: spec.IDF, ngramMax: n, sublin: spec.SublinearTF}
}

// Terms lists the vectorizer vocabulary.
func (t *TFIDF) Terms() []string {
	out := make([]string, 0, len(t.vocab))
	for term := range t.vocab {
		out = append(out, term)
	}
	return out
}

func (t *TFIDF) Transform(doc string) []float64 {
	tokens := tokenPattern.FindAllString(strings.ToLower(doc), -1)

	counts := make(map[int]float64)
	for size := 1; size <= t.ngramMax; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			if idx, ok := t.vocab[strings.Join(tokens[i:i+size], " ")]; ok {
				counts[idx]++
			}
		}
	}

	v := make([]float64, len(t.idf))
	for idx, c := range counts {
		tf := c
		if t.sublin {
			tf = 1 + math.Log(c)
		}
		v[idx] = tf * t.idf[idx]
	}
	if n := floats.Norm(v, 2); n > 0 {
		floats.Scale(1/n, v)
	}
	return v
}

// Reducer projects TF-IDF vectors onto truncated-SVD components.
type Reducer struct {
	components *mat.Dense
}

func NewReducer(spec artifact.ReducerSpec) *Reducer {
	rows, cols := len(spec.Components), len(spec.Components[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range spec.Components {
		data = append(data, row...)
	}
	return &Reducer{components: mat.NewDense(rows, cols, data)}
}

func (r *Reducer) Dims() int {
	k, _ := r.components.Dims()
	return k
}

// Project returns components · v.
func (r *Reducer) Project(v []float64) []float64 {
	k, n := r.components.Dims()
	if len(v) != n {
		return make([]float64, k)
	}
	out := mat.NewVecDense(k, nil)
	out.MulVec(r.components, mat.NewVecDense(n, v))
	return append([]float64(nil), out.RawVector().Data...)
}

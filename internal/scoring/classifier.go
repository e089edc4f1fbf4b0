package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Skufu/GoSymptom/internal/artifact"
)

// Classifier is a multinomial logistic regression:
//
//	P(class | x) = softmax(W·x + b)
type Classifier struct {
	w *mat.Dense
	b *mat.VecDense
}

func NewClassifier(spec artifact.ClassifierSpec) *Classifier {
	rows, cols := len(spec.Coef), len(spec.Coef[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range spec.Coef {
		data = append(data, row...)
	}
	return &Classifier{
		w: mat.NewDense(rows, cols, data),
		b: mat.NewVecDense(rows, append([]float64(nil), spec.Intercept...)),
	}
}

func (c *Classifier) Classes() int {
	r, _ := c.w.Dims()
	return r
}

// PredictProba returns one probability per class, summing to 1.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	rows, cols := c.w.Dims()
	if len(x) != cols {
		return nil, fmt.Errorf("classifier expects %d features, got %d", cols, len(x))
	}
	z := mat.NewVecDense(rows, nil)
	z.MulVec(c.w, mat.NewVecDense(cols, x))
	z.AddVec(z, c.b)
	return Softmax(z.RawVector().Data), nil
}

// Softmax is the max-shifted softmax of z.
func Softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	if len(z) == 0 {
		return out
	}
	m := z[0]
	for _, v := range z[1:] {
		if v > m {
			m = v
		}
	}
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

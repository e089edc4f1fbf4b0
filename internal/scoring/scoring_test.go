package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Skufu/GoSymptom/internal/artifact/artifacttest"
	"github.com/Skufu/GoSymptom/internal/encoder"
)

const eps = 1e-9

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestJaccardProperties(t *testing.T) {
	a := []int{0, 1, 2}
	b := []int{1, 2, 5, 7}

	if Jaccard(a, b) != Jaccard(b, a) {
		t.Fatal("jaccard should be symmetric")
	}
	if got := Jaccard(a, b); !approx(got, 2.0/5.0, eps) {
		t.Fatalf("expected 0.4, got %f", got)
	}
	if Jaccard(a, a) != 1 {
		t.Fatal("identical non-empty sets should score 1")
	}
	if Jaccard(nil, b) != 0 || Jaccard(a, nil) != 0 || Jaccard(nil, nil) != 0 {
		t.Fatal("empty sets should score 0")
	}
	if got := Jaccard([]int{1, 1, 2}, []int{2, 2}); !approx(got, 0.5, eps) {
		t.Fatalf("duplicates should be ignored, got %f", got)
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{1, 0}); !approx(got, 1, eps) {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := Cosine([]float64{1, 0}, []float64{0, 3}); !approx(got, 0, eps) {
		t.Fatalf("expected 0, got %f", got)
	}
	if Cosine([]float64{0, 0}, []float64{1, 1}) != 0 {
		t.Fatal("zero vector should give 0")
	}
	if Cosine([]float64{1}, []float64{1, 1}) != 0 {
		t.Fatal("length mismatch should give 0")
	}
}

func TestCosineParallelStaysWithinOne(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20000; i++ {
		v := make([]float64, 4)
		for j := range v {
			v[j] = r.Float64()*2 - 1
		}
		scaled := make([]float64, len(v))
		for j, x := range v {
			scaled[j] = x * 0.37
		}
		if got := Cosine(v, scaled); got > 1 || got < 1-eps {
			t.Fatalf("cosine of %v and its scaled copy = %v", v, got)
		}
		neg := make([]float64, len(v))
		for j, x := range v {
			neg[j] = -x
		}
		if got := Cosine(v, neg); got < -1 {
			t.Fatalf("cosine of %v and its negation = %v", v, got)
		}
	}
}

func TestNormalizeByMax(t *testing.T) {
	xs := []float64{0.25, 0.5, 0}
	NormalizeByMax(xs)
	if xs[0] != 0.5 || xs[1] != 1 || xs[2] != 0 {
		t.Fatalf("unexpected normalization %v", xs)
	}

	zeros := []float64{0, 0}
	NormalizeByMax(zeros)
	if zeros[0] != 0 || zeros[1] != 0 {
		t.Fatalf("all-zero input must stay zero, got %v", zeros)
	}
	NormalizeByMax(nil)
}

func TestTopKStableDescending(t *testing.T) {
	got := TopK([]float64{0.1, 0.4, 0.2, 0.4, 0.3}, 3)
	want := []int{1, 3, 4}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, r := range got {
		if r.Index != want[i] {
			t.Fatalf("position %d: expected index %d, got %d", i, want[i], r.Index)
		}
		if i > 0 && r.Score > got[i-1].Score {
			t.Fatalf("scores must not increase down the list: %v", got)
		}
	}

	if all := TopK([]float64{0.2, 0.1}, 3); len(all) != 2 {
		t.Fatalf("short inputs return everything, got %v", all)
	}
	if all := TopK([]float64{0.2, 0.1, 0.5}, 0); len(all) != 3 {
		t.Fatalf("k <= 0 returns everything, got %v", all)
	}
}

func TestSoftmax(t *testing.T) {
	p := Softmax([]float64{1000, 1000})
	if !approx(p[0], 0.5, eps) || !approx(p[1], 0.5, eps) {
		t.Fatalf("softmax should be shift invariant, got %v", p)
	}
	if len(Softmax(nil)) != 0 {
		t.Fatal("empty input gives empty output")
	}
}

func TestClassifierPredictProba(t *testing.T) {
	c := NewClassifier(artifacttest.Hybrid().Classifier)
	x := make([]float64, 8)
	x[0], x[1] = 1, 1 // fever, cough

	p, err := c.PredictProba(x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// logits: flu 3, cold 1, migraine -1, gastro 1
	sum := math.Exp(3) + 2*math.Exp(1) + math.Exp(-1)
	if !approx(p[artifacttest.Flu], math.Exp(3)/sum, 1e-12) {
		t.Fatalf("unexpected flu probability %f", p[artifacttest.Flu])
	}
	total := 0.0
	for _, v := range p {
		total += v
	}
	if !approx(total, 1, 1e-12) {
		t.Fatalf("probabilities should sum to 1, got %f", total)
	}

	if _, err := c.PredictProba([]float64{1}); err == nil {
		t.Fatal("expected feature count error")
	}
}

func TestAveragePathLength(t *testing.T) {
	if averagePathLength(1) != 0 || averagePathLength(2) != 1 {
		t.Fatal("unexpected base cases")
	}
	want := 2*(math.Log(9)+eulerGamma) - 2*9.0/10.0
	if !approx(averagePathLength(10), want, eps) {
		t.Fatalf("unexpected c(10): %f", averagePathLength(10))
	}
}

func TestIsolationForest(t *testing.T) {
	f := NewIsolationForest(artifacttest.Hybrid().AnomalyDetector)

	feverOnly := make([]float64, 8)
	feverOnly[0] = 1
	got, err := f.Evaluate(feverOnly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// fever -> node 2, no headache -> leaf 3 at depth 2 holding 3 samples
	depth := 2 + averagePathLength(3)
	want := -math.Pow(2, -depth/averagePathLength(10)) + 0.53
	if !approx(got.Score, want, 1e-12) || !got.IsAnomaly {
		t.Fatalf("expected anomaly with score %f, got %+v", want, got)
	}

	normal, err := f.Evaluate(make([]float64, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normal.IsAnomaly || normal.Score <= 0 {
		t.Fatalf("expected inlier, got %+v", normal)
	}

	if _, err := f.Evaluate([]float64{1}); err == nil {
		t.Fatal("expected short sample error")
	}
}

func TestTFIDFTransform(t *testing.T) {
	tf := NewTFIDF(artifacttest.Similarity().Vectorizer)
	v := tf.Transform("Fever, fever and a COUGH")
	// counts fever 2, cough 1 -> (2,1)/sqrt(5)
	if !approx(v[0], 2/math.Sqrt(5), eps) || !approx(v[1], 1/math.Sqrt(5), eps) {
		t.Fatalf("unexpected tf-idf vector %v", v)
	}
	for i, x := range v[2:] {
		if x != 0 {
			t.Fatalf("unexpected weight at %d: %f", i+2, x)
		}
	}
	if zero := tf.Transform("zzz"); floatsAllZero(zero) == false {
		t.Fatalf("unknown words should give a zero vector, got %v", zero)
	}
}

func TestTFIDFBigrams(t *testing.T) {
	spec := artifacttest.Similarity().Vectorizer
	spec.Vocabulary = map[string]int{"runny nose": 0, "runny": 1}
	spec.IDF = []float64{2, 1}
	spec.NgramMax = 2
	spec.SublinearTF = true

	v := NewTFIDF(spec).Transform("runny nose runny")
	// runny nose: tf 1 * idf 2; runny: (1+ln 2) * 1
	a, b := 2.0, 1+math.Log(2)
	n := math.Hypot(a, b)
	if !approx(v[0], a/n, eps) || !approx(v[1], b/n, eps) {
		t.Fatalf("unexpected bigram vector %v", v)
	}
}

func TestReducerProject(t *testing.T) {
	r := NewReducer(artifacttest.Similarity().Reducer)
	v := make([]float64, 10)
	v[0], v[1] = 1, 1
	got := r.Project(v)
	want := []float64{1, 1, 0, 0}
	for i := range want {
		if !approx(got[i], want[i], eps) {
			t.Fatalf("unexpected projection %v", got)
		}
	}
	if len(r.Project([]float64{1})) != r.Dims() {
		t.Fatal("mismatched input should still return a k-length vector")
	}
}

func floatsAllZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func TestSimilarityScorerFeverCough(t *testing.T) {
	s := NewSimilarityScorer(artifacttest.Similarity())
	e, err := s.Encode(encoder.Input{Selected: "fever, cough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.Indices) != 2 {
		t.Fatalf("expected fever and cough recognized, got %v", e.Names)
	}

	got, err := s.Score(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Scores) != 4 || len(got.Top) != 3 {
		t.Fatalf("unexpected sizes: scores=%d top=%d", len(got.Scores), len(got.Top))
	}

	order := []int{artifacttest.Flu, artifacttest.CommonCold, artifacttest.Gastroenteritis}
	for i, r := range got.Top {
		if r.Index != order[i] {
			t.Fatalf("position %d: expected disease %d, got %d (%v)", i, order[i], r.Index, got.Top)
		}
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("score out of range: %f", r.Score)
		}
	}

	// flu: jaccard 2/4 is the max -> 1, cosine([1,1,0,0],[0.5,1,0.3,0])
	wantFlu := Cosine([]float64{1, 1, 0, 0}, []float64{0.5, 1, 0.3, 0})
	if !approx(got.Scores[artifacttest.Flu], wantFlu, 1e-9) {
		t.Fatalf("expected flu score %f, got %f", wantFlu, got.Scores[artifacttest.Flu])
	}
	if got.Scores[artifacttest.Migraine] != 0 {
		t.Fatalf("migraine shares no symptoms, got %f", got.Scores[artifacttest.Migraine])
	}
	if got.Anomaly != nil {
		t.Fatal("similarity scorer never reports anomalies")
	}
}

func TestSimilarityScorerParallelDiseaseCapsAtOne(t *testing.T) {
	b := artifacttest.Similarity()
	base := NewSimilarityScorer(b)
	query := base.reducer.Project(base.tfidf.Transform("fever cough"))

	b.DiseaseSymptoms[artifacttest.Flu] = []int{0, 1}
	vec := make([]float64, len(query))
	for i, x := range query {
		vec[i] = 0.37 * x
	}
	b.DiseaseVectors[artifacttest.Flu] = vec

	s := NewSimilarityScorer(b)
	e, err := s.Encode(encoder.Input{Selected: "fever, cough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Score(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top := got.Top[0]
	if top.Index != artifacttest.Flu || !approx(top.Score, 1, eps) {
		t.Fatalf("expected flu at 1, got %v", got.Top)
	}
	for _, sc := range got.Scores {
		if sc < 0 || sc > 1 || sc*100 > 100 {
			t.Fatalf("score out of range: %v", sc)
		}
	}
}

func TestSimilarityScorerFreeText(t *testing.T) {
	s := NewSimilarityScorer(artifacttest.Similarity())
	e, err := s.Encode(encoder.Input{Text: "Terrible headaches and nausea since yesterday"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Score(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Top[0].Index != artifacttest.Migraine {
		t.Fatalf("expected migraine first, got %v", got.Top)
	}
}

func TestHybridScorer(t *testing.T) {
	s := NewHybridScorer(artifacttest.Hybrid())
	if s.Classes() != 4 || s.Version() != "1.0" || s.Name() != NameHybrid {
		t.Fatalf("unexpected scorer metadata")
	}

	e, err := s.Encode(encoder.Input{Selected: "fever, cough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Score(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cold and gastro tie; the lower index ranks first
	order := []int{artifacttest.Flu, artifacttest.CommonCold, artifacttest.Gastroenteritis}
	for i, r := range got.Top {
		if r.Index != order[i] {
			t.Fatalf("position %d: expected disease %d, got %v", i, order[i], got.Top)
		}
	}
	if got.Anomaly == nil || !got.Anomaly.IsAnomaly {
		t.Fatalf("fever without headache should be flagged, got %+v", got.Anomaly)
	}
}

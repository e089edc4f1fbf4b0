// Package scoring ranks diseases for an encoded symptom set. Scorers are built once
// from a loaded bundle and are safe for concurrent use: nothing in them is mutated
// after construction.
package scoring

import (
	"fmt"

	"github.com/Skufu/GoSymptom/internal/artifact"
	"github.com/Skufu/GoSymptom/internal/encoder"
)

const DefaultTopK = 3

const (
	NameHybrid     = "hybrid"
	NameSimilarity = "similarity"
)

// Scored is one ranking. Scores covers every disease in catalog order.
type Scored struct {
	Scores  []float64
	Top     []Ranked
	Anomaly *Anomaly
}

type Scorer interface {
	Name() string
	Version() string
	// Classes is the number of diseases the scorer ranks.
	Classes() int
	Encode(in encoder.Input) (encoder.Encoded, error)
	Score(e encoder.Encoded) (*Scored, error)
}

// HybridScorer ranks by classifier probability and flags unusual symptom
// combinations with an isolation forest. Symptoms match by substring.
type HybridScorer struct {
	enc        *encoder.Encoder
	classifier *Classifier
	forest     *IsolationForest
	version    string
	k          int
}

func NewHybridScorer(b *artifact.HybridBundle) *HybridScorer {
	return &HybridScorer{
		enc:        encoder.New(b.FeatureNames, encoder.SubstringMatch),
		classifier: NewClassifier(b.Classifier),
		forest:     NewIsolationForest(b.AnomalyDetector),
		version:    b.ModelVersion,
		k:          DefaultTopK,
	}
}

func (s *HybridScorer) Name() string    { return NameHybrid }
func (s *HybridScorer) Version() string { return s.version }
func (s *HybridScorer) Classes() int    { return s.classifier.Classes() }

func (s *HybridScorer) Encode(in encoder.Input) (encoder.Encoded, error) {
	return s.enc.Encode(in)
}

func (s *HybridScorer) Score(e encoder.Encoded) (*Scored, error) {
	x := e.Vector(s.enc.Size())

	proba, err := s.classifier.PredictProba(x)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	anomaly, err := s.forest.Evaluate(x)
	if err != nil {
		return nil, fmt.Errorf("anomaly score: %w", err)
	}

	return &Scored{
		Scores:  proba,
		Top:     TopK(proba, s.k),
		Anomaly: &anomaly,
	}, nil
}

// SimilarityScorer multiplies a max-normalized Jaccard overlap with the cosine
// similarity between the input and each disease description in reduced TF-IDF
// space. Symptoms match exactly.
type SimilarityScorer struct {
	enc             *encoder.Encoder
	diseaseSymptoms [][]int
	tfidf           *TFIDF
	reducer         *Reducer
	diseaseVectors  [][]float64
	version         string
	k               int
}

func NewSimilarityScorer(b *artifact.SimilarityBundle) *SimilarityScorer {
	tfidf := NewTFIDF(b.Vectorizer)
	return &SimilarityScorer{
		enc:             encoder.New(b.Symptoms, encoder.ExactMatch, tfidf.Terms()...),
		diseaseSymptoms: b.DiseaseSymptoms,
		tfidf:           tfidf,
		reducer:         NewReducer(b.Reducer),
		diseaseVectors:  b.DiseaseVectors,
		version:         b.ModelVersion,
		k:               DefaultTopK,
	}
}

func (s *SimilarityScorer) Name() string    { return NameSimilarity }
func (s *SimilarityScorer) Version() string { return s.version }
func (s *SimilarityScorer) Classes() int    { return len(s.diseaseVectors) }

func (s *SimilarityScorer) Encode(in encoder.Input) (encoder.Encoded, error) {
	return s.enc.Encode(in)
}

func (s *SimilarityScorer) Score(e encoder.Encoded) (*Scored, error) {
	n := len(s.diseaseVectors)

	overlap := make([]float64, n)
	for d, set := range s.diseaseSymptoms {
		overlap[d] = Jaccard(e.Indices, set)
	}
	NormalizeByMax(overlap)

	query := s.reducer.Project(s.tfidf.Transform(e.BagOfWords))

	final := make([]float64, n)
	for d, vec := range s.diseaseVectors {
		// negative cosines would push confidence below zero
		sem := Cosine(query, vec)
		if sem < 0 {
			sem = 0
		}
		final[d] = overlap[d] * sem
	}

	return &Scored{
		Scores: final,
		Top:    TopK(final, s.k),
	}, nil
}

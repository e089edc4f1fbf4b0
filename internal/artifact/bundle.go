package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// HybridBundle is the supervised + anomaly artifact.
type HybridBundle struct {
	FeatureNames    []string            `json:"feature_names"`
	Classifier      ClassifierSpec      `json:"classifier"`
	AnomalyDetector IsolationForestSpec `json:"anomaly_detector"`
	ModelVersion    string              `json:"model_version"`
}

// ClassifierSpec holds a multinomial logistic regression: one coefficient row and
// intercept per class.
type ClassifierSpec struct {
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

type IsolationForestSpec struct {
	Offset     float64    `json:"offset"`
	MaxSamples int        `json:"max_samples"`
	Trees      []TreeSpec `json:"trees"`
}

type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec is a flattened tree node; Left == -1 marks a leaf.
type NodeSpec struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	NSamples  int     `json:"n_samples"`
}

// SimilarityBundle is the Jaccard + reduced TF-IDF artifact.
type SimilarityBundle struct {
	Symptoms        []string       `json:"symptoms"`
	DiseaseSymptoms [][]int        `json:"disease_symptoms"`
	Vectorizer      VectorizerSpec `json:"vectorizer"`
	Reducer         ReducerSpec    `json:"reducer"`
	DiseaseVectors  [][]float64    `json:"disease_vectors"`
	ModelVersion    string         `json:"model_version"`
}

type VectorizerSpec struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// ReducerSpec holds the truncated-SVD components, one row per output dimension.
type ReducerSpec struct {
	Components [][]float64 `json:"components"`
}

func LoadHybrid(path string) (*HybridBundle, error) {
	var b HybridBundle
	if err := readJSON(path, &b); err != nil {
		return nil, err
	}
	if b.ModelVersion == "" {
		b.ModelVersion = "1.0"
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("hybrid bundle %s: %w", path, err)
	}
	return &b, nil
}

func (b *HybridBundle) Validate() error {
	nf := len(b.FeatureNames)
	if nf == 0 {
		return fmt.Errorf("no feature names")
	}
	nc := len(b.Classifier.Coef)
	if nc == 0 {
		return fmt.Errorf("classifier has no classes")
	}
	if len(b.Classifier.Intercept) != nc {
		return fmt.Errorf("classifier has %d intercepts for %d classes", len(b.Classifier.Intercept), nc)
	}
	for i, row := range b.Classifier.Coef {
		if len(row) != nf {
			return fmt.Errorf("classifier row %d has %d weights, want %d", i, len(row), nf)
		}
	}
	if len(b.AnomalyDetector.Trees) == 0 {
		return fmt.Errorf("anomaly detector has no trees")
	}
	for ti, tree := range b.AnomalyDetector.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Left == -1 {
				continue
			}
			if n.Feature < 0 || n.Feature >= nf {
				return fmt.Errorf("tree %d node %d splits on feature %d of %d", ti, ni, n.Feature, nf)
			}
			if n.Left <= ni || n.Left >= len(tree.Nodes) || n.Right <= ni || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has bad children", ti, ni)
			}
		}
	}
	return nil
}

func LoadSimilarity(path string) (*SimilarityBundle, error) {
	var b SimilarityBundle
	if err := readJSON(path, &b); err != nil {
		return nil, err
	}
	if b.ModelVersion == "" {
		b.ModelVersion = "2.0"
	}
	if b.Vectorizer.NgramMax < 1 {
		b.Vectorizer.NgramMax = 1
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("similarity bundle %s: %w", path, err)
	}
	return &b, nil
}

func (b *SimilarityBundle) Validate() error {
	if len(b.Symptoms) == 0 {
		return fmt.Errorf("no symptoms")
	}
	nd := len(b.DiseaseVectors)
	if nd == 0 {
		return fmt.Errorf("no disease vectors")
	}
	if len(b.DiseaseSymptoms) != nd {
		return fmt.Errorf("%d disease symptom sets for %d diseases", len(b.DiseaseSymptoms), nd)
	}
	for d, set := range b.DiseaseSymptoms {
		for _, s := range set {
			if s < 0 || s >= len(b.Symptoms) {
				return fmt.Errorf("disease %d references symptom %d of %d", d, s, len(b.Symptoms))
			}
		}
	}

	nt := len(b.Vectorizer.IDF)
	if nt == 0 {
		return fmt.Errorf("vectorizer has no idf weights")
	}
	for term, idx := range b.Vectorizer.Vocabulary {
		if idx < 0 || idx >= nt {
			return fmt.Errorf("vocabulary term %q maps to %d of %d", term, idx, nt)
		}
	}

	k := len(b.Reducer.Components)
	if k == 0 {
		return fmt.Errorf("reducer has no components")
	}
	for i, row := range b.Reducer.Components {
		if len(row) != nt {
			return fmt.Errorf("reducer component %d has width %d, want %d", i, len(row), nt)
		}
	}
	for i, row := range b.DiseaseVectors {
		if len(row) != k {
			return fmt.Errorf("disease vector %d has width %d, want %d", i, len(row), k)
		}
	}
	return nil
}

// CheckCatalog reports a mismatch between a bundle's class count and the catalog.
func CheckCatalog(c *Catalog, classes int) error {
	if c.Len() != classes {
		return fmt.Errorf("catalog has %d diseases, model scores %d", c.Len(), classes)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse bundle %s: %w", path, err)
	}
	return nil
}

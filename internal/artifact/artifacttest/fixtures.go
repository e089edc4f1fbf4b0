// Package artifacttest provides small, hand-checked model bundles for tests.
package artifacttest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Skufu/GoSymptom/internal/artifact"
)

// Disease order shared by every fixture.
const (
	Flu = iota
	CommonCold
	Migraine
	Gastroenteritis
)

func Catalog() *artifact.Catalog {
	return artifact.NewCatalog([]artifact.Disease{
		{
			Name:        "Flu",
			Description: "A contagious respiratory illness caused by influenza viruses.",
			Precautions: []string{"rest", "drink fluids", "consult a doctor"},
		},
		{
			Name:        "Common Cold",
			Description: "A mild viral infection of the nose and throat.",
			Precautions: []string{"rest", "warm fluids"},
		},
		{
			Name:        "Migraine",
			Description: "Recurring headaches of moderate to severe intensity.",
			Precautions: []string{"meditation", "reduce stress", "avoid bright light"},
		},
		{
			// no advisory text on purpose
			Name: "Gastroenteritis",
		},
	})
}

// Similarity returns a bundle over eight symptoms and four reduced dimensions
// (respiratory, systemic, neurological, digestive).
func Similarity() *artifact.SimilarityBundle {
	return &artifact.SimilarityBundle{
		Symptoms: []string{"fever", "cough", "headache", "nausea", "vomiting", "runny_nose", "sore_throat", "fatigue"},
		DiseaseSymptoms: [][]int{
			{0, 1, 2, 7},
			{1, 5, 6},
			{2, 3},
			{0, 3, 4},
		},
		Vectorizer: artifact.VectorizerSpec{
			Vocabulary: map[string]int{
				"fever": 0, "cough": 1, "headache": 2, "nausea": 3, "vomiting": 4,
				"runny": 5, "nose": 6, "sore": 7, "throat": 8, "fatigue": 9,
			},
			IDF:      []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			NgramMax: 1,
		},
		Reducer: artifact.ReducerSpec{
			Components: [][]float64{
				{0, 1, 0, 0, 0, 1, 1, 1, 1, 0},
				{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
				{0, 0, 1, 1, 0, 0, 0, 0, 0, 0},
				{0, 0, 0, 1, 1, 0, 0, 0, 0, 0},
			},
		},
		DiseaseVectors: [][]float64{
			{0.5, 1, 0.3, 0},
			{1, 0.2, 0, 0},
			{0, 0, 1, 0.2},
			{0, 0.5, 0.1, 1},
		},
		ModelVersion: "2.0",
	}
}

// Hybrid returns a classifier whose logits are -1 + 2 per matching disease symptom,
// and a one-tree isolation forest splitting on fever then headache.
func Hybrid() *artifact.HybridBundle {
	features := []string{"fever", "cough", "headache", "nausea", "vomiting", "runny_nose", "sore_throat", "fatigue"}
	member := [][]int{
		{0, 1, 2, 7},
		{1, 5, 6},
		{2, 3},
		{0, 3, 4},
	}
	coef := make([][]float64, len(member))
	intercept := make([]float64, len(member))
	for c, set := range member {
		coef[c] = make([]float64, len(features))
		for _, f := range set {
			coef[c][f] = 2
		}
		intercept[c] = -1
	}

	return &artifact.HybridBundle{
		FeatureNames: features,
		Classifier: artifact.ClassifierSpec{
			Classes:   []string{"Flu", "Common Cold", "Migraine", "Gastroenteritis"},
			Coef:      coef,
			Intercept: intercept,
		},
		AnomalyDetector: artifact.IsolationForestSpec{
			Offset:     -0.53,
			MaxSamples: 10,
			Trees: []artifact.TreeSpec{{Nodes: []artifact.NodeSpec{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2, NSamples: 10},
				{Left: -1, Right: -1, NSamples: 6},
				{Feature: 2, Threshold: 0.5, Left: 3, Right: 4, NSamples: 4},
				{Left: -1, Right: -1, NSamples: 3},
				{Left: -1, Right: -1, NSamples: 1},
			}}},
		},
		ModelVersion: "1.0",
	}
}

// WriteJSON writes v into a temp file and returns its path.
func WriteJSON(t *testing.T, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

package prediction

import (
	"fmt"
	"strings"

	"github.com/Skufu/GoSymptom/internal/artifact"
	"github.com/Skufu/GoSymptom/internal/scoring"
)

const (
	fallbackSuggestion  = "Consult a healthcare professional"
	fallbackDescription = "No description available."
)

func diseaseName(c *artifact.Catalog, idx int) string {
	if d, ok := c.At(idx); ok && d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Disease %d", idx)
}

// distribution pairs every catalog disease with its score.
func distribution(c *artifact.Catalog, scores []float64) []Probability {
	out := make([]Probability, len(scores))
	for i, s := range scores {
		out[i] = Probability{Disease: diseaseName(c, i), Probability: s}
	}
	return out
}

func formatHybrid(c *artifact.Catalog, scored *scoring.Scored) []Prediction {
	dist := distribution(c, scored.Scores)
	out := make([]Prediction, 0, len(scored.Top))
	for _, r := range scored.Top {
		p := Prediction{
			DiseaseID:     r.Index,
			DiseaseName:   diseaseName(c, r.Index),
			Confidence:    r.Score * 100,
			Probabilities: dist,
			Suggestion:    fallbackSuggestion,
		}
		if scored.Anomaly != nil {
			flag := scored.Anomaly.IsAnomaly
			p.Anomaly = &flag
		}
		if d, ok := c.At(r.Index); ok && len(d.Precautions) > 0 {
			p.Suggestion = strings.Join(d.Precautions, ". ")
		}
		out = append(out, p)
	}
	return out
}

func formatSimilarity(c *artifact.Catalog, scored *scoring.Scored) []Prediction {
	dist := distribution(c, scored.Scores)
	out := make([]Prediction, 0, len(scored.Top))
	for _, r := range scored.Top {
		p := Prediction{
			DiseaseID:     r.Index,
			DiseaseName:   diseaseName(c, r.Index),
			Confidence:    r.Score * 100,
			Probabilities: dist,
			Description:   fallbackDescription,
			Precautions:   []string{fallbackSuggestion},
		}
		if d, ok := c.At(r.Index); ok {
			if d.Description != "" {
				p.Description = d.Description
			}
			if len(d.Precautions) > 0 {
				p.Precautions = d.Precautions
			}
		}
		out = append(out, p)
	}
	return out
}

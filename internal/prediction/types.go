package prediction

import (
	"context"
	"time"

	"github.com/Skufu/GoSymptom/internal/scoring"
)

type Request struct {
	Selected string
	Text     string
	UserID   *int64
}

type Probability struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// Prediction is one ranked disease. Anomaly and Suggestion are set by the hybrid
// scorer, Description and Precautions by the similarity scorer.
type Prediction struct {
	DiseaseID     int           `json:"disease_id"`
	DiseaseName   string        `json:"disease_name"`
	Confidence    float64       `json:"confidence"`
	Probabilities []Probability `json:"probabilities"`
	Anomaly       *bool         `json:"anomaly,omitempty"`
	Suggestion    string        `json:"suggestion,omitempty"`
	Description   string        `json:"description,omitempty"`
	Precautions   []string      `json:"precautions,omitempty"`
}

type Response struct {
	Success      bool         `json:"success"`
	PredictionID *int64       `json:"prediction_id"`
	Predictions  []Prediction `json:"predictions"`
	AnomalyScore *float64     `json:"anomaly_score,omitempty"`
	IsAnomaly    *bool        `json:"is_anomaly,omitempty"`
	ModelVersion string       `json:"model_version"`
}

type DiseaseInfo struct {
	Disease     string   `json:"disease"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Record is what gets persisted for one prediction.
type Record struct {
	UserID      int64
	Symptoms    []string
	Predictions []Prediction
	Anomaly     *scoring.Anomaly
	CreatedAt   time.Time
}

type HistoryEntry struct {
	PredictionID         int64    `json:"prediction_id"`
	VisitedAt            string   `json:"visited_at"`
	PredictedDisease     string   `json:"predicted_disease"`
	Confidence           float64  `json:"confidence"`
	PredictedDescription string   `json:"predicted_description"`
	PredictedPrecautions []string `json:"predicted_precautions"`
}

type Store interface {
	SavePrediction(ctx context.Context, rec Record) (int64, error)
	History(ctx context.Context, userID int64) ([]HistoryEntry, error)
}

// Cache holds scored results. Implementations swallow their own failures.
type Cache interface {
	Get(ctx context.Context, key string) (*scoring.Scored, bool)
	Set(ctx context.Context, key string, v *scoring.Scored)
}

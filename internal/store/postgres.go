// Package store persists predictions and reads user history from PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/GoSymptom/internal/prediction"
)

//go:embed schema.sql
var Schema string

// DB is satisfied by *pgxpool.Pool. Begin and Query each hold a pooled connection
// only until the transaction ends or the rows are closed.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type Postgres struct {
	db DB
}

func New(db DB) *Postgres {
	return &Postgres{db: db}
}

// Connect opens a pool and checks it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

const insertPrediction = `INSERT INTO disease_prediction (user_id, symptoms, predictions, created_at)
VALUES ($1, $2::jsonb, $3::jsonb, $4)
RETURNING prediction_id`

const insertHistory = `INSERT INTO user_history (
	user_id, prediction_id, visited_at, predicted_disease, disease_id, confidence,
	probabilities, predicted_description, predicted_precautions, is_anomaly, anomaly_score
) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9::jsonb, $10, $11)`

// SavePrediction writes the prediction and one history row per ranked disease in a
// single transaction. Nothing is kept if any insert fails.
func (p *Postgres) SavePrediction(ctx context.Context, rec prediction.Record) (int64, error) {
	symptoms, err := json.Marshal(rec.Symptoms)
	if err != nil {
		return 0, fmt.Errorf("encode symptoms: %w", err)
	}
	predictions, err := json.Marshal(rec.Predictions)
	if err != nil {
		return 0, fmt.Errorf("encode predictions: %w", err)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, insertPrediction, rec.UserID, symptoms, predictions, rec.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}

	var isAnomaly *bool
	var anomalyScore *float64
	if rec.Anomaly != nil {
		isAnomaly = &rec.Anomaly.IsAnomaly
		anomalyScore = &rec.Anomaly.Score
	}

	for _, pred := range rec.Predictions {
		probs, err := json.Marshal(pred.Probabilities)
		if err != nil {
			return 0, fmt.Errorf("encode probabilities: %w", err)
		}
		precautions, err := json.Marshal(historyPrecautions(pred))
		if err != nil {
			return 0, fmt.Errorf("encode precautions: %w", err)
		}

		if _, err := tx.Exec(ctx, insertHistory,
			rec.UserID, id, rec.CreatedAt, pred.DiseaseName, pred.DiseaseID, pred.Confidence,
			probs, nullable(pred.Description), precautions, isAnomaly, anomalyScore,
		); err != nil {
			return 0, fmt.Errorf("insert history for %s: %w", pred.DiseaseName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// historyPrecautions stores the hybrid suggestion as a one-element list so history
// rows have the same shape for both scorers.
func historyPrecautions(pred prediction.Prediction) []string {
	if len(pred.Precautions) > 0 {
		return pred.Precautions
	}
	if pred.Suggestion != "" {
		return []string{pred.Suggestion}
	}
	return []string{}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const selectHistory = `SELECT prediction_id, visited_at, predicted_disease, confidence,
	COALESCE(predicted_description, ''), COALESCE(predicted_precautions, '[]'::jsonb)
FROM user_history
WHERE user_id = $1
ORDER BY visited_at DESC, prediction_id DESC, history_id ASC`

// History returns every history row for the user, newest prediction first. Rows of
// one prediction keep their rank order.
func (p *Postgres) History(ctx context.Context, userID int64) ([]prediction.HistoryEntry, error) {
	rows, err := p.db.Query(ctx, selectHistory, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []prediction.HistoryEntry{}
	for rows.Next() {
		var (
			e           prediction.HistoryEntry
			visitedAt   time.Time
			precautions []byte
		)
		if err := rows.Scan(&e.PredictionID, &visitedAt, &e.PredictedDisease, &e.Confidence,
			&e.PredictedDescription, &precautions); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.VisitedAt = visitedAt.UTC().Format(time.RFC3339)
		if err := json.Unmarshal(precautions, &e.PredictedPrecautions); err != nil {
			return nil, fmt.Errorf("decode precautions: %w", err)
		}
		if e.PredictedPrecautions == nil {
			e.PredictedPrecautions = []string{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

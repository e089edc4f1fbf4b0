// Package prediction runs one inference request end to end: encode, score, format
// and optionally persist.
package prediction

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/artifact"
	"github.com/Skufu/GoSymptom/internal/cache"
	"github.com/Skufu/GoSymptom/internal/encoder"
	"github.com/Skufu/GoSymptom/internal/scoring"
)

// Service is built once at startup. The scorer and catalog are shared read-only by
// all requests.
type Service struct {
	scorer  scoring.Scorer
	catalog *artifact.Catalog
	store   Store
	cache   Cache
	now     func() time.Time
	log     *logrus.Entry
}

type Option func(*Service)

func WithStore(s Store) Option { return func(svc *Service) { svc.store = s } }

func WithCache(c Cache) Option { return func(svc *Service) { svc.cache = c } }

func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

func NewService(scorer scoring.Scorer, catalog *artifact.Catalog, opts ...Option) (*Service, error) {
	if err := artifact.CheckCatalog(catalog, scorer.Classes()); err != nil {
		return nil, err
	}
	s := &Service{
		scorer:  scorer,
		catalog: catalog,
		now:     time.Now,
		log:     logrus.WithField("scorer", scorer.Name()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Scorer() string { return s.scorer.Name() }

// Persistent reports whether predictions with a user id are written.
func (s *Service) Persistent() bool { return s.store != nil }

func (s *Service) Predict(ctx context.Context, req Request) (*Response, error) {
	enc, err := s.scorer.Encode(encoder.Input{Selected: req.Selected, Text: req.Text})
	if err != nil {
		if errors.Is(err, encoder.ErrEmptyInput) || errors.Is(err, encoder.ErrNoValidSymptoms) {
			return nil, ClientError(err.Error())
		}
		return nil, InternalError("prediction failed", err)
	}

	scored, err := s.score(ctx, enc)
	if err != nil {
		return nil, InternalError("prediction failed", err)
	}

	resp := &Response{
		Success:      true,
		Predictions:  s.format(scored),
		ModelVersion: s.scorer.Version(),
	}
	if scored.Anomaly != nil {
		score, flag := scored.Anomaly.Score, scored.Anomaly.IsAnomaly
		resp.AnomalyScore = &score
		resp.IsAnomaly = &flag
	}

	if req.UserID == nil {
		return resp, nil
	}
	if s.store == nil {
		s.log.WithField("user_id", *req.UserID).Debug("persistence disabled, prediction not saved")
		return resp, nil
	}

	id, err := s.store.SavePrediction(ctx, Record{
		UserID:      *req.UserID,
		Symptoms:    enc.Submitted,
		Predictions: resp.Predictions,
		Anomaly:     scored.Anomaly,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, InternalError("prediction failed", err)
	}
	resp.PredictionID = &id
	return resp, nil
}

func (s *Service) score(ctx context.Context, enc encoder.Encoded) (*scoring.Scored, error) {
	if s.cache == nil {
		return s.scorer.Score(enc)
	}

	key := cache.Key(s.scorer.Name(), s.scorer.Version(), enc)
	if hit, ok := s.cache.Get(ctx, key); ok && len(hit.Scores) == s.scorer.Classes() {
		return hit, nil
	}
	scored, err := s.scorer.Score(enc)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, scored)
	return scored, nil
}

func (s *Service) format(scored *scoring.Scored) []Prediction {
	if s.scorer.Name() == scoring.NameHybrid {
		return formatHybrid(s.catalog, scored)
	}
	return formatSimilarity(s.catalog, scored)
}

// DiseaseInfo looks a disease up by name. Unknown names give an empty description
// and no precautions.
func (s *Service) DiseaseInfo(name string) DiseaseInfo {
	info := DiseaseInfo{Disease: name, Precautions: []string{}}
	if d, ok := s.catalog.Lookup(name); ok {
		info.Disease = d.Name
		info.Description = d.Description
		if len(d.Precautions) > 0 {
			info.Precautions = d.Precautions
		}
	}
	return info
}

func (s *Service) History(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	if s.store == nil {
		return nil, InternalError("history failed", errors.New("persistence is disabled"))
	}
	entries, err := s.store.History(ctx, userID)
	if err != nil {
		return nil, InternalError("history failed", err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

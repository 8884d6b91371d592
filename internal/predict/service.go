// Package predict scores form submissions against the loaded model and
// records the outcome.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
	"github.com/leapstack-labs/incomecast/pkg/model"
)

// BundleSource serves the current model bundle. *artifact.Provider
// implements it.
type BundleSource interface {
	Current() (*artifact.Bundle, error)
}

// Config holds service dependencies.
type Config struct {
	// Models serves the classifier and reference columns (required).
	Models BundleSource
	// Schema validates raw input; nil uses features.DefaultSchema.
	Schema *features.Schema
	// Store persists predictions (optional).
	Store core.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// OnPredict is called after each successful prediction (optional).
	OnPredict func(*core.Prediction)

	now func() time.Time
}

// Service turns raw form values into predictions.
type Service struct {
	models    BundleSource
	schema    *features.Schema
	store     core.Store
	logger    *slog.Logger
	onPredict func(*core.Prediction)
	now       func() time.Time
}

// New creates a prediction service.
func New(cfg Config) (*Service, error) {
	if cfg.Models == nil {
		return nil, fmt.Errorf("predict: no model source configured")
	}
	schema := cfg.Schema
	if schema == nil {
		schema = features.DefaultSchema()
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid form schema: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.now
	if now == nil {
		now = time.Now
	}
	return &Service{
		models:    cfg.Models,
		schema:    schema,
		store:     cfg.Store,
		logger:    logger,
		onPredict: cfg.OnPredict,
		now:       now,
	}, nil
}

// Schema returns the form schema in use.
func (s *Service) Schema() *features.Schema {
	return s.schema
}

// Models returns the bundle source.
func (s *Service) Models() BundleSource {
	return s.models
}

// Ready reports the current bundle, or the reason none is loaded.
func (s *Service) Ready() (*artifact.Bundle, error) {
	return s.models.Current()
}

// Predict validates values, aligns them to the model columns and scores
// them. Errors are *features.ValidationError for bad input, wrap
// core.ErrModelUnavailable when no model is loaded, and wrap classifier
// failures otherwise. A failure to persist is logged, not returned.
func (s *Service) Predict(ctx context.Context, values map[string]string) (*core.Prediction, error) {
	bundle, err := s.models.Current()
	if err != nil {
		return nil, err
	}

	record, err := s.schema.Parse(values)
	if err != nil {
		return nil, err
	}

	frame, report, err := features.Encode(record, bundle.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to align features: %w", err)
	}
	if len(report.Unknown) > 0 {
		s.logger.Debug("input produced columns unknown to the model",
			slog.Any("columns", report.Unknown))
	}

	proba, err := model.PositiveProbability(bundle.Classifier, frame.Values)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	label, err := bundle.Classifier.Predict(frame.Values)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	p := &core.Prediction{
		ID:             uuid.New().String(),
		CreatedAt:      s.now().UTC(),
		Inputs:         inputsOf(record),
		Label:          label,
		Probability:    proba,
		Exceeds:        label == 1,
		ModelName:      bundle.Meta.Name,
		ModelVersion:   bundle.Meta.Version,
		UnknownColumns: report.Unknown,
	}

	if s.store != nil {
		if err := s.store.SavePrediction(ctx, p); err != nil {
			s.logger.Warn("failed to record prediction", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("prediction",
		slog.Int("label", p.Label),
		slog.Float64("probability", p.Probability),
		slog.String("model", p.ModelName))

	if s.onPredict != nil {
		s.onPredict(p)
	}
	return p, nil
}

func inputsOf(r features.Record) []core.Input {
	out := make([]core.Input, len(r))
	for i, c := range r {
		out[i] = core.Input{Name: c.Name, Value: c.Text}
	}
	return out
}

package core

import "context"

// Store persists prediction history.
type Store interface {
	SavePrediction(ctx context.Context, p *Prediction) error
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
	ListPredictions(ctx context.Context, limit int) ([]*Prediction, error)
	CountPredictions(ctx context.Context) (int, error)
	Close() error
}

package model

import "fmt"

// StandardScaler centers and scales each feature: (x - mean) / scale.
// A zero scale leaves the centered value unchanged.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// NewStandardScaler validates and returns a scaler.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("scaler has no features")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler has %d means and %d scales", len(mean), len(scale))
	}
	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// NumFeatures implements Transformer.
func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

// Transform implements Transformer.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if err := checkWidth(len(s.Mean), x); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for j, v := range x {
		scale := s.Scale[j]
		if scale == 0 {
			scale = 1
		}
		out[j] = (v - s.Mean[j]) / scale
	}
	return out, nil
}

// Pipeline applies transformers in order, then the final classifier.
type Pipeline struct {
	Steps []Transformer
	Final Classifier
}

// NewPipeline checks that every step agrees on the feature width.
func NewPipeline(final Classifier, steps ...Transformer) (*Pipeline, error) {
	if final == nil {
		return nil, fmt.Errorf("pipeline has no final estimator")
	}
	for i, st := range steps {
		if st.NumFeatures() != final.NumFeatures() {
			return nil, fmt.Errorf("step %d expects %d features, estimator expects %d", i, st.NumFeatures(), final.NumFeatures())
		}
	}
	return &Pipeline{Steps: steps, Final: final}, nil
}

// NumFeatures implements Classifier.
func (p *Pipeline) NumFeatures() int { return p.Final.NumFeatures() }

// Classes implements Classifier.
func (p *Pipeline) Classes() []int { return p.Final.Classes() }

func (p *Pipeline) transform(x []float64) ([]float64, error) {
	var err error
	for _, st := range p.Steps {
		if x, err = st.Transform(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// PredictProba implements Classifier.
func (p *Pipeline) PredictProba(x []float64) ([]float64, error) {
	x, err := p.transform(x)
	if err != nil {
		return nil, err
	}
	return p.Final.PredictProba(x)
}

// Predict implements Classifier.
func (p *Pipeline) Predict(x []float64) (int, error) {
	x, err := p.transform(x)
	if err != nil {
		return 0, err
	}
	return p.Final.Predict(x)
}

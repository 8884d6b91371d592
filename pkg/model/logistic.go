package model

import (
	"fmt"
	"math"
)

// DefaultThreshold is the probability above which class 1 is predicted.
const DefaultThreshold = 0.5

// LogisticRegression is a fitted binary logistic regression.
type LogisticRegression struct {
	Coef      []float64
	Intercept float64
	// Threshold on P(class 1); zero means DefaultThreshold.
	Threshold float64
}

// NewLogisticRegression validates and returns a logistic regression.
func NewLogisticRegression(coef []float64, intercept, threshold float64) (*LogisticRegression, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic regression has no coefficients")
	}
	if threshold < 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1)", threshold)
	}
	return &LogisticRegression{Coef: coef, Intercept: intercept, Threshold: threshold}, nil
}

// NumFeatures implements Classifier.
func (m *LogisticRegression) NumFeatures() int { return len(m.Coef) }

// Classes implements Classifier.
func (m *LogisticRegression) Classes() []int { return binaryClasses }

// DecisionFunction returns the linear term w·x + b.
func (m *LogisticRegression) DecisionFunction(x []float64) (float64, error) {
	if err := checkWidth(len(m.Coef), x); err != nil {
		return 0, err
	}
	z := m.Intercept
	for j, v := range x {
		z += m.Coef[j] * v
	}
	return z, nil
}

// PredictProba implements Classifier.
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Predict implements Classifier. Class 1 requires P(class 1) strictly above
// the threshold, which at 0.5 is the same as a positive decision function.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	threshold := m.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if proba[1] > threshold {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

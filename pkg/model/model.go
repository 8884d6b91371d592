// Package model evaluates pre-trained binary classifiers on aligned
// feature rows. Models are never trained here; their parameters come from
// an artifact produced elsewhere.
package model

import (
	"fmt"

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// Classifier scores a single aligned feature row.
type Classifier interface {
	// NumFeatures is the row width the classifier was trained with.
	NumFeatures() int
	// Classes lists class labels in the order PredictProba reports them.
	Classes() []int
	// PredictProba returns one probability per class.
	PredictProba(x []float64) ([]float64, error)
	// Predict returns the predicted class label.
	Predict(x []float64) (int, error)
}

// Transformer is a preprocessing step applied before the final estimator.
type Transformer interface {
	NumFeatures() int
	Transform(x []float64) ([]float64, error)
}

// PositiveProbability returns the probability of class 1.
func PositiveProbability(c Classifier, x []float64) (float64, error) {
	proba, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}
	for i, label := range c.Classes() {
		if label == 1 && i < len(proba) {
			return proba[i], nil
		}
	}
	return 0, fmt.Errorf("classifier has no class 1 (classes %v)", c.Classes())
}

func checkWidth(want int, x []float64) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d features, model expects %d", core.ErrFeatureMismatch, len(x), want)
	}
	return nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

var binaryClasses = []int{0, 1}

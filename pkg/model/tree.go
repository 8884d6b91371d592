package model

import (
	"fmt"
)

// leaf marks a node without children in the flattened tree arrays.
const leaf = -1

// DecisionTree is a fitted CART classifier stored as parallel node arrays:
// node i tests x[Feature[i]] <= Threshold[i] and continues at
// ChildrenLeft[i] when true, ChildrenRight[i] otherwise. Leaves have both
// children set to -1 and Value[i] holds per-class weights.
type DecisionTree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64
	Value         [][]float64
	ClassLabels   []int
	Features      int
}

// Validate checks the node arrays for consistency.
func (t *DecisionTree) Validate() error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays have different lengths")
	}
	if len(t.ClassLabels) == 0 {
		return fmt.Errorf("tree has no classes")
	}
	if t.Features <= 0 {
		return fmt.Errorf("tree has no features")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has a single child", i)
		}
		if l == leaf {
			if len(t.Value[i]) != len(t.ClassLabels) {
				return fmt.Errorf("leaf %d has %d class weights, want %d", i, len(t.Value[i]), len(t.ClassLabels))
			}
			continue
		}
		// children are always stored after their parent
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has out-of-range children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= t.Features {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], t.Features)
		}
	}
	return nil
}

// NumFeatures implements Classifier.
func (t *DecisionTree) NumFeatures() int { return t.Features }

// Classes implements Classifier.
func (t *DecisionTree) Classes() []int { return t.ClassLabels }

// PredictProba implements Classifier.
func (t *DecisionTree) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(t.Features, x); err != nil {
		return nil, err
	}
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return normalize(t.Value[node]), nil
}

// Predict implements Classifier.
func (t *DecisionTree) Predict(x []float64) (int, error) {
	proba, err := t.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return t.ClassLabels[argmax(proba)], nil
}

// RandomForest averages the class probabilities of its trees.
type RandomForest struct {
	Trees []*DecisionTree
}

// NewRandomForest validates that every tree agrees on width and classes.
func NewRandomForest(trees []*DecisionTree) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	first := trees[0]
	for i, t := range trees {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		if t.Features != first.Features {
			return nil, fmt.Errorf("tree %d has %d features, tree 0 has %d", i, t.Features, first.Features)
		}
		if !equalInts(t.ClassLabels, first.ClassLabels) {
			return nil, fmt.Errorf("tree %d classes %v differ from %v", i, t.ClassLabels, first.ClassLabels)
		}
	}
	return &RandomForest{Trees: trees}, nil
}

// NumFeatures implements Classifier.
func (f *RandomForest) NumFeatures() int { return f.Trees[0].Features }

// Classes implements Classifier.
func (f *RandomForest) Classes() []int { return f.Trees[0].ClassLabels }

// PredictProba implements Classifier.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	sum := make([]float64, len(f.Classes()))
	for _, t := range f.Trees {
		p, err := t.PredictProba(x)
		if err != nil {
			return nil, err
		}
		for i := range sum {
			sum[i] += p[i]
		}
	}
	for i := range sum {
		sum[i] /= float64(len(f.Trees))
	}
	return sum, nil
}

// Predict implements Classifier.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return f.Classes()[argmax(proba)], nil
}

func normalize(weights []float64) []float64 {
	out := make([]float64, len(weights))
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i, w := range weights {
		out[i] = w / total
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

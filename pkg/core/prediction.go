package core

import "time"

// Input is one raw form value as submitted, after validation.
type Input struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Prediction is the outcome of scoring one form submission.
type Prediction struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Inputs    []Input   `json:"inputs"`

	// Label is the class returned by the classifier (0 or 1).
	Label int `json:"label"`
	// Probability is P(class 1), the probability that income exceeds the threshold.
	Probability float64 `json:"probability"`
	// Exceeds mirrors Label == 1.
	Exceeds bool `json:"exceeds"`

	ModelName    string `json:"model_name"`
	ModelVersion string `json:"model_version"`

	// UnknownColumns were produced by encoding but are not model features.
	UnknownColumns []string `json:"unknown_columns,omitempty"`
}

// InputValue returns the submitted value for name, or "" when absent.
func (p *Prediction) InputValue(name string) string {
	for _, in := range p.Inputs {
		if in.Name == name {
			return in.Value
		}
	}
	return ""
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrediction_InputValue(t *testing.T) {
	p := &Prediction{Inputs: []Input{
		{Name: "age", Value: "30"},
		{Name: "sex", Value: "Female"},
	}}

	assert.Equal(t, "30", p.InputValue("age"))
	assert.Equal(t, "Female", p.InputValue("sex"))
	assert.Empty(t, p.InputValue("race"))
}

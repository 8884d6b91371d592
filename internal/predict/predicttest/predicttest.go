// Package predicttest builds small in-memory model bundles for tests of
// packages that sit on top of the prediction service.
package predicttest

import (
	"time"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/pkg/model"
)

// Columns is the reference column list of Bundle.
var Columns = []string{"age", "hours.per.week", "education_Doctorate", "sex_Female", "sex_Male"}

// Bundle returns a logistic model over Columns with
// z = 0.05*age + 0.05*hours + 2*doctorate - 5.
// Age 30 and 40 hours with a bachelor's degree gives z = -1.5 (class 0);
// age 60 and 60 hours with a doctorate gives z = 3 (class 1).
func Bundle() *artifact.Bundle {
	lr, err := model.NewLogisticRegression([]float64{0.05, 0.05, 2, 0, 0}, -5, 0)
	if err != nil {
		panic(err)
	}
	return &artifact.Bundle{
		Meta: artifact.Meta{
			Name:     "test-income",
			Version:  "7",
			Kind:     artifact.KindLogisticRegression,
			Path:     "memory",
			LoadedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Classifier:    lr,
		Columns:       append([]string(nil), Columns...),
		ColumnsSource: artifact.ColumnsFromArtifact,
	}
}

// Provider serves Bundle.
func Provider() *artifact.Provider {
	return artifact.Static(Bundle())
}

// HighIncome is a submission predicted as class 1 by Bundle.
func HighIncome() map[string]string {
	return map[string]string{"age": "60", "hours.per.week": "60", "education": "Doctorate", "sex": "Female"}
}

// LowIncome is a submission predicted as class 0 by Bundle.
func LowIncome() map[string]string {
	return map[string]string{"age": "30", "hours.per.week": "40", "education": "Bachelors", "sex": "Male"}
}

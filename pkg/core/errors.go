package core

import "errors"

var (
	// ErrModelUnavailable is returned when no model artifact could be loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFeatureMismatch is returned when a feature vector does not match
	// the width the classifier was trained with.
	ErrFeatureMismatch = errors.New("feature count mismatch")
)

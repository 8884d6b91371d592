// Package core defines the shared language of incomecast.
//
// This package contains:
//   - Domain entities (Prediction, Input)
//   - Service interfaces (Store)
//   - Sentinel errors shared by the service, UI and CLI layers
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core

// Package health reports whether a model is loaded.
package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
)

// Status is the /healthz response body.
type Status struct {
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Model     *ModelInfo `json:"model,omitempty"`
	Listeners int        `json:"listeners"`
}

// ModelInfo describes the served model.
type ModelInfo struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Kind          string    `json:"kind"`
	Columns       int       `json:"columns"`
	ColumnsSource string    `json:"columns_source"`
	Checksum      string    `json:"checksum,omitempty"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// SetupRoutes configures routes for the health feature.
func SetupRoutes(router chi.Router, models predict.BundleSource, notify *notifier.Notifier) error {
	router.Get("/healthz", Handler(models, notify))
	return nil
}

// Handler answers 200 with model metadata, or 503 when no model is loaded.
func Handler(models predict.BundleSource, notify *notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := Status{Status: "ok"}
		if notify != nil {
			status.Listeners = notify.Count()
		}

		code := http.StatusOK
		bundle, err := models.Current()
		if err != nil {
			status.Status = "unavailable"
			status.Error = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status.Model = &ModelInfo{
				Name:          bundle.Meta.Name,
				Version:       bundle.Meta.Version,
				Kind:          bundle.Meta.Kind,
				Columns:       len(bundle.Columns),
				ColumnsSource: string(bundle.ColumnsSource),
				Checksum:      bundle.Meta.Checksum,
				LoadedAt:      bundle.Meta.LoadedAt,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// Package form provides the prediction form feature for the UI.
package form

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/incomecast/internal/predict"
)

// SetupRoutes configures routes for the form feature.
func SetupRoutes(
	router chi.Router,
	service *predict.Service,
	sessionStore sessions.Store,
	thresholdLabel string,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(service, sessionStore, thresholdLabel, logger)

	router.Get("/", handlers.FormPage)
	router.Post("/predict", handlers.Predict)

	return nil
}

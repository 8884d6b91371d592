// Package history lists recent predictions and streams updates.
package history

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// SetupRoutes configures routes for the history feature.
func SetupRoutes(router chi.Router, store core.Store, schema *features.Schema, notify *notifier.Notifier) error {
	handlers := NewHandlers(store, schema, notify)

	router.Get("/history", handlers.HistoryPage)
	router.Get("/history/updates", handlers.HistoryUpdates)

	return nil
}

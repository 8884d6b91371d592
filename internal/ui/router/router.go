// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/incomecast/internal/predict"
	formFeature "github.com/leapstack-labs/incomecast/internal/ui/features/form"
	healthFeature "github.com/leapstack-labs/incomecast/internal/ui/features/health"
	historyFeature "github.com/leapstack-labs/incomecast/internal/ui/features/history"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/internal/ui/resources"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

// Deps are the services the routes need.
type Deps struct {
	Service        *predict.Service
	Store          core.Store
	SessionStore   sessions.Store
	Notifier       *notifier.Notifier
	ThresholdLabel string
	Logger         *slog.Logger
	IsDev          bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	if deps.IsDev {
		setupReload(router)
	}

	router.Handle(resources.StaticPrefix+"*", resources.Handler())

	if err := formFeature.SetupRoutes(router, deps.Service, deps.SessionStore, deps.ThresholdLabel, deps.Logger); err != nil {
		return err
	}

	if err := historyFeature.SetupRoutes(router, deps.Store, deps.Service.Schema(), deps.Notifier); err != nil {
		return err
	}

	if err := healthFeature.SetupRoutes(router, deps.Service.Models(), deps.Notifier); err != nil {
		return err
	}

	return nil
}

// setupReload serves the dev-mode page reload hooks: /reload is held open
// by the page and /hotreload triggers a reload of the connected page.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

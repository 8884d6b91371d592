package history

import (
	"context"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/incomecast/internal/ui/features/common"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// PageSize is the number of predictions shown.
const PageSize = 50

// Handlers provides HTTP handlers for the history feature.
type Handlers struct {
	store    core.Store
	schema   *features.Schema
	notifier *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, schema *features.Schema, notify *notifier.Notifier) *Handlers {
	if schema == nil {
		schema = features.DefaultSchema()
	}
	return &Handlers{store: store, schema: schema, notifier: notify}
}

// HistoryPage renders the history page with the current rows.
func (h *Handlers) HistoryPage(w http.ResponseWriter, r *http.Request) {
	page := common.NewPage("Historique", "/history", h.buildView(r.Context()))
	if err := common.FullPage(pageTemplate, page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HistoryUpdates is the long-lived SSE endpoint of the history page. It
// does not send initial state: that is rendered by HistoryPage.
func (h *Handlers) HistoryUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(common.Render(pageTemplate, "history", h.buildView(ctx))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) buildView(ctx context.Context) *HistoryView {
	view := &HistoryView{}
	if h.store == nil {
		view.Error = "Historique désactivé"
		return view
	}

	predictions, err := h.store.ListPredictions(ctx, PageSize)
	if err != nil {
		view.Error = err.Error()
		return view
	}
	total, err := h.store.CountPredictions(ctx)
	if err != nil {
		view.Error = err.Error()
		return view
	}

	view.Rows = rowViews(h.schema, predictions)
	view.Total = total
	return view
}

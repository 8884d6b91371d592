package form

import (
	"encoding/gob"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/ui/features/common"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

const (
	sessionName = "incomecast"
	valuesKey   = "form_values"
)

func init() {
	// session values are gob-encoded into the cookie
	gob.Register(map[string]string{})
}

// Handlers provides HTTP handlers for the form feature.
type Handlers struct {
	service        *predict.Service
	sessionStore   sessions.Store
	thresholdLabel string
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *predict.Service, sessionStore sessions.Store, thresholdLabel string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		service:        service,
		sessionStore:   sessionStore,
		thresholdLabel: thresholdLabel,
		logger:         logger,
	}
}

// FormPage renders the form, prefilled with the last submitted values.
func (h *Handlers) FormPage(w http.ResponseWriter, r *http.Request) {
	view := h.buildView(h.remembered(r), nil, nil)
	h.renderPage(w, r, view)
}

// Predict scores the submitted form. Datastar requests get the #result
// element patched over SSE; plain form posts get the whole page back.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var (
		values map[string]string
		p      *core.Prediction
		err    error
	)
	if err = r.ParseForm(); err == nil {
		values = h.submitted(r)
		p, err = h.service.Predict(r.Context(), values)
	}

	result := h.result(p, err)
	var verr *features.ValidationError
	errors.As(err, &verr)

	h.remember(w, r, values)

	if common.IsDatastar(r) {
		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(common.Render(pageTemplate, "result", result)); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	h.renderPage(w, r, h.buildView(values, result, verr))
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, view *FormView) {
	page := common.NewPage("Prédiction", "/", view)
	if err := common.FullPage(pageTemplate, page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) buildView(values map[string]string, result *ResultView, verr *features.ValidationError) *FormView {
	view := &FormView{
		Fields: fieldViews(h.service.Schema(), values, verr),
		Result: result,
	}

	bundle, err := h.service.Ready()
	if err != nil {
		view.LoadError = predict.LoadError + err.Error()
		view.Disabled = true
		return view
	}
	view.Model = &ModelView{
		Name:    bundle.Meta.Name,
		Version: bundle.Meta.Version,
		Columns: len(bundle.Columns),
	}
	return view
}

func (h *Handlers) result(p *core.Prediction, err error) *ResultView {
	if err != nil {
		h.logger.Debug("prediction failed", slog.String("error", err.Error()))
		return &ResultView{
			Failed:  true,
			Title:   predict.ErrorTitle,
			Details: predict.ErrorDetails + err.Error(),
			Hint:    predict.ErrorHint,
		}
	}
	return &ResultView{
		Exceeds: p.Exceeds,
		Message: predict.Message(p, h.thresholdLabel),
	}
}

// submitted collects the schema fields from the parsed form.
func (h *Handlers) submitted(r *http.Request) map[string]string {
	schema := h.service.Schema()
	values := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		if v := r.PostForm.Get(f.Name); v != "" {
			values[f.Name] = v
		}
	}
	return values
}

func (h *Handlers) remembered(r *http.Request) map[string]string {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		// a cookie signed with an old secret; start over
		return nil
	}
	values, _ := session.Values[valuesKey].(map[string]string)
	return values
}

func (h *Handlers) remember(w http.ResponseWriter, r *http.Request, values map[string]string) {
	if len(values) == 0 {
		return
	}
	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values[valuesKey] = values
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save form session", slog.String("error", err.Error()))
	}
}

// Package tui is a terminal rendition of the prediction form.
package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Width(32)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultPadding = lipgloss.NewStyle().MarginTop(1)
)

// field is the editable state of one schema field.
type field struct {
	def    features.Field
	number float64
	choice int
}

func (f field) value() string {
	if f.def.Kind == features.KindNumeric {
		return strconv.FormatFloat(f.number, 'f', -1, 64)
	}
	return f.def.Choices[f.choice].Value
}

func (f field) display() string {
	if f.def.Kind == features.KindNumeric {
		return f.value()
	}
	return f.def.Choices[f.choice].Label
}

// step moves a numeric value by delta, or cycles choices.
func (f *field) step(delta int) {
	if f.def.Kind == features.KindNumeric {
		f.number = math.Max(f.def.Min, math.Min(f.def.Max, f.number+float64(delta)))
		return
	}
	n := len(f.def.Choices)
	f.choice = ((f.choice+delta)%n + n) % n
}

// predictedMsg carries the outcome of a prediction back to Update.
type predictedMsg struct {
	prediction *core.Prediction
	err        error
}

// Model is the bubbletea model of the form.
type Model struct {
	service        *predict.Service
	thresholdLabel string
	fields         []field
	cursor         int
	loadErr        error
	busy           bool
	result         *core.Prediction
	err            error
	keys           keyMap
	help           help.Model
	ctx            context.Context
}

// New creates the form model over the service's schema.
func New(ctx context.Context, service *predict.Service, thresholdLabel string) Model {
	m := Model{
		service:        service,
		thresholdLabel: thresholdLabel,
		keys:           defaultKeyMap(),
		help:           help.New(),
		ctx:            ctx,
	}
	m.reset()
	_, m.loadErr = service.Ready()
	return m
}

func (m *Model) reset() {
	schema := m.service.Schema()
	m.fields = make([]field, len(schema.Fields))
	for i, f := range schema.Fields {
		m.fields[i] = field{def: f, number: f.Default}
	}
}

// Values returns the current form values keyed by field name.
func (m Model) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		out[f.def.Name] = f.value()
	}
	return out
}

// Result returns the last prediction, if any.
func (m Model) Result() *core.Prediction { return m.result }

// Err returns the last prediction error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case predictedMsg:
		m.busy = false
		m.result, m.err = msg.prediction, msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor - 1 + len(m.fields)) % len(m.fields)
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % len(m.fields)
		case key.Matches(msg, m.keys.Left):
			m.fields[m.cursor].step(-1)
		case key.Matches(msg, m.keys.Right):
			m.fields[m.cursor].step(1)
		case key.Matches(msg, m.keys.Reset):
			m.reset()
			m.result, m.err = nil, nil
		case key.Matches(msg, m.keys.Predict):
			if m.loadErr != nil || m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.predict()
		}
	}
	return m, nil
}

func (m Model) predict() tea.Cmd {
	values := m.Values()
	service := m.service
	ctx := m.ctx
	return func() tea.Msg {
		p, err := service.Predict(ctx, values)
		return predictedMsg{prediction: p, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Prédiction de revenu"))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render(predict.LoadError + m.loadErr.Error()))
		b.WriteString("\n\n")
	}

	for i, f := range m.fields {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("› ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, labelStyle.Render(f.def.Label), valueStyle.Render("‹ "+f.display()+" ›"))
	}

	switch {
	case m.busy:
		b.WriteString(resultPadding.Render(mutedStyle.Render("Prédiction en cours...")))
	case m.err != nil:
		b.WriteString(resultPadding.Render(errorStyle.Render(
			predict.ErrorTitle + "\n" + predict.ErrorDetails + m.err.Error() + "\n" + predict.ErrorHint)))
	case m.result != nil:
		style := warningStyle
		if m.result.Exceeds {
			style = successStyle
		}
		b.WriteString(resultPadding.Render(style.Render(predict.Message(m.result, m.thresholdLabel))))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Run starts the form on in/out and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, service *predict.Service, thresholdLabel string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, service, thresholdLabel),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Package output renders command results for terminals, markdown consumers
// and JSON scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects how results are printed.
type OutputMode string //nolint:revive // output.OutputMode reads fine at call sites

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Renderer writes command output in the effective mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode
	styles styles
}

type styles struct {
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errorS  lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds styles to w. A writer declared as a terminal gets at
// least basic ANSI colors even when detection sees a plain stream, unless
// NO_COLOR is set.
func newStyles(w io.Writer, isTTY bool) styles {
	lr := lipgloss.NewRenderer(w)
	if isTTY && lr.ColorProfile() == termenv.Ascii && !termenv.EnvNoColor() {
		lr.SetColorProfile(termenv.ANSI)
	}
	return styles{
		header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		errorS:  lr.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
		styles: newStyles(out, isTTY),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// EffectiveMode resolves auto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

func (r *Renderer) styled(s lipgloss.Style, text string) string {
	if !r.isTTY || r.EffectiveMode() != ModeText {
		return text
	}
	return s.Render(text)
}

// Header styles a section title.
func (r *Renderer) Header(text string) string { return r.styled(r.styles.header, text) }

// Success styles a positive outcome.
func (r *Renderer) Success(text string) string { return r.styled(r.styles.success, text) }

// Warning styles a cautionary outcome.
func (r *Renderer) Warning(text string) string { return r.styled(r.styles.warning, text) }

// Error styles a failure.
func (r *Renderer) Error(text string) string { return r.styled(r.styles.errorS, text) }

// Muted styles secondary information.
func (r *Renderer) Muted(text string) string { return r.styled(r.styles.muted, text) }

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows as a box table in text mode or a pipe table in
// markdown mode.
func (r *Renderer) Table(headers []string, rows [][]string) {
	t := table.NewWriter()

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return
	}
	t.SetStyle(table.StyleLight)
	r.Println(t.Render())
}

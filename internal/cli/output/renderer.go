// Package output renders command results as styled text, markdown or JSON
// depending on the output mode and whether stdout is a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode is an output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header   lipgloss.Style
	Header2  lipgloss.Style
	Register lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the text-mode styles.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:  lipgloss.NewStyle().Bold(true),
		Register: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Header: plain, Header2: plain, Register: plain, Muted: plain, Error: plain}
}

// Renderer writes formatted output.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	styles := DefaultStyles()
	if !isTTY {
		styles = PlainStyles()
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY, styles: styles}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto || r.mode == "" {
		if r.isTTY {
			return ModeText
		}
		return ModeMarkdown
	}
	return r.mode
}

// Styles returns the renderer's styles. They render plain text off a terminal.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// Println writes a line.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a header at the given level.
func (r *Renderer) Header(level int, title string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, title))
		r.Println("")
		return
	}
	style := r.styles.Header
	if level > 1 {
		style = r.styles.Header2
	}
	r.Println(style.Render(title))
	r.Println("")
}

// Warn writes a warning to the error stream.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("warning:")+" "+msg)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader returns a markdown header.
func FormatHeader(level int, title string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + title
}

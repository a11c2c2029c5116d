// Package ui holds the lipgloss styles and small renderers for rbuild's
// human-facing output. Diagnostic logging does not go through here.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Palette.
const (
	colorError   = "#FF5F56"
	colorWarn    = "#FFBD2E"
	colorSuccess = "#04B575"
	colorHeader  = "#0077B6"
	colorDetail  = "#CCCCCC"
	colorMuted   = "#626262"
)

// Styles contains the shared styles for one output stream.
type Styles struct {
	Error   lipgloss.Style
	Warn    lipgloss.Style
	Success lipgloss.Style
	Header  lipgloss.Style
	Detail  lipgloss.Style
	Muted   lipgloss.Style

	renderer *lipgloss.Renderer
	titler   cases.Caser
}

// NewStyles binds a style set to w. With noColor every style renders plain text.
func NewStyles(w io.Writer, noColor bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		Error:    r.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true),
		Warn:     r.NewStyle().Foreground(lipgloss.Color(colorWarn)).Bold(true),
		Success:  r.NewStyle().Foreground(lipgloss.Color(colorSuccess)).Bold(true),
		Header:   r.NewStyle().Foreground(lipgloss.Color(colorHeader)).Bold(true),
		Detail:   r.NewStyle().Foreground(lipgloss.Color(colorDetail)),
		Muted:    r.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		renderer: r,
		titler:   cases.Title(language.English),
	}
}

// Monochrome reports whether the styles render without color.
func (s *Styles) Monochrome() bool {
	return s.renderer.ColorProfile() == termenv.Ascii
}

// Title converts a step name such as "run-tests" into "Run Tests".
func (s *Styles) Title(step string) string {
	return s.titler.String(strings.ReplaceAll(step, "-", " "))
}

// StepHeader renders the banner printed before a step starts.
func (s *Styles) StepHeader(step string) string {
	return s.Header.Render("==> " + s.Title(step))
}

// Command renders an echoed command line.
func (s *Styles) Command(cmdline string) string {
	return s.Muted.Render("command: " + cmdline)
}

// Summary renders the pass/total line printed after a test run.
func (s *Styles) Summary(passed, total int) string {
	line := fmt.Sprintf("passed %d/%d", passed, total)
	if passed == total {
		return s.Success.Render(line)
	}
	return s.Warn.Render(line)
}

// Failures renders the line naming every failed test. Empty input renders "".
func (s *Styles) Failures(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return s.Error.Render("failed: " + strings.Join(names, ", "))
}

// StepStatus renders a one-line verdict for a finished step.
func (s *Styles) StepStatus(step string, code int) string {
	if code == 0 {
		return s.Success.Render("ok") + " " + step
	}
	return s.Error.Render(fmt.Sprintf("FAIL (%d)", code)) + " " + step
}

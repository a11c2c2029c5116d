// Package progress renders the overwritable test-run progress line.
//
// The Reporter keeps no counters of its own: every call is given the
// (completed, total) pair and draws from that alone.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/dkoosis/rbuild/internal/ui"
)

// BarWidth is the number of cells in the bar.
const BarWidth = 20

const (
	fullChar  = '#'
	emptyChar = '-'

	defaultTermWidth = 80
	eraseLine        = "\r\033[2K"
)

// Options configures a Reporter.
type Options struct {
	// Interactive redraws in place. Otherwise each update is a new line.
	Interactive bool
	NoColor     bool
	// TermWidth bounds the rendered line. Zero means 80.
	TermWidth int
}

// Detect fills Interactive and TermWidth from w. Only an *os.File attached
// to a terminal is interactive.
func Detect(w io.Writer, noColor bool) Options {
	opts := Options{NoColor: noColor}
	f, ok := w.(*os.File)
	if !ok {
		return opts
	}
	fd := int(f.Fd()) //nolint:gosec // fd fits in int
	if term.IsTerminal(fd) {
		opts.Interactive = true
		if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
			opts.TermWidth = cols
		}
	}
	return opts
}

type flusher interface {
	Flush() error
}

// Reporter writes progress lines to a single writer.
type Reporter struct {
	out     io.Writer
	opts    Options
	bar     progress.Model
	styles  *ui.Styles
	drawn   bool
	stopped bool
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.TermWidth <= 0 {
		opts.TermWidth = defaultTermWidth
	}
	profile := termenv.ANSI256
	if opts.NoColor {
		profile = termenv.Ascii
	}
	bar := progress.New(
		progress.WithWidth(BarWidth),
		progress.WithoutPercentage(),
		progress.WithFillCharacters(fullChar, emptyChar),
		progress.WithSolidFill("#04B575"),
		progress.WithColorProfile(profile),
	)
	bar.EmptyColor = "#626262"
	return &Reporter{
		out:    w,
		opts:   opts,
		bar:    bar,
		styles: ui.NewStyles(w, opts.NoColor),
	}
}

// Bar returns the filled length for completed of total, floor(20*c/t).
// An empty run counts as complete.
func Bar(completed, total int) int {
	if total <= 0 {
		return BarWidth
	}
	completed = max(0, min(completed, total))
	return BarWidth * completed / total
}

// Percent returns floor(100*c/t), 100 for an empty run.
func Percent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	completed = max(0, min(completed, total))
	return 100 * completed / total
}

// Line renders one progress line without any cursor control.
func (r *Reporter) Line(completed, total int, label string) string {
	filled := Bar(completed, total)
	line := fmt.Sprintf("[%s] %3d%% (%d/%d)",
		r.bar.ViewAs(float64(filled)/BarWidth), Percent(completed, total), completed, total)
	if label == "" {
		return line
	}
	prefixWidth := runewidth.StringWidth(fmt.Sprintf("[%*s] %3d%% (%d/%d) ", BarWidth, "", Percent(completed, total), completed, total))
	room := r.opts.TermWidth - prefixWidth - 1
	if room <= 0 {
		return line
	}
	return line + " " + r.styles.Muted.Render(runewidth.Truncate(label, room, "..."))
}

// Update draws the bar for completed of total with label naming the test
// about to start. It erases the previous line first when interactive.
func (r *Reporter) Update(completed, total int, label string) {
	if r.stopped {
		return
	}
	r.write(r.Line(completed, total, label))
}

// Finish draws the completion line with the final passed/total counts and
// stops the Reporter. Further calls are ignored.
func (r *Reporter) Finish(passed, total int) {
	if r.stopped {
		return
	}
	line := fmt.Sprintf("[%s] %3d%% %s",
		r.bar.ViewAs(float64(Bar(total, total))/BarWidth), Percent(total, total), r.styles.Summary(passed, total))
	r.write(line)
	if r.opts.Interactive {
		fmt.Fprintln(r.out)
		r.flush()
	}
	r.stopped = true
}

func (r *Reporter) write(line string) {
	if r.opts.Interactive {
		if r.drawn {
			fmt.Fprint(r.out, eraseLine)
		}
		fmt.Fprint(r.out, line)
	} else {
		fmt.Fprintln(r.out, line)
	}
	r.drawn = true
	r.flush()
}

func (r *Reporter) flush() {
	if f, ok := r.out.(flusher); ok {
		_ = f.Flush()
	}
}

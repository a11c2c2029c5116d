package magetasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dkoosis/rbuild/internal/config"
	"github.com/dkoosis/rbuild/internal/proc"
	"github.com/dkoosis/rbuild/internal/ui"
)

// Out receives every task message and tool output.
var Out io.Writer = os.Stdout

func styles() *ui.Styles {
	noColor, _ := config.EnvNoColor()
	return ui.NewStyles(Out, noColor)
}

// PrintH1Header prints a top-level header with decoration.
func PrintH1Header(title string) {
	width := 80
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, strings.Repeat("=", width))
	padding := max(0, (width-len(title))/2)
	fmt.Fprintf(Out, "%s%s\n", strings.Repeat(" ", padding), title)
	fmt.Fprintln(Out, strings.Repeat("=", width))
	fmt.Fprintln(Out)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, styles().Header.Render(fmt.Sprintf("=== %s ===", title)))
	fmt.Fprintln(Out)
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, styles().Success.Render("✅ "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(Out, styles().Warn.Render("⚠️  "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(Out, styles().Error.Render("❌ "+msg))
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Fprintf(Out, "ℹ️  %s\n", msg)
}

// Run prints label, runs the tool with its output attached to Out and
// returns an error for a non-zero exit. A missing tool is reported as a
// proc.ToolNotFoundError so callers can treat it as optional.
func Run(label, name string, args ...string) error {
	fmt.Fprintf(Out, "▶ %s\n", label)
	if _, err := proc.LookTool(name); err != nil {
		return err
	}
	res := proc.Run(context.Background(), proc.Spec{
		Name:   name,
		Args:   args,
		Dir:    ProjectRoot,
		Stdout: Out,
		Stderr: Out,
	})
	if res.Err != nil {
		PrintError(fmt.Sprintf("%s failed (exit %d)", label, res.ExitCode))
		return fmt.Errorf("%s: %w", label, res.Err)
	}
	return nil
}

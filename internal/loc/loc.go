// Package loc counts the project's C++ lines of code with cloc.
package loc

import (
	"context"
	"fmt"
	"io"

	"github.com/dkoosis/rbuild/internal/proc"
)

const tool = "cloc"

// Args are passed to cloc.
var Args = []string{"--include-ext=cpp,hpp", "src/", "include/"}

// Options configures Run. Zero values use the real cloc on PATH.
type Options struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer

	LookPath func(string) (string, error)
	Spawn    func(context.Context, proc.Spec) proc.Result
}

// Run echoes and runs cloc, returning its exit code. A missing cloc prints a
// message and returns 1.
func Run(ctx context.Context, w io.Writer, opts Options) int {
	if opts.LookPath == nil {
		opts.LookPath = proc.LookTool
	}
	if opts.Spawn == nil {
		opts.Spawn = proc.Run
	}
	if opts.Stdout == nil {
		opts.Stdout = w
	}

	if _, err := opts.LookPath(tool); err != nil {
		fmt.Fprintf(w, "%s was not found in PATH.\n", tool)
		return 1
	}

	spec := proc.Spec{Name: tool, Args: Args, Dir: opts.Dir, Stdout: opts.Stdout, Stderr: opts.Stderr}
	fmt.Fprintf(w, "command: %s\n", spec.CommandLine())
	return opts.Spawn(ctx, spec).ExitCode
}

// Package proc spawns external tools with an explicit working directory and
// reduces their termination to a single exit code.
//
// Nothing here changes the process-wide working directory; every spawn names
// its own Dir.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	// ExitSpawnFailed is reported when a program exists but could not be started.
	ExitSpawnFailed = 1

	// ExitNotFound is reported when the program could not be located at all.
	ExitNotFound = 127
)

// Spec describes one child process.
type Spec struct {
	Name string
	Args []string
	// Dir is the child's working directory. Empty means the caller's.
	Dir string
	// Stdout and Stderr receive the child's streams; nil discards them.
	Stdout io.Writer
	Stderr io.Writer
	// Env is appended to the inherited environment.
	Env []string
}

// CommandLine renders s the way it would be typed in a shell.
func (s Spec) CommandLine() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// Result is the outcome of one spawn.
//
// Err is nil only when the child ran and exited zero. Started distinguishes a
// child that ran and failed from one that never launched.
type Result struct {
	ExitCode int
	Started  bool
	Err      error
}

// Run starts the child, waits for it and returns its exit status. It never
// panics and never returns a zero ExitCode alongside a non-nil Err.
func Run(ctx context.Context, spec Spec) Result {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: ExitCode(err), Err: fmt.Errorf("start %s: %w", spec.Name, err)}
	}

	err := cmd.Wait()
	if err == nil {
		return Result{Started: true}
	}
	return Result{ExitCode: ExitCode(err), Started: true, Err: err}
}

// ExitCode maps an error from exec onto a process exit code. Terminations
// that carry no code of their own (signals) are folded into a non-zero value
// so that a max-reduction over codes never mistakes them for success.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitCodeFromError(exitErr); ok && code > 0 {
			return code
		}
		return ExitSpawnFailed
	}

	if IsCommandNotFound(err) {
		return ExitNotFound
	}
	return ExitSpawnFailed
}

// IsCommandNotFound checks if the error indicates the command was not found.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	var notFound *ToolNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "executable file not found") ||
		strings.Contains(errStr, "no such file or directory")
}

// ToolNotFoundError reports a required external tool missing from PATH.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return e.Tool + " was not found in PATH."
}

// LookTool resolves name on PATH.
func LookTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return "", &ToolNotFoundError{Tool: name}
	}
	return path, nil
}

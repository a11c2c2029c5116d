//go:build !unix

package proc

import "os/exec"

// exitCodeFromError extracts the exit code from an exec.ExitError on non-Unix platforms.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode(), true
	}
	return 0, false
}

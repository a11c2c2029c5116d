package sequencer

import (
	"context"
	"io"

	"github.com/dkoosis/rbuild/internal/proc"
)

// Driver resolves and runs the external tools a step needs.
type Driver interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, spec proc.Spec) proc.Result
}

// ExecDriver runs tools as real child processes, forwarding their output.
type ExecDriver struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (d ExecDriver) LookPath(name string) (string, error) {
	return proc.LookTool(name)
}

func (d ExecDriver) Run(ctx context.Context, spec proc.Spec) proc.Result {
	if spec.Stdout == nil {
		spec.Stdout = d.Stdout
	}
	if spec.Stderr == nil {
		spec.Stderr = d.Stderr
	}
	return proc.Run(ctx, spec)
}

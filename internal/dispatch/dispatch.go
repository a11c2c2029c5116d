// Package dispatch executes the requested steps in a fixed precedence and
// reduces their exit codes to one process exit code.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/log"

	"github.com/dkoosis/rbuild/internal/sequencer"
	"github.com/dkoosis/rbuild/internal/step"
	"github.com/dkoosis/rbuild/internal/ui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 1
)

// ErrNoSteps is returned when the request names no operation.
var ErrNoSteps = errors.New("no operation requested")

// Request is the set of operations asked for on the command line.
type Request struct {
	Deps             bool
	LOC              bool
	GenerateBindings bool
	Configure        bool
	Compile          bool
	RunTests         bool
	Backend          sequencer.Backend
}

// Steps returns the requested steps in execution order.
func (r Request) Steps() []step.Name {
	requested := map[step.Name]bool{
		step.Deps:             r.Deps,
		step.LOC:              r.LOC,
		step.GenerateBindings: r.GenerateBindings,
		step.Configure:        r.Configure,
		step.Compile:          r.Compile,
		step.RunTests:         r.RunTests,
	}
	var out []step.Name
	for _, name := range step.Precedence {
		if requested[name] {
			out = append(out, name)
		}
	}
	return out
}

// Runner executes one requested step. It may return several results when the
// step pulled in prerequisites; the requested step's result comes last.
type Runner func(ctx context.Context) []step.Result

// Single adapts a function yielding one result.
func Single(fn func(ctx context.Context) step.Result) Runner {
	return func(ctx context.Context) []step.Result {
		return []step.Result{fn(ctx)}
	}
}

// Env supplies the runners and output for a dispatch.
type Env struct {
	Runners map[step.Name]Runner
	Out     io.Writer
	Styles  *ui.Styles
	Clock   clock.Clock
	Logger  *log.Logger
}

// Outcome is every collected result plus the reduced exit code.
type Outcome struct {
	Results  []step.Result
	ExitCode int
}

// Run executes the steps of req. A failing step never stops later ones; the
// exit code reflects the worst of them.
func Run(ctx context.Context, req Request, env Env) (Outcome, error) {
	steps := req.Steps()
	if len(steps) == 0 {
		return Outcome{ExitCode: ExitUsage}, ErrNoSteps
	}
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.Styles == nil {
		env.Styles = ui.NewStyles(env.Out, true)
	}
	if env.Clock == nil {
		env.Clock = clock.NewClock()
	}
	if env.Logger == nil {
		env.Logger = log.New(io.Discard)
	}

	var results []step.Result
	for _, name := range steps {
		fmt.Fprintln(env.Out, env.Styles.StepHeader(string(name)))

		runner, ok := env.Runners[name]
		if !ok {
			env.Logger.Error("no runner registered", "step", name)
			results = append(results, step.Result{Name: name, ExitCode: ExitFailure})
			continue
		}

		start := env.Clock.Now()
		produced := runner(ctx)
		// A blocked step never ran, so it keeps a zero duration.
		if n := len(produced); n > 0 && produced[n-1].Duration == 0 && !produced[n-1].Blocked {
			produced[n-1].Duration = env.Clock.Since(start)
		}
		for _, r := range produced {
			env.Logger.Debug("step finished", "step", r.Name, "code", r.ExitCode,
				"implied", r.Implied, "blocked", r.Blocked, "duration", r.Duration)
		}
		results = append(results, produced...)
	}

	return Outcome{Results: results, ExitCode: Reduce(results)}, nil
}

// Reduce folds step results with the worst-status rule: the maximum code
// wins. Codes below zero count as ExitFailure. No results is a usage failure.
func Reduce(results []step.Result) int {
	if len(results) == 0 {
		return ExitUsage
	}
	worst := ExitOK
	for _, r := range results {
		code := r.ExitCode
		if code < 0 {
			code = ExitFailure
		}
		worst = max(worst, code)
	}
	return worst
}

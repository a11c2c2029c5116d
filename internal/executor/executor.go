// Package executor launches runnable test binaries one at a time and turns
// each termination into a TestOutcome.
package executor

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/log"

	"github.com/dkoosis/rbuild/internal/catalog"
	"github.com/dkoosis/rbuild/internal/proc"
)

// Status is the terminal classification of one test.
type Status int

const (
	Skipped Status = iota
	Passed
	Failed
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Skip reasons.
const (
	ReasonNotExecutable    = "not executable"
	ReasonPlatformExcluded = "excluded by platform filter"
)

// TestOutcome is created exactly once per TestCase.
type TestOutcome struct {
	Case       catalog.TestCase
	Status     Status
	ExitCode   int
	SkipReason string
	Duration   time.Duration
}

// Spawner runs a child process to completion.
type Spawner interface {
	Spawn(ctx context.Context, spec proc.Spec) proc.Result
}

// SpawnFunc adapts a function to Spawner.
type SpawnFunc func(ctx context.Context, spec proc.Spec) proc.Result

func (f SpawnFunc) Spawn(ctx context.Context, spec proc.Spec) proc.Result { return f(ctx, spec) }

// Config configures an Executor. Zero values pick sane defaults.
type Config struct {
	RuntimeRoot string
	Conventions Conventions
	Spawner     Spawner
	Clock       clock.Clock
	Logger      *log.Logger
}

// Executor runs test cases sequentially. It holds no per-run state.
type Executor struct {
	root        string
	conventions Conventions
	spawner     Spawner
	clock       clock.Clock
	log         *log.Logger
}

// New creates an Executor. A relative runtime root is made absolute against
// the current directory once, here.
func New(cfg Config) *Executor {
	root := cfg.RuntimeRoot
	if root == "" {
		root = "bin"
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	e := &Executor{
		root:        root,
		conventions: cfg.Conventions,
		spawner:     cfg.Spawner,
		clock:       cfg.Clock,
		log:         cfg.Logger,
	}
	if e.conventions == nil {
		e.conventions = DefaultConventions()
	}
	if e.spawner == nil {
		e.spawner = SpawnFunc(proc.Run)
	}
	if e.clock == nil {
		e.clock = clock.NewClock()
	}
	if e.log == nil {
		e.log = log.New(io.Discard)
	}
	return e
}

// RuntimeRoot returns the absolute working directory used for tests.
func (e *Executor) RuntimeRoot() string { return e.root }

// Run executes tc if it is runnable and blocks until the child exits. Output
// streams are discarded. A binary that cannot be started is Failed, never fatal.
func (e *Executor) Run(ctx context.Context, tc catalog.TestCase) TestOutcome {
	switch {
	case !tc.PlatformEligible:
		return TestOutcome{Case: tc, Status: Skipped, SkipReason: ReasonPlatformExcluded}
	case !tc.IsExecutable:
		return TestOutcome{Case: tc, Status: Skipped, SkipReason: ReasonNotExecutable}
	}

	inv := e.conventions.Invocation(tc, e.root)
	e.log.Debug("spawn", "test", tc.Name, "program", inv.Program, "dir", inv.Dir)

	start := e.clock.Now()
	res := e.spawner.Spawn(ctx, proc.Spec{Name: inv.Program, Args: inv.Args, Dir: inv.Dir})
	elapsed := e.clock.Since(start)

	out := TestOutcome{Case: tc, Status: Passed, ExitCode: res.ExitCode, Duration: elapsed}
	if res.Err != nil || res.ExitCode != 0 {
		out.Status = Failed
		if out.ExitCode == 0 {
			out.ExitCode = proc.ExitSpawnFailed
		}
		e.log.Debug("test failed", "test", tc.Name, "code", out.ExitCode, "started", res.Started, "err", res.Err)
	}
	return out
}

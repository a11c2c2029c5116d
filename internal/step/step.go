// Package step names the high-level operations rbuild can perform and the
// result value each one produces.
package step

import "time"

// Name identifies a step.
type Name string

const (
	Deps             Name = "dependency-info"
	LOC              Name = "print-loc"
	GenerateBindings Name = "generate-bindings"
	Configure        Name = "configure"
	Compile          Name = "compile"
	RunTests         Name = "run-tests"
)

// Precedence is the fixed execution order of requested steps.
var Precedence = []Name{Deps, LOC, GenerateBindings, Configure, Compile, RunTests}

// Result is the outcome of one executed step.
type Result struct {
	Name     Name          `json:"step"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
	// Implied is set for prerequisites run on behalf of another step.
	Implied bool `json:"implied,omitempty"`
	// Blocked is set when a failed prerequisite prevented the step from running.
	Blocked bool `json:"blocked,omitempty"`
}

// OK reports whether the step succeeded.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Package aggregate folds per-test outcomes into an ExecutionReport.
package aggregate

import "github.com/dkoosis/rbuild/internal/executor"

// ExecutionReport is the folded result of one test run.
type ExecutionReport struct {
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Passed    int      `json:"passed"`
	Skipped   int      `json:"skipped"`
	Failed    []string `json:"failed"`
}

// ExitCode is 0 iff no test failed. Skipped tests never fail a run.
func (r ExecutionReport) ExitCode() int {
	if len(r.Failed) == 0 {
		return 0
	}
	return 1
}

// Done reports whether every expected outcome has arrived.
func (r ExecutionReport) Done() bool {
	return r.Completed >= r.Total
}

// Aggregator accumulates outcomes in arrival order. It is not safe for
// concurrent use; the run loop is single-threaded.
type Aggregator struct {
	report ExecutionReport
}

// New creates an Aggregator expecting total outcomes.
func New(total int) *Aggregator {
	return &Aggregator{report: ExecutionReport{Total: total, Failed: []string{}}}
}

// Add folds one outcome.
func (a *Aggregator) Add(o executor.TestOutcome) {
	a.report.Completed++
	switch o.Status {
	case executor.Passed:
		a.report.Passed++
	case executor.Failed:
		a.report.Failed = append(a.report.Failed, o.Case.Name)
	case executor.Skipped:
		a.report.Skipped++
	}
}

// Report returns a copy of the current report.
func (a *Aggregator) Report() ExecutionReport {
	r := a.report
	r.Failed = append([]string{}, a.report.Failed...)
	return r
}

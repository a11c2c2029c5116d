// Package testrun wires the run-tests step: catalog, executor, progress
// reporter and aggregator, in that order, on a single goroutine.
package testrun

import (
	"context"
	"fmt"
	"io"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/log"

	"github.com/dkoosis/rbuild/internal/aggregate"
	"github.com/dkoosis/rbuild/internal/catalog"
	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/platform"
	"github.com/dkoosis/rbuild/internal/progress"
	"github.com/dkoosis/rbuild/internal/ui"
)

// Options configures one test run.
type Options struct {
	TestDir     string
	RuntimeRoot string
	Platform    platform.Platform
	// CrossMarker is checked relative to the current directory.
	CrossMarker string
	Conventions executor.Conventions

	Out      io.Writer
	Progress progress.Options
	Styles   *ui.Styles

	Spawner executor.Spawner
	Clock   clock.Clock
	Logger  *log.Logger

	// OnOutcome, if set, observes every outcome in catalog order.
	OnOutcome func(executor.TestOutcome)
}

// Run builds the catalog and executes it. A CatalogError is returned before
// anything is written to Out. Test failures are reported in the returned
// ExecutionReport, never as an error.
func Run(ctx context.Context, opts Options) (aggregate.ExecutionReport, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Styles == nil {
		opts.Styles = ui.NewStyles(opts.Out, opts.Progress.NoColor)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	cases, err := catalog.Build(opts.TestDir, catalog.Options{
		Platform:     opts.Platform,
		CrossCompile: catalog.MarkerPresent(opts.CrossMarker),
	})
	if err != nil {
		return aggregate.ExecutionReport{}, err
	}

	summary := catalog.Summarize(cases)
	opts.Logger.Debug("catalog built", "dir", opts.TestDir, "total", len(cases),
		"runnable", summary.Runnable, "non_executable", summary.NonExecutable,
		"platform_excluded", summary.PlatformExcluded)

	exec := executor.New(executor.Config{
		RuntimeRoot: opts.RuntimeRoot,
		Conventions: opts.Conventions,
		Spawner:     opts.Spawner,
		Clock:       opts.Clock,
		Logger:      opts.Logger,
	})
	agg := aggregate.New(len(cases))
	reporter := progress.New(opts.Out, opts.Progress)

	for i, tc := range cases {
		reporter.Update(i, len(cases), tc.Name)
		outcome := exec.Run(ctx, tc)
		agg.Add(outcome)
		if opts.OnOutcome != nil {
			opts.OnOutcome(outcome)
		}
	}

	report := agg.Report()
	reporter.Finish(report.Passed, report.Total)
	if line := opts.Styles.Failures(report.Failed); line != "" {
		fmt.Fprintln(opts.Out, line)
	}
	return report, nil
}

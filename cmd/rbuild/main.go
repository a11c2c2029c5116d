// rbuild configures, builds and tests the native project in the current
// directory by driving cmake, wayland-scanner, cloc and the compiled test
// binaries.
//
// Usage:
//
//	rbuild --compile --run-tests
//	rbuild --configure --backend make
//	rbuild --build-rnative
//	rbuild --get-deps
//
// Requested operations always run in the same order: dependency info, line
// count, binding generation, configure, compile, tests. The exit code is the
// worst exit code of every step that ran.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/log"

	"github.com/dkoosis/rbuild/internal/catalog"
	"github.com/dkoosis/rbuild/internal/config"
	"github.com/dkoosis/rbuild/internal/deps"
	"github.com/dkoosis/rbuild/internal/dispatch"
	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/loc"
	"github.com/dkoosis/rbuild/internal/logging"
	"github.com/dkoosis/rbuild/internal/metrics"
	"github.com/dkoosis/rbuild/internal/platform"
	"github.com/dkoosis/rbuild/internal/progress"
	"github.com/dkoosis/rbuild/internal/report"
	"github.com/dkoosis/rbuild/internal/sequencer"
	"github.com/dkoosis/rbuild/internal/step"
	"github.com/dkoosis/rbuild/internal/telemetry"
	"github.com/dkoosis/rbuild/internal/testrun"
	"github.com/dkoosis/rbuild/internal/ui"
	"github.com/dkoosis/rbuild/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliOptions struct {
	req         dispatch.Request
	flags       config.CliFlags
	showVersion bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *cliOptions) {
	o := &cliOptions{}
	fs := flag.NewFlagSet("rbuild", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&o.req.Deps, "get-deps", false, "Show the dependencies needed to build")
	fs.BoolVar(&o.req.LOC, "print-loc", false, "Count lines of code with cloc")
	fs.BoolVar(&o.req.GenerateBindings, "build-rnative", false, "Generate the native protocol bindings")
	fs.BoolVar(&o.req.GenerateBindings, "generate-bindings", false, "Alias for --build-rnative")
	fs.BoolVar(&o.req.Configure, "configure", false, "Generate the build directory with cmake")
	fs.BoolVar(&o.req.Compile, "compile", false, "Build the project (configures first if needed)")
	fs.BoolVar(&o.req.RunTests, "run-tests", false, "Run every test binary in the test directory")

	fs.StringVar(&o.flags.Backend, "backend", "", "Build backend: ninja or make (default ninja)")
	fs.StringVar(&o.flags.TestDir, "test-dir", "", "Test binary directory (default bin/tests)")
	fs.StringVar(&o.flags.RuntimeRoot, "runtime-root", "", "Working directory for tests (default bin)")
	fs.StringVar(&o.flags.BuildDir, "build-dir", "", "Build directory (default build)")
	fs.StringVar(&o.flags.ReportJSON, "report-json", "", "Write a JSON run report to this path")
	fs.StringVar(&o.flags.MetricsFile, "metrics-file", "", "Write a Prometheus textfile to this path")
	fs.BoolVar(&o.flags.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&o.flags.Debug, "debug", false, "Enable debug logging on stderr")
	fs.BoolVar(&o.flags.Telemetry, "telemetry", false, "Record run history in a local SQLite database")
	fs.BoolVar(&o.showVersion, "version", false, "Print version information and exit")
	return fs, o
}

func run(args []string, stdout, stderr io.Writer) int {
	fs, opts := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return dispatch.ExitOK
		}
		return dispatch.ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "rbuild: unexpected argument %q\n", fs.Arg(0))
		return dispatch.ExitUsage
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "no-color":
			opts.flags.NoColorSet = true
		case "debug":
			opts.flags.DebugSet = true
		case "telemetry":
			opts.flags.TelemetrySet = true
		}
	})

	if opts.showVersion {
		fmt.Fprintln(stdout, version.String())
		return dispatch.ExitOK
	}

	fileCfg, cfgPath, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(stderr, "rbuild: %v\n", err)
		return dispatch.ExitFailure
	}
	cfg, err := config.Resolve(opts.flags, fileCfg)
	if err != nil {
		fmt.Fprintf(stderr, "rbuild: %v\n", err)
		return dispatch.ExitUsage
	}
	opts.req.Backend = cfg.Backend

	logger := logging.New(stderr, cfg.Debug)
	logger.Debug("config resolved", "file", cfgPath, "test_dir", cfg.TestDir,
		"runtime_root", cfg.RuntimeRoot, "build_dir", cfg.BuildDir, "backend", cfg.Backend,
		"backend_source", cfg.Sources["backend"])

	if len(opts.req.Steps()) == 0 {
		printUsage(stdout, fs)
		return dispatch.ExitUsage
	}

	app := newApp(cfg, stdout, stderr, logger)
	return app.execute(context.Background(), opts.req)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: rbuild [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Operations run in a fixed order: --get-deps, --print-loc, --build-rnative,")
	fmt.Fprintln(w, "--configure, --compile, --run-tests. At least one is required.")
	fmt.Fprintln(w)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// app holds the collaborators for one invocation.
type app struct {
	cfg      *config.Resolved
	stdout   io.Writer
	stderr   io.Writer
	styles   *ui.Styles
	logger   *log.Logger
	clock    clock.Clock
	platform platform.Platform
	run      *report.Run
}

func newApp(cfg *config.Resolved, stdout, stderr io.Writer, logger *log.Logger) *app {
	clk := clock.NewClock()
	p := platform.Current()
	return &app{
		cfg:      cfg,
		stdout:   stdout,
		stderr:   stderr,
		styles:   ui.NewStyles(stdout, cfg.NoColor),
		logger:   logger,
		clock:    clk,
		platform: p,
		run:      report.NewRun(version.Version, p.String(), clk.Now()),
	}
}

func (a *app) execute(ctx context.Context, req dispatch.Request) int {
	seq := sequencer.New(sequencer.Config{
		BuildDir: a.cfg.BuildDir,
		Backend:  req.Backend,
		Platform: a.platform,
		Bindings: a.cfg.Bindings,
		Out:      a.stdout,
		Styles:   a.styles,
		Clock:    a.clock,
		Logger:   a.logger,
	}, sequencer.ExecDriver{Stdout: a.stdout, Stderr: a.stderr})

	runners := map[step.Name]dispatch.Runner{
		step.Deps:             dispatch.Single(a.printDeps),
		step.LOC:              dispatch.Single(a.printLOC),
		step.GenerateBindings: dispatch.Single(seq.GenerateBindings),
		step.Configure:        dispatch.Single(seq.Configure),
		step.Compile:          seq.Compile,
		step.RunTests:         dispatch.Single(a.runTests),
	}

	outcome, err := dispatch.Run(ctx, req, dispatch.Env{
		Runners: runners,
		Out:     a.stdout,
		Styles:  a.styles,
		Clock:   a.clock,
		Logger:  a.logger,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "rbuild: %v\n", err)
		return outcome.ExitCode
	}

	if len(outcome.Results) > 1 {
		for _, r := range outcome.Results {
			fmt.Fprintln(a.stdout, a.styles.StepStatus(string(r.Name), r.ExitCode))
		}
	}

	a.run.Steps = outcome.Results
	a.run.ExitCode = outcome.ExitCode
	a.run.Duration = a.clock.Since(a.run.StartedAt)
	return max(outcome.ExitCode, a.publish())
}

func (a *app) printDeps(context.Context) step.Result {
	if err := deps.Print(a.stdout, "."); err != nil {
		a.logger.Error("reading CMakeLists.txt", "err", err)
		return step.Result{Name: step.Deps, ExitCode: dispatch.ExitFailure}
	}
	return step.Result{Name: step.Deps}
}

func (a *app) printLOC(ctx context.Context) step.Result {
	code := loc.Run(ctx, a.stdout, loc.Options{Stderr: a.stderr})
	return step.Result{Name: step.LOC, ExitCode: code}
}

func (a *app) runTests(ctx context.Context) step.Result {
	rep, err := testrun.Run(ctx, testrun.Options{
		TestDir:     a.cfg.TestDir,
		RuntimeRoot: a.cfg.RuntimeRoot,
		Platform:    a.platform,
		CrossMarker: a.cfg.CrossMarker,
		Conventions: a.cfg.Conventions,
		Out:         a.stdout,
		Progress:    progress.Detect(a.stdout, a.cfg.NoColor),
		Styles:      a.styles,
		Clock:       a.clock,
		Logger:      a.logger,
		OnOutcome:   func(o executor.TestOutcome) { a.run.AddOutcome(o) },
	})
	if err != nil {
		var catErr *catalog.CatalogError
		if errors.As(err, &catErr) {
			fmt.Fprintln(a.stderr, a.styles.Error.Render("rbuild: "+err.Error()))
		} else {
			a.logger.Error("test run failed", "err", err)
		}
		return step.Result{Name: step.RunTests, ExitCode: dispatch.ExitFailure}
	}
	a.run.Tests = &rep
	return step.Result{Name: step.RunTests, ExitCode: rep.ExitCode()}
}

// publish writes the optional run artifacts. A failed report or metrics
// write fails the run; telemetry problems are only logged.
func (a *app) publish() int {
	code := dispatch.ExitOK
	if a.cfg.ReportJSON != "" {
		if err := report.Write(a.cfg.ReportJSON, a.run); err != nil {
			a.logger.Error("writing report", "path", a.cfg.ReportJSON, "err", err)
			code = dispatch.ExitFailure
		}
	}
	if a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.run); err != nil {
			a.logger.Error("writing metrics", "path", a.cfg.MetricsFile, "err", err)
			code = dispatch.ExitFailure
		}
	}
	if a.cfg.Telemetry {
		a.recordTelemetry()
	}
	return code
}

func (a *app) recordTelemetry() {
	path, err := telemetry.DefaultPath()
	if err != nil {
		a.logger.Warn("telemetry unavailable", "err", err)
		return
	}
	tel, err := telemetry.Open(true, path)
	if err != nil {
		a.logger.Warn("telemetry unavailable", "path", path, "err", err)
		return
	}
	defer tel.Close()

	if err := tel.Record(a.run); err != nil {
		a.logger.Warn("recording telemetry", "err", err)
		return
	}
	if a.run.Tests == nil {
		return
	}
	for _, name := range a.run.Tests.Failed {
		if rate, n, err := tel.FailureRate(name); err == nil && n > 1 {
			a.logger.Debug("failure history", "test", name, "rate", fmt.Sprintf("%.0f%%", rate*100), "runs", n)
		}
	}
}

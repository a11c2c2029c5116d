// Package sequencer runs the configure, generate-bindings and compile steps
// and enforces their ordering: compiling without an existing build directory
// first configures and generates bindings.
package sequencer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/dkoosis/rbuild/internal/platform"
	"github.com/dkoosis/rbuild/internal/proc"
	"github.com/dkoosis/rbuild/internal/step"
	"github.com/dkoosis/rbuild/internal/ui"
)

const (
	cmakeTool = "cmake"

	// NinjaMarker is written by the Ninja generator into the build directory.
	NinjaMarker = "build.ninja"

	// NinjaExtraJobs is added to the CPU count when the Ninja backend is
	// detected. It is a tuning constant for link-heavy builds.
	NinjaExtraJobs = 2
)

// Bindings describes the protocol code generation inputs and outputs.
type Bindings struct {
	Scanner  string `yaml:"scanner"`
	Protocol string `yaml:"protocol"`
	Header   string `yaml:"header"`
	Source   string `yaml:"source"`
}

// DefaultBindings generates the xdg-toplevel-icon-v1 client glue.
func DefaultBindings() Bindings {
	return Bindings{
		Scanner:  "wayland-scanner",
		Protocol: "/usr/share/wayland-protocols/staging/xdg-toplevel-icon/xdg-toplevel-icon-v1.xml",
		Header:   "src/include/rnative/xdg-toplevel-icon-v1-client-protocol.h",
		Source:   "src/rnative/xdg-toplevel-icon-v1-client-protocol.c",
	}
}

// protocolName returns the protocol's base name without extension.
func (b Bindings) protocolName() string {
	base := filepath.Base(b.Protocol)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Config configures a Sequencer.
type Config struct {
	// WorkDir is the project root every tool runs in. Empty means the current directory.
	WorkDir  string
	BuildDir string
	Backend  Backend
	Platform platform.Platform
	Bindings Bindings

	Out    io.Writer
	Styles *ui.Styles
	Clock  clock.Clock
	Logger *log.Logger

	// CPUCount overrides logical CPU detection.
	CPUCount func() (int, error)
}

// Sequencer runs build steps through a Driver. It is not safe for concurrent use.
type Sequencer struct {
	cfg    Config
	driver Driver
}

// New creates a Sequencer.
func New(cfg Config, driver Driver) *Sequencer {
	if cfg.BuildDir == "" {
		cfg.BuildDir = "build"
	}
	if cfg.Bindings == (Bindings{}) {
		cfg.Bindings = DefaultBindings()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Styles == nil {
		cfg.Styles = ui.NewStyles(cfg.Out, true)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.CPUCount == nil {
		cfg.CPUCount = logicalCPUs
	}
	return &Sequencer{cfg: cfg, driver: driver}
}

func logicalCPUs() (int, error) {
	return cpu.Counts(true)
}

// buildPath resolves the build directory against WorkDir.
func (s *Sequencer) buildPath(elem ...string) string {
	dir := s.cfg.BuildDir
	if !filepath.IsAbs(dir) && s.cfg.WorkDir != "" {
		dir = filepath.Join(s.cfg.WorkDir, dir)
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

// Configured reports whether the build directory exists.
func (s *Sequencer) Configured() bool {
	info, err := os.Stat(s.buildPath())
	return err == nil && info.IsDir()
}

// Jobs returns the worker count passed to the build driver: the logical CPU
// count, plus NinjaExtraJobs when the build directory holds a Ninja build file.
func (s *Sequencer) Jobs() int {
	n, err := s.cfg.CPUCount()
	if err != nil || n < 1 {
		s.cfg.Logger.Debug("cpu count unavailable, using runtime", "err", err)
		n = runtime.NumCPU()
	}
	if _, err := os.Stat(s.buildPath(NinjaMarker)); err == nil {
		n += NinjaExtraJobs
	}
	return n
}

// Configure generates the build directory. The exit code is the generator's.
func (s *Sequencer) Configure(ctx context.Context) step.Result {
	args := []string{
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
		"-G", s.cfg.Backend.Generator(),
		"-B", s.cfg.BuildDir,
	}
	return s.timed(step.Configure, func() int {
		return s.runTool(ctx, cmakeTool, args)
	})
}

// GenerateBindings emits the protocol header and source on Linux. Other known
// platforms need no generated code and succeed immediately.
func (s *Sequencer) GenerateBindings(ctx context.Context) step.Result {
	return s.timed(step.GenerateBindings, func() int {
		out := s.cfg.Out
		fmt.Fprintf(out, "checking operating system... %s\n", s.cfg.Platform)

		switch s.cfg.Platform {
		case platform.Linux:
		case platform.MacOS, platform.Windows:
			fmt.Fprintln(out, "no work to do.")
			return 0
		default:
			fmt.Fprintln(out, "unknown operating system.")
			return 1
		}

		b := s.cfg.Bindings
		fmt.Fprintf(out, "generate source and header for: %s\n", b.protocolName())
		header := s.runTool(ctx, b.Scanner, []string{"client-header", b.Protocol, b.Header})
		source := s.runTool(ctx, b.Scanner, []string{"private-code", b.Protocol, b.Source})
		code := max(header, source)
		if code == 0 {
			fmt.Fprintln(out, "complete.")
		}
		return code
	})
}

// Compile builds the project. When the build directory is missing it first
// runs Configure and GenerateBindings, stopping at the first failure. The
// returned results are in execution order and always end with Compile.
func (s *Sequencer) Compile(ctx context.Context) []step.Result {
	var results []step.Result

	if !s.Configured() {
		s.cfg.Logger.Debug("build directory missing, configuring first", "dir", s.buildPath())
		for _, prereq := range []func(context.Context) step.Result{s.Configure, s.GenerateBindings} {
			r := prereq(ctx)
			r.Implied = true
			results = append(results, r)
			if !r.OK() {
				return append(results, step.Result{Name: step.Compile, ExitCode: r.ExitCode, Blocked: true})
			}
		}
	}

	jobs := s.Jobs()
	args := []string{"--build", s.cfg.BuildDir, "-j", strconv.Itoa(jobs)}
	return append(results, s.timed(step.Compile, func() int {
		return s.runTool(ctx, cmakeTool, args)
	}))
}

func (s *Sequencer) timed(name step.Name, fn func() int) step.Result {
	start := s.cfg.Clock.Now()
	code := fn()
	return step.Result{Name: name, ExitCode: code, Duration: s.cfg.Clock.Since(start)}
}

// runTool echoes and runs one tool invocation, returning its exit code. A
// tool missing from PATH is reported by name and yields 1.
func (s *Sequencer) runTool(ctx context.Context, tool string, args []string) int {
	if _, err := s.driver.LookPath(tool); err != nil {
		fmt.Fprintln(s.cfg.Out, s.cfg.Styles.Error.Render(err.Error()))
		return 1
	}
	spec := proc.Spec{Name: tool, Args: args, Dir: s.cfg.WorkDir}
	fmt.Fprintln(s.cfg.Out, s.cfg.Styles.Command(spec.CommandLine()))

	res := s.driver.Run(ctx, spec)
	if res.Err != nil {
		s.cfg.Logger.Debug("tool failed", "tool", tool, "code", res.ExitCode, "err", res.Err)
	}
	if res.Err != nil && res.ExitCode == 0 {
		return 1
	}
	return res.ExitCode
}

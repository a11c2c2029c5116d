package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/sequencer"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceCLI     Source = "cli"
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// CliFlags holds command-line values. Empty strings mean "not given"; the
// *Set fields track explicitly given booleans.
type CliFlags struct {
	TestDir     string
	RuntimeRoot string
	BuildDir    string
	Backend     string
	ReportJSON  string
	MetricsFile string

	NoColor   bool
	Debug     bool
	Telemetry bool

	NoColorSet   bool
	DebugSet     bool
	TelemetrySet bool
}

// Resolved is the final configuration after applying every source.
type Resolved struct {
	TestDir     string
	RuntimeRoot string
	BuildDir    string
	Backend     sequencer.Backend
	CrossMarker string
	Conventions executor.Conventions
	Bindings    sequencer.Bindings
	ReportJSON  string
	MetricsFile string
	Telemetry   bool
	NoColor     bool
	Debug       bool

	// Sources records the origin of each path and backend setting, for --debug.
	Sources map[string]Source
}

// Resolve applies CLI > environment > file > defaults. file may be nil.
func Resolve(flags CliFlags, file *AppConfig) (*Resolved, error) {
	if file == nil {
		file = &AppConfig{}
	}
	r := &Resolved{Sources: make(map[string]Source)}

	r.TestDir = r.pick("test_dir", flags.TestDir, "RBUILD_TEST_DIR", file.TestDir, DefaultTestDir)
	r.RuntimeRoot = r.pick("runtime_root", flags.RuntimeRoot, "RBUILD_RUNTIME_ROOT", file.RuntimeRoot, DefaultRuntimeRoot)
	r.BuildDir = r.pick("build_dir", flags.BuildDir, "RBUILD_BUILD_DIR", file.BuildDir, DefaultBuildDir)
	backend := r.pick("backend", flags.Backend, "RBUILD_BACKEND", file.Backend, DefaultBackend)
	r.CrossMarker = r.pick("cross_marker", "", "", file.CrossMarker, DefaultCrossMarker)
	r.ReportJSON = r.pick("report_json", flags.ReportJSON, "", file.ReportJSON, "")
	r.MetricsFile = r.pick("metrics_file", flags.MetricsFile, "", file.MetricsFile, "")

	var err error
	if r.Backend, err = sequencer.ParseBackend(backend); err != nil {
		return nil, fmt.Errorf("backend from %s: %w", r.Sources["backend"], err)
	}

	r.Conventions = executor.DefaultConventions()
	if len(file.Invocation) > 0 {
		custom, err := executor.ParseConventions(file.Invocation)
		if err != nil {
			return nil, err
		}
		for name, conv := range custom {
			r.Conventions[name] = conv
		}
	}

	r.Bindings = sequencer.DefaultBindings()
	mergeBindings(&r.Bindings, file.Bindings)

	r.NoColor = file.NoColor
	if flags.NoColorSet {
		r.NoColor = flags.NoColor
	} else if noColor, ok := EnvNoColor(); ok {
		r.NoColor = noColor
	}
	// CI implies no color unless the CLI said otherwise.
	if ci := getEnvBool("CI"); ci != nil && *ci && !flags.NoColorSet {
		r.NoColor = true
	}

	r.Debug = file.Debug
	if flags.DebugSet {
		r.Debug = flags.Debug
	} else if os.Getenv("RBUILD_DEBUG") != "" {
		r.Debug = true
	}

	r.Telemetry = file.Telemetry
	if flags.TelemetrySet {
		r.Telemetry = flags.Telemetry
	}

	return r, nil
}

func (r *Resolved) pick(key, cli, envKey, file, def string) string {
	switch {
	case cli != "":
		r.Sources[key] = SourceCLI
		return cli
	case envKey != "" && os.Getenv(envKey) != "":
		r.Sources[key] = SourceEnv
		return os.Getenv(envKey)
	case file != "":
		r.Sources[key] = SourceFile
		return file
	default:
		r.Sources[key] = SourceDefault
		return def
	}
}

func mergeBindings(dst *sequencer.Bindings, src sequencer.Bindings) {
	if src.Scanner != "" {
		dst.Scanner = src.Scanner
	}
	if src.Protocol != "" {
		dst.Protocol = src.Protocol
	}
	if src.Header != "" {
		dst.Header = src.Header
	}
	if src.Source != "" {
		dst.Source = src.Source
	}
}

// EnvNoColor reads the color preference from the environment. RBUILD_NO_COLOR
// is parsed as a boolean and wins; otherwise NO_COLOR set to any non-empty
// value disables color (https://no-color.org). ok is false when neither applies.
func EnvNoColor() (noColor, ok bool) {
	if env := getEnvBool("RBUILD_NO_COLOR"); env != nil {
		return *env, true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true, true
	}
	return false, false
}

func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

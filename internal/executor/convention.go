package executor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dkoosis/rbuild/internal/catalog"
)

// UnitTestArgs are appended to every test invocation. They ask the binary to
// run its embedded self-tests and exit instead of opening a window.
var UnitTestArgs = []string{"--", "--unit-test"}

// Convention selects how a test binary is located relative to the runtime root.
type Convention int

const (
	// Direct launches the binary by absolute path.
	Direct Convention = iota
	// RuntimeRelative launches the binary by a path relative to the runtime
	// root, e.g. tests/plugin_test. Used by tests that load plugins, sounds or
	// textures the same way the shipped program does.
	RuntimeRelative
)

func (c Convention) String() string {
	switch c {
	case Direct:
		return "direct"
	case RuntimeRelative:
		return "runtime-relative"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// ParseConvention parses the config spelling of a convention.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "absolute":
		return Direct, nil
	case "runtime-relative", "runtime_relative", "relative":
		return RuntimeRelative, nil
	default:
		return Direct, fmt.Errorf("unknown invocation convention %q (want direct or runtime-relative)", s)
	}
}

// Conventions is the named-exception table keyed by test display name.
// Tests absent from the table use Direct.
type Conventions map[string]Convention

// DefaultConventions lists the tests that need a graphics, audio or plugin
// runtime context.
func DefaultConventions() Conventions {
	return Conventions{
		"plugin_test":        RuntimeRelative,
		"sound_engine_test":  RuntimeRelative,
		"texture_atlas_test": RuntimeRelative,
	}
}

// ParseConventions converts a config map of name to spelling.
func ParseConventions(raw map[string]string) (Conventions, error) {
	out := make(Conventions, len(raw))
	for name, spelling := range raw {
		c, err := ParseConvention(spelling)
		if err != nil {
			return nil, fmt.Errorf("invocation %s: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}

// Lookup returns the convention for a test name.
func (c Conventions) Lookup(name string) Convention {
	if conv, ok := c[name]; ok {
		return conv
	}
	return Direct
}

// Invocation is the program, arguments and working directory for one test.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
}

// Invocation builds the launch parameters for tc. runtimeRoot should be
// absolute; a relative Program is resolved by the OS against Dir.
func (c Conventions) Invocation(tc catalog.TestCase, runtimeRoot string) Invocation {
	inv := Invocation{
		Program: tc.Path,
		Args:    append([]string(nil), UnitTestArgs...),
		Dir:     runtimeRoot,
	}
	if c.Lookup(tc.Name) == RuntimeRelative {
		inv.Program = relativeProgram(tc.Path, runtimeRoot)
	}
	return inv
}

func relativeProgram(path, runtimeRoot string) string {
	base := filepath.Base(path)
	rel, err := filepath.Rel(runtimeRoot, filepath.Dir(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = "tests"
	}
	prog := filepath.Join(rel, base)
	if !strings.ContainsRune(prog, filepath.Separator) {
		prog = "." + string(filepath.Separator) + prog
	}
	return prog
}

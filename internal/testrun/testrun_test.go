package testrun

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/rbuild/internal/aggregate"
	"github.com/dkoosis/rbuild/internal/catalog"
	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/platform"
	"github.com/dkoosis/rbuild/internal/progress"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
}

func layout(t *testing.T) (root, tests string) {
	t.Helper()
	root = filepath.Join(t.TempDir(), "bin")
	tests = filepath.Join(root, "tests")
	require.NoError(t, os.MkdirAll(tests, 0o755))
	return root, tests
}

func script(t *testing.T, dir, name, body string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), mode))
}

func options(root, tests string, out *bytes.Buffer) Options {
	return Options{
		TestDir:     tests,
		RuntimeRoot: root,
		Platform:    platform.Linux,
		Out:         out,
		Progress:    progress.Options{NoColor: true},
	}
}

func TestRun_ReportsOneFailure_When_PassFailAndNonExecutable(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root, tests := layout(t)
	script(t, tests, "a", "exit 0", 0o755)
	script(t, tests, "b", "exit 1", 0o755)
	script(t, tests, "c", "exit 0", 0o644)

	var out bytes.Buffer
	var seen []executor.TestOutcome
	opts := options(root, tests, &out)
	opts.OnOutcome = func(o executor.TestOutcome) { seen = append(seen, o) }

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, aggregate.ExecutionReport{Total: 3, Completed: 3, Passed: 1, Skipped: 1, Failed: []string{"b"}}, report)
	assert.Equal(t, 1, report.ExitCode())
	require.Len(t, seen, 3)
	assert.Equal(t, executor.Skipped, seen[2].Status)

	text := out.String()
	assert.Contains(t, text, "passed 1/3")
	assert.Contains(t, text, "failed: b")
	assert.Less(t, strings.Index(text, "passed 1/3"), strings.Index(text, "failed: b"))
}

func TestRun_SucceedsVacuously_When_DirectoryEmpty(t *testing.T) {
	t.Parallel()

	root, tests := layout(t)
	var out bytes.Buffer

	report, err := Run(context.Background(), options(root, tests, &out))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 0, report.Passed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 0, report.ExitCode())
	assert.Contains(t, out.String(), "passed 0/0")
}

func TestRun_ReturnsCatalogErrorWithoutOutput_When_DirectoryMissing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var out bytes.Buffer

	_, err := Run(context.Background(), options(root, filepath.Join(root, "missing"), &out))

	var catErr *catalog.CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Empty(t, out.String())
}

func TestRun_ShowsMonotonicProgress_When_SeveralTests(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root, tests := layout(t)
	for _, name := range []string{"t1", "t2", "t3", "t4"} {
		script(t, tests, name, "exit 0", 0o755)
	}

	var out bytes.Buffer
	report, err := Run(context.Background(), options(root, tests, &out))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Passed)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	prev := -1
	for _, line := range lines {
		filled := strings.Count(line, "#")
		assert.GreaterOrEqual(t, filled, prev, line)
		prev = filled
	}
	assert.Equal(t, "[####################] 100% passed 4/4", lines[4])
	assert.True(t, strings.HasSuffix(lines[1], "(1/4) t2"), lines[1])
}

func TestRun_SkipsNonNativeBinaries_When_CrossMarkerPresent(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root, tests := layout(t)
	script(t, tests, "native_test", "exit 1", 0o755)
	script(t, tests, "win_test.exe", "exit 0", 0o755)
	marker := filepath.Join(t.TempDir(), ".cross-compile")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	var out bytes.Buffer
	opts := options(root, tests, &out)
	opts.CrossMarker = marker

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Passed)
	assert.Empty(t, report.Failed)
}

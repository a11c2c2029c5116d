package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/rbuild/internal/catalog"
	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/report"
	"github.com/dkoosis/rbuild/internal/step"
)

func runWith(status executor.Status) *report.Run {
	run := report.NewRun("dev", "linux", time.Unix(1700000000, 0))
	run.Steps = []step.Result{{Name: step.RunTests, ExitCode: 0, Duration: time.Second}}
	run.AddOutcome(executor.TestOutcome{Case: catalog.TestCase{Name: "flaky_test"}, Status: status})
	run.AddOutcome(executor.TestOutcome{Case: catalog.TestCase{Name: "data"}, Status: executor.Skipped})
	return run
}

func TestTelemetry_IsNoop_When_Disabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tel, err := Open(false, filepath.Join(dir, "never", "history.db"))
	require.NoError(t, err)
	defer tel.Close()

	assert.False(t, tel.Enabled())
	assert.NoError(t, tel.Record(runWith(executor.Passed)))
	n, err := tel.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoDirExists(t, filepath.Join(dir, "never"))
}

func TestTelemetry_RecordsRunsAndComputesFailureRate_When_Enabled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rbuild", "history.db")
	tel, err := Open(true, path)
	require.NoError(t, err)
	defer tel.Close()

	for _, s := range []executor.Status{executor.Passed, executor.Failed, executor.Failed, executor.Passed} {
		require.NoError(t, tel.Record(runWith(s)))
	}

	n, err := tel.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rate, total, err := tel.FailureRate("flaky_test")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.InDelta(t, 0.5, rate, 1e-9)

	rate, total, err = tel.FailureRate("data")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, rate)
}

func TestTelemetry_PersistsAcrossOpens_When_SamePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	tel, err := Open(true, path)
	require.NoError(t, err)
	require.NoError(t, tel.Record(runWith(executor.Passed)))
	require.NoError(t, tel.Close())

	tel, err = Open(true, path)
	require.NoError(t, err)
	defer tel.Close()

	n, err := tel.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

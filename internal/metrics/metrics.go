// Package metrics exports a finished run as a Prometheus textfile, for
// pickup by a node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkoosis/rbuild/internal/report"
)

const namespace = "rbuild"

// Collect registers the run's gauges on a fresh registry.
func Collect(run *report.Run) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	stepCode := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_exit_code",
		Help:      "Exit code of each executed step.",
	}, []string{"step", "implied"})
	stepDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Wall time of each executed step.",
	}, []string{"step", "implied"})
	exitCode := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "exit_code",
		Help:      "Final process exit code.",
	})

	collectors := []prometheus.Collector{stepCode, stepDuration, exitCode}
	for _, s := range run.Steps {
		implied := strconv.FormatBool(s.Implied)
		stepCode.WithLabelValues(string(s.Name), implied).Set(float64(s.ExitCode))
		stepDuration.WithLabelValues(string(s.Name), implied).Set(s.Duration.Seconds())
	}
	exitCode.Set(float64(run.ExitCode))

	if run.Tests != nil {
		tests := map[string]int{
			"total":   run.Tests.Total,
			"passed":  run.Tests.Passed,
			"failed":  len(run.Tests.Failed),
			"skipped": run.Tests.Skipped,
		}
		for name, v := range tests {
			g := prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "tests",
				Name:      name,
				Help:      fmt.Sprintf("Number of %s tests in the last run.", name),
			})
			g.Set(float64(v))
			collectors = append(collectors, g)
		}
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return reg, nil
}

// WriteTextfile writes the run's metrics to path atomically.
func WriteTextfile(path string, run *report.Run) error {
	reg, err := Collect(run)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

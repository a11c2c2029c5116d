// Package report records one rbuild invocation and writes it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dkoosis/rbuild/internal/aggregate"
	"github.com/dkoosis/rbuild/internal/executor"
	"github.com/dkoosis/rbuild/internal/step"
)

// TestResult is the serialized form of one TestOutcome.
type TestResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Run is everything observed during one invocation.
type Run struct {
	ID        string                     `json:"run_id"`
	Version   string                     `json:"version"`
	Platform  string                     `json:"platform"`
	StartedAt time.Time                  `json:"started_at"`
	Duration  time.Duration              `json:"duration_ns"`
	Steps     []step.Result              `json:"steps"`
	Tests     *aggregate.ExecutionReport `json:"tests,omitempty"`
	Outcomes  []TestResult               `json:"outcomes,omitempty"`
	ExitCode  int                        `json:"exit_code"`
}

// NewRun starts a record with a fresh run ID.
func NewRun(version, platform string, startedAt time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Version:   version,
		Platform:  platform,
		StartedAt: startedAt.UTC(),
		Steps:     []step.Result{},
	}
}

// AddOutcome appends one test outcome.
func (r *Run) AddOutcome(o executor.TestOutcome) {
	r.Outcomes = append(r.Outcomes, TestResult{
		Name:       o.Case.Name,
		Status:     o.Status.String(),
		ExitCode:   o.ExitCode,
		SkipReason: o.SkipReason,
		DurationMS: o.Duration.Milliseconds(),
	})
}

// Write stores run as indented JSON at path, creating parent directories.
func Write(path string, run *Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &run, nil
}

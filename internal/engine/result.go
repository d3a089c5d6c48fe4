package engine

import (
	"fmt"
	"strings"
)

// TaskState tracks a task through the per-task state machine:
// Pending → Disabled | Skipped (dry-run) | Executing → Succeeded | Failed.
type TaskState string

const (
	StatePending   TaskState = "pending"
	StateDisabled  TaskState = "disabled"
	StateSkipped   TaskState = "skipped"
	StateExecuting TaskState = "executing"
	StateSucceeded TaskState = "succeeded"
	StateFailed    TaskState = "failed"
)

// TaskResult records the terminal state of one task.
type TaskResult struct {
	ID       string
	Name     string
	State    TaskState
	Required bool
	Err      error
}

// RunResult summarizes a completed run.
type RunResult struct {
	Results   []TaskResult
	Completed int
	DryRun    bool
}

// RequiredFailures returns the failed tasks whose required flag resolved
// true. Only these escalate the run's exit status.
func (r *RunResult) RequiredFailures() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.State == StateFailed && res.Required {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err returns a run-level error when any required task failed, naming every
// failed task.
func (r *RunResult) Err() error {
	failed := r.RequiredFailures()
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.displayName()
	}
	return fmt.Errorf("%d required task(s) failed: %s", len(failed), strings.Join(names, ", "))
}

// Summary renders the human-readable run report.
func (r *RunResult) Summary() string {
	executable := 0
	for _, res := range r.Results {
		if res.State != StateDisabled {
			executable++
		}
	}

	var sb strings.Builder
	if r.DryRun {
		fmt.Fprintf(&sb, "Dry run: %d task(s) would execute.\n", executable)
	} else {
		fmt.Fprintf(&sb, "Completed %d of %d task(s).\n", r.Completed, executable)
	}
	for _, res := range r.Results {
		switch res.State {
		case StateFailed:
			suffix := "non-required, continued"
			if res.Required {
				suffix = "required"
			}
			fmt.Fprintf(&sb, "  ✗ %s (%s): %v\n", res.displayName(), suffix, res.Err)
		case StateSucceeded:
			fmt.Fprintf(&sb, "  ✓ %s\n", res.displayName())
		case StateSkipped:
			fmt.Fprintf(&sb, "  - %s (dry-run)\n", res.displayName())
		}
	}
	return sb.String()
}

func (t TaskResult) displayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgex-labs/forgex/internal/depgraph"
	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

// Engine orchestrates validation, filtering, ordering, and execution of a
// merged task list. It owns the resolved context for the duration of a run.
type Engine struct {
	registry *plugin.Registry
	resolver *resolve.Resolver
	log      logger.Logger
}

// New returns an Engine dispatching to the given registry and resolving
// values through the given resolver.
func New(registry *plugin.Registry, resolver *resolve.Resolver) *Engine {
	return &Engine{
		registry: registry,
		resolver: resolver,
		log:      logger.Default(),
	}
}

// ExecuteOptions carries per-run execution flags.
type ExecuteOptions struct {
	DryRun bool
}

// ValidateTasks checks every task structurally (unknown type, bad definition
// per the owning plugin, dangling dependency refs) and collects all problems
// before failing, so one run surfaces every error at once.
func (e *Engine) ValidateTasks(tasks []document.TaskDefinition) error {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	var problems []string
	for _, t := range tasks {
		if t.Type == "" {
			problems = append(problems, fmt.Sprintf("task %q: missing type", t.ID))
			continue
		}
		if !e.registry.HandlesTaskType(t.Type) {
			problems = append(problems, fmt.Sprintf("task %q: unknown type %q", t.ID, t.Type))
			continue
		}
		for _, issue := range e.registry.ValidateTask(t) {
			problems = append(problems, fmt.Sprintf("task %q: %s", t.ID, issue))
		}
		for _, dep := range t.Dependencies {
			if !ids[dep] {
				problems = append(problems, fmt.Sprintf("task %q: dependency %q does not exist", t.ID, dep))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid task configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// ValidateAndFilter runs ValidateTasks, then evaluates each task's
// enabled-state (strictly, running exec specs) and returns the enabled subset
// plus the Disabled results for reporting. Dependencies pointing at disabled
// tasks are pruned: a disabled dependency counts as satisfied.
func (e *Engine) ValidateAndFilter(ctx context.Context, tasks []document.TaskDefinition, env map[string]any) ([]document.TaskDefinition, []TaskResult, error) {
	if err := e.ValidateTasks(tasks); err != nil {
		return nil, nil, err
	}

	enabled := make([]document.TaskDefinition, 0, len(tasks))
	enabledIDs := make(map[string]bool, len(tasks))
	var disabled []TaskResult
	for _, t := range tasks {
		if !e.resolver.EvaluateEnabledExec(ctx, t.Enabled, env) {
			e.log.Debug("task disabled", "task", t.ID)
			disabled = append(disabled, TaskResult{ID: t.ID, Name: t.Name, State: StateDisabled})
			continue
		}
		enabled = append(enabled, t)
		enabledIDs[t.ID] = true
	}

	// The merged configuration stays untouched after construction, so the
	// pruned list must not share its backing array.
	for i := range enabled {
		kept := make([]string, 0, len(enabled[i].Dependencies))
		for _, dep := range enabled[i].Dependencies {
			if enabledIDs[dep] {
				kept = append(kept, dep)
			}
		}
		enabled[i].Dependencies = kept
	}
	return enabled, disabled, nil
}

// SortTasks orders tasks by their dependency edges.
func (e *Engine) SortTasks(tasks []document.TaskDefinition) ([]document.TaskDefinition, error) {
	return depgraph.Sort(tasks)
}

// ExecuteTasks runs tasks strictly in the given order. A failing task never
// prevents later tasks from executing; it escalates the run's outcome only
// when its required flag resolves true. The afterAll hook always runs.
func (e *Engine) ExecuteTasks(ctx context.Context, tasks []document.TaskDefinition, env map[string]any, opts ExecuteOptions) *RunResult {
	result := &RunResult{DryRun: opts.DryRun}

	e.registry.CallBeforeAll(ctx)
	defer e.registry.CallAfterAll(ctx)

	for _, t := range tasks {
		e.registry.CallBeforeTask(ctx, t)

		if opts.DryRun {
			diff, err := e.registry.TaskDiff(ctx, t, env)
			if err != nil {
				e.log.Warn("diff unavailable", "task", t.ID, "error", err)
			}
			if diff != "" {
				e.log.Info("would execute", "task", t.ID, "diff", diff)
			} else {
				e.log.Info("would execute", "task", t.ID, "type", t.Type)
			}
			result.Results = append(result.Results, TaskResult{ID: t.ID, Name: t.Name, State: StateSkipped})
			e.registry.CallAfterTask(ctx, t)
			continue
		}

		e.log.Info("executing task", "task", t.ID, "type", t.Type)
		err := e.registry.ExecuteTask(ctx, t, env, plugin.ExecuteOptions{})
		if err == nil {
			result.Completed++
			result.Results = append(result.Results, TaskResult{ID: t.ID, Name: t.Name, State: StateSucceeded})
			e.registry.CallAfterTask(ctx, t)
			continue
		}

		required := e.resolver.EvaluateRequiredExec(ctx, t.Required, env)
		result.Results = append(result.Results, TaskResult{
			ID:       t.ID,
			Name:     t.Name,
			State:    StateFailed,
			Required: required,
			Err:      err,
		})
		if required {
			e.log.Error("required task failed", "task", t.ID, "error", err)
			e.registry.CallOnError(ctx, t, err)
		} else {
			e.log.Warn("non-required task failed; continuing", "task", t.ID, "error", err)
		}
	}

	return result
}

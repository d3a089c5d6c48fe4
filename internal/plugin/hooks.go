package plugin

import (
	"context"

	"github.com/forgex-labs/forgex/internal/document"
)

// Hooks is the lifecycle callback set for a run. All fields are optional.
type Hooks struct {
	BeforeAll  func(ctx context.Context) error
	AfterAll   func(ctx context.Context) error
	BeforeTask func(ctx context.Context, task document.TaskDefinition) error
	AfterTask  func(ctx context.Context, task document.TaskDefinition) error
	OnError    func(ctx context.Context, task document.TaskDefinition, taskErr error) error
}

// SetHooks installs the active hook set, replacing any previous one.
// Hooks do not accumulate.
func (r *Registry) SetHooks(h Hooks) {
	r.hooks = h
}

// CallBeforeAll invokes the beforeAll hook if present. Hook failures are
// logged and swallowed; a hook can never abort the run.
func (r *Registry) CallBeforeAll(ctx context.Context) {
	if r.hooks.BeforeAll == nil {
		return
	}
	if err := r.hooks.BeforeAll(ctx); err != nil {
		r.log.Warn("beforeAll hook failed", "error", err)
	}
}

// CallAfterAll invokes the afterAll hook if present.
func (r *Registry) CallAfterAll(ctx context.Context) {
	if r.hooks.AfterAll == nil {
		return
	}
	if err := r.hooks.AfterAll(ctx); err != nil {
		r.log.Warn("afterAll hook failed", "error", err)
	}
}

// CallBeforeTask invokes the beforeTask hook if present.
func (r *Registry) CallBeforeTask(ctx context.Context, task document.TaskDefinition) {
	if r.hooks.BeforeTask == nil {
		return
	}
	if err := r.hooks.BeforeTask(ctx, task); err != nil {
		r.log.Warn("beforeTask hook failed", "task", task.ID, "error", err)
	}
}

// CallAfterTask invokes the afterTask hook if present.
func (r *Registry) CallAfterTask(ctx context.Context, task document.TaskDefinition) {
	if r.hooks.AfterTask == nil {
		return
	}
	if err := r.hooks.AfterTask(ctx, task); err != nil {
		r.log.Warn("afterTask hook failed", "task", task.ID, "error", err)
	}
}

// CallOnError invokes the onError hook if present.
func (r *Registry) CallOnError(ctx context.Context, task document.TaskDefinition, taskErr error) {
	if r.hooks.OnError == nil {
		return
	}
	if err := r.hooks.OnError(ctx, task, taskErr); err != nil {
		r.log.Warn("onError hook failed", "task", task.ID, "error", err)
	}
}

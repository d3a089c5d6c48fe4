// Package plugin maps task types to their handlers and manages lifecycle
// hooks. A Registry is constructed per run and passed by reference, so tests
// and embedders never share registration state.
package plugin

import (
	"context"
	"fmt"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
)

// ExecuteOptions carries per-dispatch flags.
type ExecuteOptions struct {
	DryRun bool
}

// Plugin handles one or more task types. Execute receives the resolved
// context read-only; plugins must never mutate it.
type Plugin interface {
	Name() string
	TaskTypes() []string
	Execute(ctx context.Context, task document.TaskDefinition, env map[string]any, opts ExecuteOptions) error
}

// Validator is an optional plugin capability returning structural problems
// with a task definition. An empty slice means the task is valid.
type Validator interface {
	ValidateTask(task document.TaskDefinition) []string
}

// Differ is an optional plugin capability describing what executing the task
// would change.
type Differ interface {
	TaskDiff(ctx context.Context, task document.TaskDefinition, env map[string]any) (string, error)
}

// RegistrationError reports an invalid plugin registration.
type RegistrationError struct {
	Plugin string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registering plugin %q: %s", e.Plugin, e.Reason)
}

// UnknownTaskTypeError reports a task type no registered plugin handles.
type UnknownTaskTypeError struct {
	Type string
}

func (e *UnknownTaskTypeError) Error() string {
	return fmt.Sprintf("no plugin registered for task type %q", e.Type)
}

// Registry holds the registered plugins and the single active hook set for
// one run.
type Registry struct {
	byName map[string]Plugin
	byType map[string]Plugin
	hooks  Hooks
	log    logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Plugin),
		byType: make(map[string]Plugin),
		log:    logger.Default(),
	}
}

// Register validates and adds a plugin. Names must be unique, task types
// must be non-empty and globally unique across all registered plugins, and
// the plugin must be non-nil.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return &RegistrationError{Reason: "plugin is nil"}
	}
	name := p.Name()
	if name == "" {
		return &RegistrationError{Reason: "plugin name is empty"}
	}
	if _, exists := r.byName[name]; exists {
		return &RegistrationError{Plugin: name, Reason: "a plugin with this name is already registered"}
	}
	types := p.TaskTypes()
	if len(types) == 0 {
		return &RegistrationError{Plugin: name, Reason: "plugin declares no task types"}
	}
	for _, t := range types {
		if t == "" {
			return &RegistrationError{Plugin: name, Reason: "plugin declares an empty task type"}
		}
		if owner, taken := r.byType[t]; taken {
			return &RegistrationError{
				Plugin: name,
				Reason: fmt.Sprintf("task type %q is already handled by plugin %q", t, owner.Name()),
			}
		}
	}

	r.byName[name] = p
	for _, t := range types {
		r.byType[t] = p
	}
	return nil
}

// ForTaskType returns the plugin handling a task type.
func (r *Registry) ForTaskType(taskType string) (Plugin, bool) {
	p, ok := r.byType[taskType]
	return p, ok
}

// HandlesTaskType reports whether any registered plugin handles the type.
func (r *Registry) HandlesTaskType(taskType string) bool {
	_, ok := r.byType[taskType]
	return ok
}

// TaskTypes returns every registered task type.
func (r *Registry) TaskTypes() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	return types
}

// ExecuteTask dispatches a task to its plugin.
func (r *Registry) ExecuteTask(ctx context.Context, task document.TaskDefinition, env map[string]any, opts ExecuteOptions) error {
	p, ok := r.byType[task.Type]
	if !ok {
		return &UnknownTaskTypeError{Type: task.Type}
	}
	return p.Execute(ctx, task, env, opts)
}

// ValidateTask runs the plugin's optional Validator capability. Plugins
// without one validate trivially.
func (r *Registry) ValidateTask(task document.TaskDefinition) []string {
	p, ok := r.byType[task.Type]
	if !ok {
		return []string{(&UnknownTaskTypeError{Type: task.Type}).Error()}
	}
	if v, ok := p.(Validator); ok {
		return v.ValidateTask(task)
	}
	return nil
}

// TaskDiff runs the plugin's optional Differ capability. Plugins without one
// report no diff.
func (r *Registry) TaskDiff(ctx context.Context, task document.TaskDefinition, env map[string]any) (string, error) {
	p, ok := r.byType[task.Type]
	if !ok {
		return "", &UnknownTaskTypeError{Type: task.Type}
	}
	if d, ok := p.(Differ); ok {
		return d.TaskDiff(ctx, task, env)
	}
	return "", nil
}

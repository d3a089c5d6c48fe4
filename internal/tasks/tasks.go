package tasks

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

// RegisterBuiltins adds the built-in plugins to a registry.
func RegisterBuiltins(r *plugin.Registry, resolver *resolve.Resolver) error {
	builtins := []plugin.Plugin{
		&filePlugin{},
		&jsonPlugin{},
		&execPlugin{resolver: resolver},
		&gitPlugin{},
	}
	for _, p := range builtins {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// decodeConfig converts a task's free-form config map into a typed struct.
func decodeConfig[T any](task document.TaskDefinition) (T, error) {
	var cfg T
	data, err := json.Marshal(task.Config)
	if err != nil {
		return cfg, fmt.Errorf("task %q: encoding config: %w", task.ID, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("task %q: invalid config: %w", task.ID, err)
	}
	return cfg, nil
}

// sourcePath resolves a path against the directory of the document that
// defined the task, so assets shipped next to a configuration keep working
// when the engine runs from elsewhere. Absolute paths and tasks from remote
// documents resolve as given.
func sourcePath(task document.TaskDefinition, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if task.SourceURL == "" || document.IsRemoteRef(task.SourceURL) {
		return p
	}
	return filepath.Join(filepath.Dir(task.SourceURL), p)
}

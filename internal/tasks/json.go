package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

const TypeJSONUpdate = "json.update"

// jsonPlugin edits a JSON file in place: each set entry assigns a value at a
// dotted path, creating intermediate objects as needed. A missing file starts
// from an empty object.
type jsonPlugin struct{}

func (p *jsonPlugin) Name() string { return "json" }

func (p *jsonPlugin) TaskTypes() []string { return []string{TypeJSONUpdate} }

type jsonConfig struct {
	Path string         `json:"path"`
	Set  map[string]any `json:"set,omitempty"`
	// Delete removes keys at dotted paths after set entries are applied.
	Delete []string `json:"delete,omitempty"`
}

func (p *jsonPlugin) ValidateTask(task document.TaskDefinition) []string {
	cfg, err := decodeConfig[jsonConfig](task)
	if err != nil {
		return []string{err.Error()}
	}
	var issues []string
	if cfg.Path == "" {
		issues = append(issues, `config requires "path"`)
	}
	if len(cfg.Set) == 0 && len(cfg.Delete) == 0 {
		issues = append(issues, `config requires "set" entries or "delete" paths`)
	}
	return issues
}

func (p *jsonPlugin) TaskDiff(_ context.Context, task document.TaskDefinition, env map[string]any) (string, error) {
	cfg, err := decodeConfig[jsonConfig](task)
	if err != nil {
		return "", err
	}
	keys := make([]string, 0, len(cfg.Set))
	for k := range cfg.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("update %s: set %s", resolve.Interpolate(cfg.Path, env), strings.Join(keys, ", ")), nil
}

func (p *jsonPlugin) Execute(_ context.Context, task document.TaskDefinition, env map[string]any, _ plugin.ExecuteOptions) error {
	cfg, err := decodeConfig[jsonConfig](task)
	if err != nil {
		return err
	}
	target := resolve.Interpolate(cfg.Path, env)

	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		data = []byte("{}")
	} else if err != nil {
		return fmt.Errorf("reading %s: %w", target, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s is not valid JSON", target)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", target, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	// Apply in sorted key order so repeated runs behave identically.
	keys := make([]string, 0, len(cfg.Set))
	for k := range cfg.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := cfg.Set[key]
		if s, ok := value.(string); ok {
			value = resolve.Interpolate(s, env)
		}
		if gjson.GetBytes(data, key).Exists() {
			logger.Debug("overwriting JSON value", "file", target, "path", key)
		}
		if err := setPath(doc, key, value); err != nil {
			return fmt.Errorf("setting %s in %s: %w", key, target, err)
		}
	}
	for _, key := range cfg.Delete {
		deletePath(doc, key)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", target, err)
	}
	if err := os.WriteFile(target, pretty.Pretty(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// setPath assigns value at a dotted path, creating intermediate objects.
// A non-object in the middle of the path is an error, never silently
// replaced.
func setPath(doc map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, exists := current[part]
		if !exists {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%q is not an object", part)
		}
		current = child
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// deletePath removes the key at a dotted path. Missing segments are a no-op.
func deletePath(doc map[string]any, path string) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = child
	}
	delete(current, parts[len(parts)-1])
}

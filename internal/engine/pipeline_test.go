package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

// envPlugin records the environment each task executes with.
type envPlugin struct {
	name string
	envs map[string]map[string]any
}

func (p *envPlugin) Name() string        { return p.name }
func (p *envPlugin) TaskTypes() []string { return []string{"exec"} }

func (p *envPlugin) Execute(_ context.Context, task document.TaskDefinition, env map[string]any, _ plugin.ExecuteOptions) error {
	if p.envs == nil {
		p.envs = make(map[string]map[string]any)
	}
	p.envs[task.ID] = env
	return nil
}

// staticPrompter answers prompts from a fixed map and records which prompt
// ids it was asked for.
type staticPrompter struct {
	answers map[string]any
	asked   []string
}

func (s *staticPrompter) Ask(_ context.Context, prompts []document.PromptDefinition, _ map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	for _, p := range prompts {
		s.asked = append(s.asked, p.ID)
		if v, ok := s.answers[p.ID]; ok {
			out[p.ID] = v
		}
	}
	return out, nil
}

// failingPrompter stands in for a prompt session that cannot produce an
// answer, like a non-interactive run hitting a required prompt without a
// default.
type failingPrompter struct{}

func (failingPrompter) Ask(context.Context, []document.PromptDefinition, map[string]any) (map[string]any, error) {
	return nil, errors.New("prompt \"region\" requires an answer")
}

func newTestPipeline(t *testing.T, p plugin.Plugin) *Pipeline {
	t.Helper()
	loader := document.NewLoader()
	resolver := resolve.New(loader)
	registry := plugin.NewRegistry()
	if err := registry.Register(p); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return NewPipeline(loader, resolver, New(registry, resolver))
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return p
}

func TestCheckEngineVersion(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		running    string
		wantErr    bool
	}{
		{"no constraint", "", "1.2.0", false},
		{"dev build skips gate", ">=2.0.0", "dev", false},
		{"empty running skips gate", ">=2.0.0", "", false},
		{"satisfied", ">=1.0.0", "1.2.0", false},
		{"satisfied with v prefix", ">=1.0.0", "v1.2.0", false},
		{"range satisfied", ">=1.0.0 <2.0.0", "1.9.3", false},
		{"unsatisfied", ">=2.0.0", "1.2.0", true},
		{"bad constraint", "not-a-version", "1.2.0", true},
		{"bad running version", ">=1.0.0", "release-3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEngineVersion(tt.constraint, tt.running)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckEngineVersion(%q, %q) error = %v, wantErr %v", tt.constraint, tt.running, err, tt.wantErr)
			}
		})
	}
}

func TestLoadMerged_SchemaViolationsReportedTogether(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.json", `{"tasks": [{"id": "9bad", "type": "exec"}]}`)
	entry := writeDoc(t, dir, "app.json", `{"extends": "base.json", "tasks": [{"id": "setup"}]}`)

	pipe := newTestPipeline(t, &envPlugin{name: "test"})
	_, err := pipe.LoadMerged(entry)
	if err == nil {
		t.Fatal("expected schema errors, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "base.json") || !strings.Contains(msg, "app.json") {
		t.Errorf("error %q should name both documents", msg)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.json", `{
		"variables": [{"id": "stage", "value": "dev"}],
		"tasks": [{"id": "setup", "type": "exec"}]
	}`)
	entry := writeDoc(t, dir, "app.json", `{
		"extends": "base.json",
		"variables": [{"id": "image", "value": {"type": "interpolate", "value": "app-{{stage}}"}}],
		"tasks": [
			{"id": "deploy", "type": "exec", "dependencies": ["setup"]},
			{"id": "prod-gate", "type": "exec", "enabled": "stage == 'prod'"}
		]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)

	result, err := pipe.Run(context.Background(), RunOptions{Ref: entry, EngineVersion: "dev"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("result.Err = %v", err)
	}

	if _, ran := p.envs["prod-gate"]; ran {
		t.Error("prod-gate executed despite stage == dev")
	}
	env, ok := p.envs["deploy"]
	if !ok {
		t.Fatal("deploy did not execute")
	}
	if env["image"] != "app-dev" {
		t.Errorf("image = %v, want %q", env["image"], "app-dev")
	}
	if result.Completed != 2 {
		t.Errorf("Completed = %d, want 2", result.Completed)
	}
}

func TestRun_OverridesWinOverVariablesAndPrompts(t *testing.T) {
	dir := t.TempDir()
	entry := writeDoc(t, dir, "app.json", `{
		"prompts": [{"id": "region", "type": "input", "message": "Region?"}],
		"variables": [{"id": "stage", "value": "dev"}],
		"tasks": [{"id": "deploy", "type": "exec"}]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)

	result, err := pipe.Run(context.Background(), RunOptions{
		Ref:       entry,
		Overrides: map[string]string{"stage": "prod", "region": "eu-west-1"},
		Prompter:  &staticPrompter{answers: map[string]any{"region": "us-east-1"}},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("result.Err = %v", err)
	}

	env := p.envs["deploy"]
	if env["stage"] != "prod" {
		t.Errorf("stage = %v, want override %q", env["stage"], "prod")
	}
	if env["region"] != "eu-west-1" {
		t.Errorf("region = %v, want override %q", env["region"], "eu-west-1")
	}
}

func TestRun_PromptFailureAbortsRun(t *testing.T) {
	dir := t.TempDir()
	entry := writeDoc(t, dir, "app.json", `{
		"prompts": [{"id": "region", "type": "input", "required": true}],
		"tasks": [{"id": "greet", "type": "exec"}]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)

	_, err := pipe.Run(context.Background(), RunOptions{Ref: entry, Prompter: failingPrompter{}})
	if err == nil {
		t.Fatal("expected prompt error, got nil")
	}
	if !strings.Contains(err.Error(), "collecting prompt answers") {
		t.Errorf("error = %v, want prompt failure named", err)
	}
	if len(p.envs) != 0 {
		t.Errorf("tasks executed despite prompt failure: %v", p.envs)
	}
}

func TestRun_OverriddenPromptsNotAsked(t *testing.T) {
	dir := t.TempDir()
	entry := writeDoc(t, dir, "app.json", `{
		"prompts": [
			{"id": "region", "type": "input"},
			{"id": "name", "type": "input"}
		],
		"tasks": [{"id": "deploy", "type": "exec"}]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)
	prompter := &staticPrompter{answers: map[string]any{"name": "app"}}

	result, err := pipe.Run(context.Background(), RunOptions{
		Ref:       entry,
		Overrides: map[string]string{"region": "eu-west-1"},
		Prompter:  prompter,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("result.Err = %v", err)
	}

	if !reflect.DeepEqual(prompter.asked, []string{"name"}) {
		t.Errorf("asked prompts = %v, want only %q", prompter.asked, "name")
	}
	env := p.envs["deploy"]
	if env["region"] != "eu-west-1" {
		t.Errorf("region = %v, want override %q", env["region"], "eu-west-1")
	}
	if env["name"] != "app" {
		t.Errorf("name = %v, want answer %q", env["name"], "app")
	}
}

func TestRun_DeferredVariableResolvesAfterPrompts(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "postgres.json", `{
		"enabled": "database == 'postgres'",
		"variables": [{"id": "port", "value": 5432}]
	}`)
	entry := writeDoc(t, dir, "app.json", `{
		"extends": "postgres.json",
		"prompts": [{"id": "database", "type": "select", "choices": ["postgres", "sqlite"]}],
		"tasks": [{"id": "migrate", "type": "exec", "enabled": "port == 5432"}]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)

	result, err := pipe.Run(context.Background(), RunOptions{
		Ref:      entry,
		Prompter: &staticPrompter{answers: map[string]any{"database": "postgres"}},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("result.Err = %v", err)
	}

	env, ok := p.envs["migrate"]
	if !ok {
		t.Fatal("migrate did not execute; deferred variable was not resolved")
	}
	if env["port"] != float64(5432) {
		t.Errorf("port = %v (%T), want 5432", env["port"], env["port"])
	}
}

func TestRun_EngineVersionGate(t *testing.T) {
	dir := t.TempDir()
	entry := writeDoc(t, dir, "app.json", `{
		"engineVersion": ">=9.0.0",
		"tasks": [{"id": "setup", "type": "exec"}]
	}`)

	pipe := newTestPipeline(t, &envPlugin{name: "test"})
	_, err := pipe.Run(context.Background(), RunOptions{Ref: entry, EngineVersion: "1.0.0"})
	if err == nil {
		t.Fatal("expected engine version error, got nil")
	}
	if !strings.Contains(err.Error(), ">=9.0.0") {
		t.Errorf("error = %v, want constraint named", err)
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	entry := writeDoc(t, dir, "app.json", `{
		"tasks": [{"id": "setup", "type": "exec"}]
	}`)

	p := &envPlugin{name: "test"}
	pipe := newTestPipeline(t, p)

	result, err := pipe.Run(context.Background(), RunOptions{Ref: entry, DryRun: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(p.envs) != 0 {
		t.Errorf("tasks executed during dry run: %v", p.envs)
	}
	if !result.DryRun {
		t.Error("DryRun flag not carried into result")
	}
}

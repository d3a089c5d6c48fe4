package tasks

import (
	"context"
	"fmt"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

const TypeExec = "exec"

// execPlugin runs a shell command through the resolve exec runner, so task
// commands share the same interpolation and timeout behavior as exec values.
type execPlugin struct {
	resolver *resolve.Resolver
}

func (p *execPlugin) Name() string { return "exec" }

func (p *execPlugin) TaskTypes() []string { return []string{TypeExec} }

type execConfig struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd,omitempty"`
}

func (p *execPlugin) ValidateTask(task document.TaskDefinition) []string {
	cfg, err := decodeConfig[execConfig](task)
	if err != nil {
		return []string{err.Error()}
	}
	if cfg.Command == "" {
		return []string{`config requires "command"`}
	}
	return nil
}

func (p *execPlugin) TaskDiff(_ context.Context, task document.TaskDefinition, env map[string]any) (string, error) {
	cfg, err := decodeConfig[execConfig](task)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("run %s", resolve.Interpolate(cfg.Command, env)), nil
}

func (p *execPlugin) Execute(ctx context.Context, task document.TaskDefinition, env map[string]any, _ plugin.ExecuteOptions) error {
	cfg, err := decodeConfig[execConfig](task)
	if err != nil {
		return err
	}
	cwd := resolve.Interpolate(cfg.Cwd, env)
	out, err := p.resolver.RunCommand(ctx, cfg.Command, cwd, env, task.TimeoutSeconds)
	if err != nil {
		return err
	}
	if out != "" {
		logger.Debug("command output", "task", task.ID, "output", out)
	}
	return nil
}

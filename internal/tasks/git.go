package tasks

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

const (
	TypeGitClone = "git.clone"
	TypeGitInit  = "git.init"
)

// gitPlugin sets up repositories: shallow clones of starters and fresh init
// of scaffolded project directories.
type gitPlugin struct{}

func (p *gitPlugin) Name() string { return "git" }

func (p *gitPlugin) TaskTypes() []string { return []string{TypeGitClone, TypeGitInit} }

type gitConfig struct {
	Repo   string `json:"repo,omitempty"`
	Dest   string `json:"dest,omitempty"`
	Branch string `json:"branch,omitempty"`
	// Depth limits clone history; 0 means the shallow default of 1.
	Depth int `json:"depth,omitempty"`
}

func (p *gitPlugin) ValidateTask(task document.TaskDefinition) []string {
	cfg, err := decodeConfig[gitConfig](task)
	if err != nil {
		return []string{err.Error()}
	}
	var issues []string
	if cfg.Dest == "" {
		issues = append(issues, `config requires "dest"`)
	}
	if task.Type == TypeGitClone && cfg.Repo == "" {
		issues = append(issues, `config requires "repo"`)
	}
	return issues
}

func (p *gitPlugin) TaskDiff(_ context.Context, task document.TaskDefinition, env map[string]any) (string, error) {
	cfg, err := decodeConfig[gitConfig](task)
	if err != nil {
		return "", err
	}
	switch task.Type {
	case TypeGitClone:
		return fmt.Sprintf("clone %s into %s", resolve.Interpolate(cfg.Repo, env), resolve.Interpolate(cfg.Dest, env)), nil
	case TypeGitInit:
		return fmt.Sprintf("init repository in %s", resolve.Interpolate(cfg.Dest, env)), nil
	}
	return "", nil
}

func (p *gitPlugin) Execute(ctx context.Context, task document.TaskDefinition, env map[string]any, _ plugin.ExecuteOptions) error {
	cfg, err := decodeConfig[gitConfig](task)
	if err != nil {
		return err
	}
	dest := resolve.Interpolate(cfg.Dest, env)

	switch task.Type {
	case TypeGitClone:
		repo := resolve.Interpolate(cfg.Repo, env)
		depth := cfg.Depth
		if depth <= 0 {
			depth = 1
		}
		opts := &git.CloneOptions{
			URL:          repo,
			Depth:        depth,
			SingleBranch: true,
		}
		if cfg.Branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(resolve.Interpolate(cfg.Branch, env))
		}
		logger.Debug("cloning", "repo", repo, "dest", dest, "depth", depth)
		if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
			return fmt.Errorf("cloning %s: %w", repo, err)
		}
		return nil

	case TypeGitInit:
		if _, err := git.PlainInit(dest, false); err != nil {
			return fmt.Errorf("initializing repository in %s: %w", dest, err)
		}
		return nil
	}
	return fmt.Errorf("task %q: unhandled type %q", task.ID, task.Type)
}

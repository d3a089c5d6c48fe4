package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/plugin"
	"github.com/forgex-labs/forgex/internal/resolve"
)

const (
	TypeFileCopy   = "file.copy"
	TypeFileMove   = "file.move"
	TypeFileWrite  = "file.write"
	TypeFileDelete = "file.delete"
)

// filePlugin handles filesystem scaffolding: copying template trees, moving
// and deleting paths, and writing files with optional interpolation.
type filePlugin struct{}

func (p *filePlugin) Name() string { return "file" }

func (p *filePlugin) TaskTypes() []string {
	return []string{TypeFileCopy, TypeFileMove, TypeFileWrite, TypeFileDelete}
}

type fileConfig struct {
	Src         string `json:"src,omitempty"`
	Dest        string `json:"dest,omitempty"`
	Path        string `json:"path,omitempty"`
	Content     string `json:"content,omitempty"`
	Interpolate bool   `json:"interpolate,omitempty"`
}

func (p *filePlugin) ValidateTask(task document.TaskDefinition) []string {
	cfg, err := decodeConfig[fileConfig](task)
	if err != nil {
		return []string{err.Error()}
	}
	var issues []string
	switch task.Type {
	case TypeFileCopy, TypeFileMove:
		if cfg.Src == "" {
			issues = append(issues, `config requires "src"`)
		}
		if cfg.Dest == "" {
			issues = append(issues, `config requires "dest"`)
		}
	case TypeFileWrite:
		if cfg.Path == "" {
			issues = append(issues, `config requires "path"`)
		}
	case TypeFileDelete:
		if cfg.Path == "" {
			issues = append(issues, `config requires "path"`)
		}
	}
	return issues
}

func (p *filePlugin) TaskDiff(_ context.Context, task document.TaskDefinition, env map[string]any) (string, error) {
	cfg, err := decodeConfig[fileConfig](task)
	if err != nil {
		return "", err
	}
	switch task.Type {
	case TypeFileCopy:
		return fmt.Sprintf("copy %s -> %s", resolve.Interpolate(cfg.Src, env), resolve.Interpolate(cfg.Dest, env)), nil
	case TypeFileMove:
		return fmt.Sprintf("move %s -> %s", resolve.Interpolate(cfg.Src, env), resolve.Interpolate(cfg.Dest, env)), nil
	case TypeFileWrite:
		return fmt.Sprintf("write %s (%d bytes)", resolve.Interpolate(cfg.Path, env), len(cfg.Content)), nil
	case TypeFileDelete:
		return fmt.Sprintf("delete %s", resolve.Interpolate(cfg.Path, env)), nil
	}
	return "", nil
}

func (p *filePlugin) Execute(_ context.Context, task document.TaskDefinition, env map[string]any, _ plugin.ExecuteOptions) error {
	cfg, err := decodeConfig[fileConfig](task)
	if err != nil {
		return err
	}

	switch task.Type {
	case TypeFileCopy:
		src := sourcePath(task, resolve.Interpolate(cfg.Src, env))
		dest := resolve.Interpolate(cfg.Dest, env)
		logger.Debug("copying", "src", src, "dest", dest)
		if err := cp.Copy(src, dest); err != nil {
			return fmt.Errorf("copying %s to %s: %w", src, dest, err)
		}
		return nil

	case TypeFileMove:
		src := resolve.Interpolate(cfg.Src, env)
		dest := resolve.Interpolate(cfg.Dest, env)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.Rename(src, dest); err == nil {
			return nil
		}
		// Rename fails across filesystems; fall back to copy and remove.
		if err := cp.Copy(src, dest); err != nil {
			return fmt.Errorf("moving %s to %s: %w", src, dest, err)
		}
		if err := os.RemoveAll(src); err != nil {
			return fmt.Errorf("removing %s after move: %w", src, err)
		}
		return nil

	case TypeFileWrite:
		dest := resolve.Interpolate(cfg.Path, env)
		content := cfg.Content
		if cfg.Interpolate {
			content = resolve.Interpolate(content, env)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		return nil

	case TypeFileDelete:
		dest := resolve.Interpolate(cfg.Path, env)
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("deleting %s: %w", dest, err)
		}
		return nil
	}
	return fmt.Errorf("task %q: unhandled type %q", task.ID, task.Type)
}

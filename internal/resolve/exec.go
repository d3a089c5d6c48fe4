package resolve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgex-labs/forgex/internal/document"
)

// Script runtimes selected from a file extension unless the exec-file spec
// names one explicitly.
const (
	RuntimeNode = "node"
	RuntimeBash = "bash"
	RuntimePwsh = "pwsh"
)

// runShell executes a command line through `sh -c` with a bounded timeout.
// The returned error covers spawn failures and timeouts; a non-zero exit is
// reported through the exit code with a nil error so callers can apply their
// own policy to it.
func (r *Resolver) runShell(ctx context.Context, command string, timeout time.Duration, dir string, extraEnv []string) (string, int, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", command)
	cmd.Dir = dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cctx.Err() == context.DeadlineExceeded {
		return "", -1, fmt.Errorf("timed out after %s", timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return strings.TrimSpace(stdout.String()), exitErr.ExitCode(), nil
		}
		return "", -1, err
	}
	return strings.TrimSpace(stdout.String()), 0, nil
}

// RunCommand interpolates and executes a shell command on behalf of a task.
// Task commands get the longer script timeout unless timeoutSeconds overrides
// it. A non-zero exit is an error here, unlike value resolution where some
// callers treat it as a signal.
func (r *Resolver) RunCommand(ctx context.Context, command, dir string, env map[string]any, timeoutSeconds int) (string, error) {
	interpolated := Interpolate(command, env)
	timeout := r.fileTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	out, code, err := r.runShell(ctx, interpolated, timeout, dir, nil)
	if err != nil {
		return "", fmt.Errorf("running %q: %w", interpolated, err)
	}
	if code != 0 {
		return out, fmt.Errorf("running %q: exit status %d", interpolated, code)
	}
	return out, nil
}

// resolveExecFile executes a local or remote script and coerces its output.
// Remote scripts are fetched to a temp file that is removed on every exit
// path.
func (r *Resolver) resolveExecFile(ctx context.Context, spec *document.ExecFileSpec, opts Options) (any, error) {
	scriptPath, cleanup, err := r.materializeScript(spec.Path, opts.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("exec-file %q: %w", spec.Path, err)
	}
	defer cleanup()

	runtimeName := spec.Runtime
	if runtimeName == "" {
		runtimeName = runtimeForExtension(scriptPath)
	}
	bin, err := runtimeBinary(runtimeName)
	if err != nil {
		return nil, fmt.Errorf("exec-file %q: %w", spec.Path, err)
	}

	args := make([]string, 0, len(spec.Args)+1)
	args = append(args, scriptPath)
	for _, a := range spec.Args {
		args = append(args, Interpolate(a, opts.Context))
	}

	env := os.Environ()
	for k, v := range spec.Params {
		env = append(env, k+"="+Interpolate(v, opts.Context))
	}

	cwd := Interpolate(spec.Cwd, opts.Context)

	cctx, cancel := context.WithTimeout(ctx, r.timeoutFor(opts, r.fileTimeout))
	defer cancel()

	cmd := exec.CommandContext(cctx, bin, args...)
	cmd.Dir = cwd
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("exec-file %q: timed out", spec.Path)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("exec-file %q: %w: %s", spec.Path, err, msg)
		}
		return nil, fmt.Errorf("exec-file %q: %w", spec.Path, err)
	}

	return Coerce(strings.TrimSpace(stdout.String())), nil
}

// materializeScript returns a local path for the script ref, downloading
// remote refs to a temp file. The cleanup func is a no-op for local scripts.
func (r *Resolver) materializeScript(ref, sourceURL string) (string, func(), error) {
	canonical, err := document.ResolveRef(sourceURL, ref)
	if err != nil {
		return "", nil, err
	}

	if !document.IsRemoteRef(canonical) {
		if _, err := os.Stat(canonical); err != nil {
			return "", nil, fmt.Errorf("script not found: %w", err)
		}
		return canonical, func() {}, nil
	}

	data, err := r.loader.Fetch(canonical)
	if err != nil {
		return "", nil, err
	}

	// Preserve the extension so runtime detection keeps working.
	tmp, err := os.CreateTemp("", "forgex-script-*"+path.Ext(canonical))
	if err != nil {
		return "", nil, fmt.Errorf("creating temp script: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("writing temp script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("closing temp script: %w", err)
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func runtimeForExtension(scriptPath string) string {
	switch strings.ToLower(filepath.Ext(scriptPath)) {
	case ".js", ".cjs", ".mjs":
		return RuntimeNode
	case ".sh", ".bash":
		return RuntimeBash
	case ".ps1":
		return RuntimePwsh
	default:
		return ""
	}
}

func runtimeBinary(runtimeName string) (string, error) {
	switch runtimeName {
	case RuntimeNode, RuntimeBash, RuntimePwsh:
		bin, err := exec.LookPath(runtimeName)
		if err != nil {
			return "", fmt.Errorf("runtime %q not available: %w", runtimeName, err)
		}
		return bin, nil
	case "":
		return "", fmt.Errorf("cannot detect runtime from extension; set \"runtime\" explicitly")
	default:
		return "", fmt.Errorf("unknown runtime %q: supported runtimes are %q, %q and %q", runtimeName, RuntimeNode, RuntimeBash, RuntimePwsh)
	}
}

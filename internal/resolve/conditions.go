package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/expr"
)

// CondOptions modifies condition evaluation.
type CondOptions struct {
	// Lazy treats an unknown-identifier failure as true, deferring the
	// decision until more of the context has been resolved.
	Lazy bool
	// Silent suppresses the warning normally logged for evaluation
	// failures.
	Silent bool
}

// EvaluateCondition evaluates a boolean expression against the context. An
// unknown identifier under Lazy defers to true; every other failure is false.
func (r *Resolver) EvaluateCondition(expression string, ctx map[string]any, opts CondOptions) bool {
	if ctx == nil {
		ctx = map[string]any{}
	}
	result, err := expr.EvalBool(expression, ctx)
	if err == nil {
		return result
	}

	var unknown *expr.UnknownIdentifierError
	if errors.As(err, &unknown) && opts.Lazy {
		r.log.Debug("deferring condition with unresolved identifier",
			"condition", expression, "identifier", unknown.Name)
		return true
	}
	if !opts.Silent {
		r.log.Warn("condition evaluation failed", "condition", expression, "error", err)
	}
	return false
}

// EvaluateEnabled resolves an enabled specification synchronously. Exec
// specs cannot run here, so the lazy flag stands in for their answer. Fails
// closed: any evaluation error disables the entity.
func (r *Resolver) EvaluateEnabled(value *document.ConditionValue, ctx map[string]any, opts CondOptions) bool {
	if value == nil {
		return true
	}
	switch value.Kind {
	case document.CondBool:
		return value.Bool
	case document.CondCondition:
		return r.EvaluateCondition(value.Expression, ctx, opts)
	case document.CondExec:
		return opts.Lazy
	default:
		return false
	}
}

// EvaluateEnabledExec is the asynchronous variant of EvaluateEnabled: exec
// specs are executed and their trimmed output mapped to a boolean. Fails
// closed to false on any error.
func (r *Resolver) EvaluateEnabledExec(ctx context.Context, value *document.ConditionValue, env map[string]any) bool {
	if value == nil {
		return true
	}
	switch value.Kind {
	case document.CondBool:
		return value.Bool
	case document.CondCondition:
		return r.EvaluateCondition(value.Expression, env, CondOptions{})
	case document.CondExec:
		command := Interpolate(value.Command, env)
		out, code, err := r.runShell(ctx, command, r.execTimeout, "", nil)
		if err != nil || code != 0 {
			r.log.Warn("enabled check command failed", "command", command, "error", err, "exit", code)
			return false
		}
		return outputToBool(out)
	default:
		return false
	}
}

// EvaluateRequired resolves a required specification synchronously. Unlike
// enabled it fails open: a task silently treated as non-required is worse
// than one blocking the run, so every evaluation error yields true. Exec
// specs cannot run synchronously and also default to true.
func (r *Resolver) EvaluateRequired(value *document.ConditionValue, ctx map[string]any) bool {
	if value == nil {
		return true
	}
	switch value.Kind {
	case document.CondBool:
		return value.Bool
	case document.CondCondition:
		if ctx == nil {
			ctx = map[string]any{}
		}
		result, err := expr.EvalBool(value.Expression, ctx)
		if err != nil {
			r.log.Warn("required evaluation failed; treating task as required",
				"condition", value.Expression, "error", err)
			return true
		}
		return result
	case document.CondExec:
		return true
	default:
		return true
	}
}

// EvaluateRequiredExec is the asynchronous variant of EvaluateRequired. For
// an exec spec the command's exit status is the answer: 0 means required,
// a nonzero exit or a spawn failure means not required, so tooling errors
// never block the pipeline. Expression errors still fail open.
func (r *Resolver) EvaluateRequiredExec(ctx context.Context, value *document.ConditionValue, env map[string]any) bool {
	if value == nil {
		return true
	}
	if value.Kind != document.CondExec {
		return r.EvaluateRequired(value, env)
	}

	command := Interpolate(value.Command, env)
	_, code, err := r.runShell(ctx, command, r.execTimeout, "", nil)
	if err != nil {
		r.log.Warn("required check command could not run; treating task as non-required",
			"command", command, "error", err)
		return false
	}
	return code == 0
}

// outputToBool maps enabled-check command output to a boolean: empty, "0",
// and case-insensitive "false"/"no" are false; anything else is true.
func outputToBool(out string) bool {
	switch strings.ToLower(out) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

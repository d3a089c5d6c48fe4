package resolve

import (
	"context"
	"maps"

	"github.com/forgex-labs/forgex/internal/document"
)

// ResolveAllVariables resolves variable definitions strictly sequentially in
// declaration order. Each variable's resolution, and the enabled-check of its
// owning document, may reference variables resolved earlier in the same pass.
// A variable whose owning document is disabled, or whose resolution fails, is
// absent from the result map; both cases are non-fatal and logged.
//
// Deferred lists the ids skipped by a document-enabled check that referenced
// a not-yet-resolved identifier; the caller re-attempts them once more of the
// context exists.
func (r *Resolver) ResolveAllVariables(ctx context.Context, vars []document.VariableDefinition, env map[string]any) (values map[string]any, deferred []string) {
	values = make(map[string]any, len(vars))

	// Work on a growing view so later variables see earlier results without
	// mutating the caller's context.
	combined := make(map[string]any, len(env)+len(vars))
	maps.Copy(combined, env)

	for _, v := range vars {
		if v.DocEnabled != nil {
			strict := r.EvaluateEnabled(v.DocEnabled, combined, CondOptions{Silent: true})
			if !strict {
				// Distinguish "disabled" from "cannot decide yet": under
				// lazy rules an unresolved reference defers the variable to
				// a later pass instead of dropping it.
				if r.EvaluateEnabled(v.DocEnabled, combined, CondOptions{Lazy: true, Silent: true}) {
					deferred = append(deferred, v.ID)
					r.log.Debug("deferring variable; document enabled-state not yet decidable", "variable", v.ID)
				} else {
					r.log.Debug("skipping variable of disabled document", "variable", v.ID, "source", v.SourceURL)
				}
				continue
			}
		}

		value, err := r.Resolve(ctx, v.Value, Options{
			ID:        v.ID,
			Context:   combined,
			SourceURL: v.SourceURL,
		})
		if err != nil {
			r.log.Warn("variable resolution failed; leaving it unset", "variable", v.ID, "error", err)
			continue
		}

		values[v.ID] = value
		combined[v.ID] = value
	}
	return values, deferred
}

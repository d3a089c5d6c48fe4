package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
)

// Default bounds for external process execution. Both are overridable through
// user settings and per-spec timeoutSeconds; exec-file gets a larger default
// because scripts legitimately run longer than inline commands.
const (
	DefaultExecTimeout = 10 * time.Second
	DefaultFileTimeout = 60 * time.Second
)

// Resolver resolves DynamicValue specifications. It is constructed once per
// run; the context map it evaluates against is owned by the orchestrator.
type Resolver struct {
	loader      *document.Loader
	execTimeout time.Duration
	fileTimeout time.Duration
	log         logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExecTimeout overrides the bounded timeout for inline exec commands.
func WithExecTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.execTimeout = d
		}
	}
}

// WithFileTimeout overrides the bounded timeout for exec-file scripts.
func WithFileTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.fileTimeout = d
		}
	}
}

// New returns a Resolver fetching remote scripts through the given loader.
func New(loader *document.Loader, opts ...Option) *Resolver {
	r := &Resolver{
		loader:      loader,
		execTimeout: DefaultExecTimeout,
		fileTimeout: DefaultFileTimeout,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Options carries the evaluation environment for one value resolution.
type Options struct {
	// ID names the entity being resolved, for log attribution.
	ID string
	// Context is the current id→value environment. May be nil, in which
	// case interpolation returns templates unresolved and conditionals
	// cannot be evaluated.
	Context map[string]any
	// SourceURL is the provenance of the defining document; relative script
	// paths resolve against it.
	SourceURL string
	// TimeoutSeconds, when positive, bounds this resolution's external
	// process execution instead of the resolver defaults.
	TimeoutSeconds int
}

// Resolve converts a dynamic value specification into a concrete value. A nil
// spec resolves to nil. Failures return an error; callers for which the spec
// declares resolution non-fatal log it and treat the value as absent.
func (r *Resolver) Resolve(ctx context.Context, spec *document.DynamicValue, opts Options) (any, error) {
	if spec == nil {
		return nil, nil
	}

	switch spec.Kind {
	case document.KindStatic, "":
		return spec.Static, nil

	case document.KindExec:
		command := Interpolate(spec.Command, opts.Context)
		out, code, err := r.runShell(ctx, command, r.timeoutFor(opts, r.execTimeout), "", nil)
		if err != nil {
			return nil, fmt.Errorf("exec %q: %w", command, err)
		}
		if code != 0 {
			return nil, fmt.Errorf("exec %q: exit status %d", command, code)
		}
		return Coerce(out), nil

	case document.KindExecFile:
		return r.resolveExecFile(ctx, spec.File, opts)

	case document.KindInterpolate:
		if opts.Context == nil {
			// Without a context the template cannot be resolved; hand it
			// back untouched.
			return spec.Template, nil
		}
		return Interpolate(spec.Template, opts.Context), nil

	case document.KindConditional:
		branch := spec.Cond.IfFalse
		if r.EvaluateCondition(spec.Cond.Condition, opts.Context, CondOptions{}) {
			branch = spec.Cond.IfTrue
		}
		return r.Resolve(ctx, branch, opts)

	default:
		return nil, fmt.Errorf("unknown dynamic value kind %q", spec.Kind)
	}
}

func (r *Resolver) timeoutFor(opts Options, fallback time.Duration) time.Duration {
	if opts.TimeoutSeconds > 0 {
		return time.Duration(opts.TimeoutSeconds) * time.Second
	}
	return fallback
}

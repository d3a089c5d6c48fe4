package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/resolve"
)

// Prompter collects answers for prompt definitions. Implementations decide
// interactivity; a non-interactive prompter falls back to defaults and fails
// on required prompts without one.
type Prompter interface {
	Ask(ctx context.Context, prompts []document.PromptDefinition, env map[string]any) (map[string]any, error)
}

// RunOptions configures one pipeline run.
type RunOptions struct {
	// Ref is the path or URL of the root configuration document.
	Ref string
	// DryRun reports what would execute without side effects.
	DryRun bool
	// Overrides are id=value pairs from the command line. They win over
	// resolved variables and are never prompted for.
	Overrides map[string]string
	// EngineVersion is the running build's version, checked against the
	// document's engineVersion constraint. Development builds skip the gate.
	EngineVersion string
	// Prompter collects prompt answers. Required when the merged document
	// declares prompts.
	Prompter Prompter
}

// Pipeline wires a full run: load the extends chain, validate against the
// schema, merge, resolve variables and prompts, filter and order tasks, then
// execute them through the plugin registry.
type Pipeline struct {
	loader   *document.Loader
	resolver *resolve.Resolver
	engine   *Engine
	log      logger.Logger
}

// NewPipeline assembles a pipeline from its collaborators.
func NewPipeline(loader *document.Loader, resolver *resolve.Resolver, eng *Engine) *Pipeline {
	return &Pipeline{
		loader:   loader,
		resolver: resolver,
		engine:   eng,
		log:      logger.Default(),
	}
}

// LoadMerged resolves the extends chain for ref, validates every document in
// it against the embedded schema, and returns the merged configuration.
// Schema violations across all documents are reported together.
func (p *Pipeline) LoadMerged(ref string) (*document.Configuration, error) {
	docs, err := p.loader.ResolveChain(ref)
	if err != nil {
		return nil, err
	}

	var issues []string
	for _, doc := range docs {
		result, err := document.ValidateSchema(doc.SourceURL, doc.Raw)
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", doc.SourceURL, err)
		}
		for _, issue := range result.Issues {
			issues = append(issues, fmt.Sprintf("%s: %s: %s", doc.SourceURL, issue.Path, issue.Message))
		}
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("configuration is invalid:\n  %s", strings.Join(issues, "\n  "))
	}

	return document.Merge(docs)
}

// ValidateTasks reports every structural problem with the given tasks at
// once, without evaluating conditions or executing anything.
func (p *Pipeline) ValidateTasks(tasks []document.TaskDefinition) error {
	return p.engine.ValidateTasks(tasks)
}

// CheckEngineVersion enforces the document's engineVersion constraint against
// the running build. Development builds ("dev" or empty) always pass.
func CheckEngineVersion(constraint, running string) error {
	if constraint == "" || running == "" || running == "dev" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid engineVersion constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(running, "v"))
	if err != nil {
		return fmt.Errorf("invalid running version %q: %w", running, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("this configuration requires engine version %s, running %s", constraint, running)
	}
	return nil
}

// Run executes the full pipeline for opts.Ref and returns the run result.
// The result is non-nil whenever execution started; its Err method reports
// required-task failures.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	merged, err := p.LoadMerged(opts.Ref)
	if err != nil {
		return nil, err
	}
	if err := CheckEngineVersion(merged.EngineVersion, opts.EngineVersion); err != nil {
		return nil, err
	}

	env, err := p.buildEnv(ctx, merged, opts)
	if err != nil {
		return nil, err
	}

	tasks, disabled, err := p.engine.ValidateAndFilter(ctx, merged.Tasks, env)
	if err != nil {
		return nil, err
	}
	sorted, err := p.engine.SortTasks(tasks)
	if err != nil {
		return nil, err
	}

	result := p.engine.ExecuteTasks(ctx, sorted, env, ExecuteOptions{DryRun: opts.DryRun})
	result.Results = append(result.Results, disabled...)
	return result, nil
}

// buildEnv assembles the run's id→value environment: variables first, then
// prompt answers, then command-line overrides, each layer shadowing the one
// before it. Prompts whose ids were overridden are never asked. A prompting
// failure aborts the run before any task executes. Variables deferred by an
// undecidable document condition get a second pass once prompt answers
// exist.
func (p *Pipeline) buildEnv(ctx context.Context, merged *document.Configuration, opts RunOptions) (map[string]any, error) {
	env := make(map[string]any)
	for id, raw := range opts.Overrides {
		env[id] = resolve.Coerce(raw)
	}

	values, deferred := p.resolver.ResolveAllVariables(ctx, merged.Variables, env)
	for id, v := range values {
		if _, overridden := env[id]; !overridden {
			env[id] = v
		}
	}

	pending := make([]document.PromptDefinition, 0, len(merged.Prompts))
	for _, prompt := range merged.Prompts {
		if _, overridden := opts.Overrides[prompt.ID]; !overridden {
			pending = append(pending, prompt)
		}
	}
	if len(pending) > 0 && opts.Prompter != nil {
		answers, err := opts.Prompter.Ask(ctx, pending, env)
		if err != nil {
			return nil, fmt.Errorf("collecting prompt answers: %w", err)
		}
		for id, v := range answers {
			env[id] = v
		}
	}

	p.resolveDeferred(ctx, merged.Variables, deferred, env)
	return env, nil
}

// resolveDeferred re-attempts variables whose document-enabled check could
// not be decided during the first pass. By now prompt answers are in the
// environment, so the check is evaluated strictly, running exec conditions.
func (p *Pipeline) resolveDeferred(ctx context.Context, vars []document.VariableDefinition, deferred []string, env map[string]any) {
	if len(deferred) == 0 {
		return
	}
	pending := make(map[string]bool, len(deferred))
	for _, id := range deferred {
		pending[id] = true
	}

	for _, v := range vars {
		if !pending[v.ID] {
			continue
		}
		if _, exists := env[v.ID]; exists {
			continue
		}
		if !p.resolver.EvaluateEnabledExec(ctx, v.DocEnabled, env) {
			p.log.Debug("deferred variable remains disabled", "variable", v.ID)
			continue
		}
		value, err := p.resolver.Resolve(ctx, v.Value, resolve.Options{
			ID:        v.ID,
			Context:   env,
			SourceURL: v.SourceURL,
		})
		if err != nil {
			p.log.Warn("deferred variable resolution failed; leaving it unset", "variable", v.ID, "error", err)
			continue
		}
		env[v.ID] = value
	}
}

package prompt

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/logger"
	"github.com/forgex-labs/forgex/internal/resolve"
)

// UI asks prompts interactively through terminal forms, or answers them from
// defaults when non-interactive.
type UI struct {
	resolver       *resolve.Resolver
	nonInteractive bool
	log            logger.Logger
}

// New returns a prompt UI. When nonInteractive is set, no terminal form is
// ever shown.
func New(resolver *resolve.Resolver, nonInteractive bool) *UI {
	return &UI{
		resolver:       resolver,
		nonInteractive: nonInteractive,
		log:            logger.Default(),
	}
}

// Ask collects answers for the given prompts. Disabled prompts are skipped.
// The returned map holds only the prompts that produced an answer.
func (u *UI) Ask(ctx context.Context, prompts []document.PromptDefinition, env map[string]any) (map[string]any, error) {
	answers := make(map[string]any, len(prompts))

	combined := make(map[string]any, len(env)+len(prompts))
	maps.Copy(combined, env)

	for _, p := range prompts {
		if !u.resolver.EvaluateEnabledExec(ctx, p.Enabled, combined) {
			u.log.Debug("prompt disabled", "prompt", p.ID)
			continue
		}

		def, err := u.resolver.Resolve(ctx, p.Default, resolve.Options{
			ID:        p.ID,
			Context:   combined,
			SourceURL: p.SourceURL,
		})
		if err != nil {
			u.log.Warn("prompt default could not be resolved", "prompt", p.ID, "error", err)
			def = nil
		}
		required := u.resolver.EvaluateRequiredExec(ctx, p.Required, combined)

		var answer any
		if u.nonInteractive {
			answer, err = answerFromDefault(p, def, required)
		} else {
			answer, err = u.ask(ctx, p, def, required)
		}
		if err != nil {
			return nil, err
		}
		if answer == nil {
			continue
		}

		answers[p.ID] = answer
		combined[p.ID] = answer
	}
	return answers, nil
}

// answerFromDefault stands in for the terminal form in non-interactive runs.
func answerFromDefault(p document.PromptDefinition, def any, required bool) (any, error) {
	if def != nil {
		return def, nil
	}
	if required {
		return nil, fmt.Errorf("prompt %q requires an answer but the run is non-interactive and no default exists", p.ID)
	}
	return nil, nil
}

func (u *UI) ask(ctx context.Context, p document.PromptDefinition, def any, required bool) (any, error) {
	switch p.Kind {
	case document.PromptInput:
		return u.askText(ctx, p, def, required, false)
	case document.PromptPassword:
		return u.askText(ctx, p, def, required, true)
	case document.PromptNumber:
		return u.askNumber(ctx, p, def, required)
	case document.PromptSelect:
		return u.askSelect(ctx, p, def)
	case document.PromptConfirm:
		return u.askConfirm(ctx, p, def)
	default:
		return nil, fmt.Errorf("prompt %q: unknown prompt type %q", p.ID, p.Kind)
	}
}

func (u *UI) askText(ctx context.Context, p document.PromptDefinition, def any, required, secret bool) (any, error) {
	value := stringifyDefault(def)
	input := huh.NewInput().
		Title(title(p)).
		Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if required {
		input = input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a value is required")
			}
			return nil
		})
	}
	if err := runField(ctx, input); err != nil {
		return nil, fmt.Errorf("prompt %q: %w", p.ID, err)
	}
	if value == "" && !required {
		return nil, nil
	}
	return value, nil
}

func (u *UI) askNumber(ctx context.Context, p document.PromptDefinition, def any, required bool) (any, error) {
	value := stringifyDefault(def)
	input := huh.NewInput().
		Title(title(p)).
		Value(&value).
		Validate(func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				if required {
					return fmt.Errorf("a number is required")
				}
				return nil
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%q is not a number", s)
			}
			if p.Min != nil && n < *p.Min {
				return fmt.Errorf("must be at least %v", *p.Min)
			}
			if p.Max != nil && n > *p.Max {
				return fmt.Errorf("must be at most %v", *p.Max)
			}
			return nil
		})
	if err := runField(ctx, input); err != nil {
		return nil, fmt.Errorf("prompt %q: %w", p.ID, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	return parseNumber(value), nil
}

func (u *UI) askSelect(ctx context.Context, p document.PromptDefinition, def any) (any, error) {
	if len(p.Choices) == 0 {
		return nil, fmt.Errorf("prompt %q: select prompt has no choices", p.ID)
	}

	options := make([]huh.Option[int], len(p.Choices))
	for i, c := range p.Choices {
		options[i] = huh.NewOption(c.Label, i)
	}
	selected := defaultChoiceIndex(p.Choices, def)

	field := huh.NewSelect[int]().
		Title(title(p)).
		Options(options...).
		Value(&selected)
	if err := runField(ctx, field); err != nil {
		return nil, fmt.Errorf("prompt %q: %w", p.ID, err)
	}
	return p.Choices[selected].Value, nil
}

func (u *UI) askConfirm(ctx context.Context, p document.PromptDefinition, def any) (any, error) {
	value, _ := def.(bool)
	field := huh.NewConfirm().
		Title(title(p)).
		Value(&value)
	if err := runField(ctx, field); err != nil {
		return nil, fmt.Errorf("prompt %q: %w", p.ID, err)
	}
	return value, nil
}

func runField(ctx context.Context, field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx)
}

// defaultChoiceIndex finds the choice whose value matches the resolved
// default. Choice values may be any JSON value, including maps and lists, so
// the comparison must not rely on Go interface equality.
func defaultChoiceIndex(choices []document.Choice, def any) int {
	if def == nil {
		return 0
	}
	for i, c := range choices {
		if reflect.DeepEqual(c.Value, def) {
			return i
		}
	}
	return 0
}

func title(p document.PromptDefinition) string {
	if p.Message != "" {
		return p.Message
	}
	return p.ID
}

func stringifyDefault(def any) string {
	if def == nil {
		return ""
	}
	if s, ok := def.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", def)
}

// parseNumber keeps whole numbers as ints so downstream comparisons behave
// like untyped literals.
func parseNumber(s string) any {
	if !strings.Contains(s, ".") {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

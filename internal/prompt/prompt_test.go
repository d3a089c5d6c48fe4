package prompt

import (
	"context"
	"testing"

	"github.com/forgex-labs/forgex/internal/document"
	"github.com/forgex-labs/forgex/internal/resolve"
)

func newNonInteractive(t *testing.T) *UI {
	t.Helper()
	return New(resolve.New(document.NewLoader()), true)
}

func TestAsk_NonInteractiveUsesDefaults(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{ID: "region", Kind: document.PromptInput, Default: document.StaticValue("us-east-1")},
		{ID: "replicas", Kind: document.PromptNumber, Default: document.StaticValue(3)},
	}

	answers, err := ui.Ask(context.Background(), prompts, nil)
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answers["region"] != "us-east-1" {
		t.Errorf("region = %v, want %q", answers["region"], "us-east-1")
	}
	if answers["replicas"] != 3 {
		t.Errorf("replicas = %v, want 3", answers["replicas"])
	}
}

func TestAsk_NonInteractiveRequiredWithoutDefaultFails(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{ID: "token", Kind: document.PromptPassword},
	}

	if _, err := ui.Ask(context.Background(), prompts, nil); err == nil {
		t.Fatal("expected error for required prompt without default, got nil")
	}
}

func TestAsk_NonInteractiveOptionalWithoutDefaultSkips(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{ID: "nickname", Kind: document.PromptInput, Required: document.BoolCondition(false)},
	}

	answers, err := ui.Ask(context.Background(), prompts, nil)
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if _, ok := answers["nickname"]; ok {
		t.Errorf("answers = %v, want nickname absent", answers)
	}
}

func TestAsk_DisabledPromptSkipped(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{
			ID:      "db-password",
			Kind:    document.PromptPassword,
			Enabled: &document.ConditionValue{Kind: document.CondCondition, Expression: "database == 'postgres'"},
			Default: document.StaticValue("secret"),
		},
	}

	answers, err := ui.Ask(context.Background(), prompts, map[string]any{"database": "sqlite"})
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if _, ok := answers["db-password"]; ok {
		t.Error("disabled prompt produced an answer")
	}
}

func TestAsk_LaterPromptsSeeEarlierAnswers(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{ID: "stage", Kind: document.PromptInput, Default: document.StaticValue("prod")},
		{
			ID:      "replicas",
			Kind:    document.PromptNumber,
			Enabled: &document.ConditionValue{Kind: document.CondCondition, Expression: "stage == 'prod'"},
			Default: document.StaticValue(3),
		},
	}

	answers, err := ui.Ask(context.Background(), prompts, nil)
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answers["replicas"] != 3 {
		t.Errorf("replicas = %v, want 3 (enabled by earlier answer)", answers["replicas"])
	}
}

func TestAsk_DefaultResolvesDynamically(t *testing.T) {
	ui := newNonInteractive(t)

	prompts := []document.PromptDefinition{
		{
			ID:   "bucket",
			Kind: document.PromptInput,
			Default: &document.DynamicValue{
				Kind:     document.KindInterpolate,
				Template: "{{name}}-artifacts",
			},
		},
	}

	answers, err := ui.Ask(context.Background(), prompts, map[string]any{"name": "web"})
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if answers["bucket"] != "web-artifacts" {
		t.Errorf("bucket = %v, want %q", answers["bucket"], "web-artifacts")
	}
}

func TestDefaultChoiceIndex(t *testing.T) {
	choices := []document.Choice{
		{Label: "Minimal", Value: []any{"core"}},
		{Label: "Full", Value: []any{"core", "extras"}},
		{Label: "Port", Value: 8080},
	}

	tests := []struct {
		name string
		def  any
		want int
	}{
		{"nil default", nil, 0},
		{"list value matched structurally", []any{"core", "extras"}, 1},
		{"scalar value", 8080, 2},
		{"unmatched default falls back to first", []any{"other"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultChoiceIndex(choices, tt.def); got != tt.want {
				t.Errorf("defaultChoiceIndex(%v) = %d, want %d", tt.def, got, tt.want)
			}
		})
	}
}

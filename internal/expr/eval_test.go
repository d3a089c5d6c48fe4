package expr

import (
	"errors"
	"testing"
)

func TestEvalBool(t *testing.T) {
	ctx := map[string]any{
		"a":        1,
		"name":     "web",
		"count":    float64(3),
		"flag":     true,
		"empty":    "",
		"zero":     0,
		"use-tls":  true,
		"database": map[string]any{"engine": "postgres", "port": float64(5432)},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"a == 1", true},
		{"a === 1", true},
		{"a === 1.0", true},
		{"a == '1'", false},
		{"a === '1'", false},
		{"a != 1", false},
		{"a !== 2", true},
		{"database.port === 5432", true},
		{"name == 'web'", true},
		{`name == "api"`, false},
		{"count > 2", true},
		{"count >= 3", true},
		{"count < 3", false},
		{"count <= 2", false},
		{"name > 'api'", true},
		{"flag", true},
		{"!flag", false},
		{"empty", false},
		{"zero", false},
		{"flag && count > 1", true},
		{"flag && count > 5", false},
		{"empty || flag", true},
		{"empty || zero", false},
		{"(a == 1 || a == 2) && flag", true},
		{"use-tls", true},
		{"database.engine == 'postgres'", true},
		{"database.port == 5432", true},
		{"database.missing == null", true},
		{"true", true},
		{"false", false},
		{"null", false},
		{"undefined", false},
		{"1 < 2", true},
		{"'a' != 'b'", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalBool(tt.expr, ctx)
			if err != nil {
				t.Fatalf("EvalBool(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("EvalBool(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_UnknownIdentifier(t *testing.T) {
	_, err := Eval("missing == 1", map[string]any{"a": 1})
	if err == nil {
		t.Fatal("expected error for unbound identifier, got nil")
	}
	var unknown *UnknownIdentifierError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownIdentifierError, got %T: %v", err, err)
	}
	if unknown.Name != "missing" {
		t.Errorf("Name = %q, want %q", unknown.Name, "missing")
	}
}

func TestEval_ShortCircuitSkipsUnknown(t *testing.T) {
	ctx := map[string]any{"flag": false}

	// The right side references an unbound name but is never evaluated.
	got, err := EvalBool("flag && missing == 1", ctx)
	if err != nil {
		t.Fatalf("EvalBool error: %v", err)
	}
	if got {
		t.Error("EvalBool = true, want false")
	}

	ctx["flag"] = true
	got, err = EvalBool("flag || missing == 1", ctx)
	if err != nil {
		t.Fatalf("EvalBool error: %v", err)
	}
	if !got {
		t.Error("EvalBool = false, want true")
	}
}

func TestEval_NestedMissingIsNil(t *testing.T) {
	ctx := map[string]any{"database": map[string]any{"engine": "postgres"}}

	v, err := Eval("database.port", ctx)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if v != nil {
		t.Errorf("Eval = %v, want nil", v)
	}

	// Property access on a scalar also resolves to nil.
	v, err = Eval("database.engine.version", ctx)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if v != nil {
		t.Errorf("Eval = %v, want nil", v)
	}
}

func TestEval_SyntaxErrors(t *testing.T) {
	tests := []string{
		"a = 1",
		"a ==",
		"&& a",
		"(a == 1",
		"a == 1)",
		"a @ 1",
		"",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := Eval(expr, map[string]any{"a": 1})
			if err == nil {
				t.Fatalf("Eval(%q) succeeded, want syntax error", expr)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Errorf("expected SyntaxError, got %T: %v", err, err)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero int", 0, false},
		{"zero float", float64(0), false},
		{"nonzero", 42, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"map", map[string]any{}, true},
		{"slice", []any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

package resolve

import "testing"

func TestInterpolate(t *testing.T) {
	ctx := map[string]any{
		"name":    "web",
		"stage":   "prod",
		"count":   3,
		"ratio":   0.5,
		"use-tls": true,
		"database": map[string]any{
			"engine": "postgres",
			"port":   5432,
		},
		"tags": []any{"a", "b"},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"single", "{{name}}", "web"},
		{"multiple", "{{name}}-{{stage}}", "web-prod"},
		{"spaces inside braces", "{{ name }}", "web"},
		{"number", "replicas={{count}}", "replicas=3"},
		{"float", "ratio={{ratio}}", "ratio=0.5"},
		{"bool", "tls={{use-tls}}", "tls=true"},
		{"dotted path", "{{database.engine}}:{{database.port}}", "postgres:5432"},
		{"missing becomes empty", "a{{missing}}b", "ab"},
		{"missing nested", "{{database.missing}}", ""},
		{"path through scalar", "{{name.inner}}", ""},
		{"composite renders as JSON", "{{tags}}", `["a","b"]`},
		{"unmatched braces untouched", "{{not closed", "{{not closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpolate(tt.template, ctx)
			if got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestInterpolate_NilContext(t *testing.T) {
	template := "{{name}}-{{stage}}"
	if got := Interpolate(template, nil); got != template {
		t.Errorf("Interpolate with nil context = %q, want template unchanged", got)
	}
}

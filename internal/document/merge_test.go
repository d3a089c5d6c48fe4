package document

import (
	"errors"
	"reflect"
	"testing"
)

func TestMerge_OverrideReplaces(t *testing.T) {
	base := &Configuration{
		Tasks: []TaskDefinition{
			{ID: "setup", Type: "exec", Config: map[string]any{"command": "make init"}, Dependencies: []string{"clone"}},
			{ID: "clone", Type: "git.clone", Config: map[string]any{"repo": "https://example.com/base.git"}},
		},
	}
	child := &Configuration{
		Tasks: []TaskDefinition{
			{ID: "setup", Type: "exec", Config: map[string]any{"command": "make bootstrap"}},
		},
	}

	merged, err := Merge([]*Configuration{base, child})
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	if len(merged.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(merged.Tasks))
	}

	// Overrides keep the first-seen position.
	setup := merged.Tasks[0]
	if setup.ID != "setup" {
		t.Fatalf("Tasks[0].ID = %q, want %q", setup.ID, "setup")
	}
	if got := setup.Config["command"]; got != "make bootstrap" {
		t.Errorf("command = %v, want %q", got, "make bootstrap")
	}
	// A plain override replaces the definition entirely, dependencies
	// included.
	if len(setup.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want none", setup.Dependencies)
	}
}

func TestMerge_MergeFlagOverlays(t *testing.T) {
	base := &Configuration{
		Tasks: []TaskDefinition{
			{
				ID:           "install",
				Name:         "Install dependencies",
				Type:         "exec",
				Config:       map[string]any{"command": "npm install"},
				Dependencies: []string{"clone", "setup"},
			},
		},
	}
	child := &Configuration{
		Tasks: []TaskDefinition{
			{
				ID:           "install",
				Type:         "exec",
				Config:       map[string]any{"command": "bun install"},
				Dependencies: []string{"setup", "lockfile"},
				Merge:        true,
			},
		},
	}

	merged, err := Merge([]*Configuration{base, child})
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	task := merged.Tasks[0]
	if got := task.Config["command"]; got != "bun install" {
		t.Errorf("command = %v, want %q", got, "bun install")
	}
	// Fields the child leaves zero survive from the base.
	if task.Name != "Install dependencies" {
		t.Errorf("Name = %q, want %q", task.Name, "Install dependencies")
	}
	// Dependencies concatenate and deduplicate, base first.
	want := []string{"clone", "setup", "lockfile"}
	if !reflect.DeepEqual(task.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", task.Dependencies, want)
	}
}

func TestMerge_VariableOverride(t *testing.T) {
	base := &Configuration{
		Variables: []VariableDefinition{
			{ID: "region", Value: StaticValue("us-east-1")},
			{ID: "stage", Value: StaticValue("dev")},
		},
	}
	child := &Configuration{
		Variables: []VariableDefinition{
			{ID: "stage", Value: StaticValue("prod")},
		},
	}

	merged, err := Merge([]*Configuration{base, child})
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	if len(merged.Variables) != 2 {
		t.Fatalf("len(Variables) = %d, want 2", len(merged.Variables))
	}
	if merged.Variables[1].ID != "stage" {
		t.Errorf("Variables[1].ID = %q, want %q", merged.Variables[1].ID, "stage")
	}
	if got := merged.Variables[1].Value.Static; got != "prod" {
		t.Errorf("stage = %v, want %q", got, "prod")
	}
}

func TestMerge_DuplicateIDAcrossKinds(t *testing.T) {
	doc := &Configuration{
		Tasks:     []TaskDefinition{{ID: "name", Type: "exec"}},
		Variables: []VariableDefinition{{ID: "name", Value: StaticValue("x")}},
	}

	_, err := Merge([]*Configuration{doc})
	if err == nil {
		t.Fatal("expected duplicate id error, got nil")
	}
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %T: %v", err, err)
	}
	if dup.ID != "name" {
		t.Errorf("ID = %q, want %q", dup.ID, "name")
	}
}

func TestMerge_InvalidID(t *testing.T) {
	doc := &Configuration{
		Tasks: []TaskDefinition{{ID: "9lives", Type: "exec"}},
	}
	if _, err := Merge([]*Configuration{doc}); err == nil {
		t.Fatal("expected invalid id error, got nil")
	}
}

func TestMerge_EngineVersionLastWins(t *testing.T) {
	docs := []*Configuration{
		{EngineVersion: ">=1.0.0"},
		{},
		{EngineVersion: ">=2.0.0"},
	}
	merged, err := Merge(docs)
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	if merged.EngineVersion != ">=2.0.0" {
		t.Errorf("EngineVersion = %q, want %q", merged.EngineVersion, ">=2.0.0")
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"setup", false},
		{"use-tls", false},
		{"_private", false},
		{"db_port2", false},
		{"", true},
		{"9lives", true},
		{"-lead", true},
		{"has space", true},
		{"dotted.id", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID(KindTask, tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

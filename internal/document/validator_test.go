package document

import (
	"strings"
	"testing"
)

func TestValidateSchema_ValidDocument(t *testing.T) {
	doc := `{
		"engineVersion": ">=1.0.0",
		"extends": "base.json",
		"prompts": [
			{"id": "db", "type": "select", "message": "Database?", "choices": ["postgres", "sqlite"]}
		],
		"variables": [
			{"id": "stage", "value": "dev"},
			{"id": "sha", "value": {"type": "exec", "value": "git rev-parse HEAD"}}
		],
		"tasks": [
			{"id": "setup", "type": "exec", "config": {"command": "true"}, "dependencies": ["clone"]},
			{"id": "clone", "type": "git.clone", "enabled": "stage == 'dev'"}
		]
	}`

	result, err := ValidateSchema("app.json", []byte(doc))
	if err != nil {
		t.Fatalf("ValidateSchema error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("Valid = false, issues: %+v", result.Issues)
	}
}

func TestValidateSchema_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			"task missing type",
			`{"tasks": [{"id": "setup"}]}`,
			"/tasks/0",
		},
		{
			"bad id pattern",
			`{"tasks": [{"id": "9lives", "type": "exec"}]}`,
			"/tasks/0/id",
		},
		{
			"unknown top-level key",
			`{"steps": []}`,
			"",
		},
		{
			"variable without value",
			`{"variables": [{"id": "stage"}]}`,
			"/variables/0",
		},
		{
			"bad prompt type",
			`{"prompts": [{"id": "p", "type": "textarea"}]}`,
			"/prompts/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSchema("app.json", []byte(tt.doc))
			if err != nil {
				t.Fatalf("ValidateSchema error: %v", err)
			}
			if result.Valid {
				t.Fatal("Valid = true, want validation issues")
			}
			if len(result.Issues) == 0 {
				t.Fatal("no issues reported")
			}
			found := false
			for _, issue := range result.Issues {
				if strings.HasPrefix(issue.Path, tt.wantPath) {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue under path %q, got %+v", tt.wantPath, result.Issues)
			}
		})
	}
}

func TestValidateSchema_YAMLRef(t *testing.T) {
	doc := `
tasks:
  - id: setup
    type: exec
`
	result, err := ValidateSchema("app.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("ValidateSchema error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("Valid = false, issues: %+v", result.Issues)
	}
}

package document

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Entity kind names used in uniqueness errors and provenance reporting.
const (
	KindTask     = "task"
	KindPrompt   = "prompt"
	KindVariable = "variable"
)

// Prompt kinds accepted in the "type" field of a prompt definition.
const (
	PromptInput    = "input"
	PromptPassword = "password"
	PromptNumber   = "number"
	PromptSelect   = "select"
	PromptConfirm  = "confirm"
)

// Configuration is a single (possibly merged) scaffolding document.
type Configuration struct {
	Schema        string               `json:"$schema,omitempty"`
	EngineVersion string               `json:"engineVersion,omitempty"`
	Extends       StringList           `json:"extends,omitempty"`
	Enabled       *ConditionValue      `json:"enabled,omitempty"`
	Prompts       []PromptDefinition   `json:"prompts,omitempty"`
	Variables     []VariableDefinition `json:"variables,omitempty"`
	Tasks         []TaskDefinition     `json:"tasks,omitempty"`

	// SourceURL is the canonical ref this document was loaded from. Set by
	// the loader, never serialized.
	SourceURL string `json:"-"`

	// Raw holds the fetched document bytes for later schema validation.
	Raw []byte `json:"-"`
}

// TaskDefinition is a declarative unit of work.
type TaskDefinition struct {
	ID             string          `json:"id"`
	Name           string          `json:"name,omitempty"`
	Description    string          `json:"description,omitempty"`
	Type           string          `json:"type"`
	Required       *ConditionValue `json:"required,omitempty"`
	Enabled        *ConditionValue `json:"enabled,omitempty"`
	Config         map[string]any  `json:"config,omitempty"`
	Dependencies   []string        `json:"dependencies,omitempty"`
	Rollback       any             `json:"rollback,omitempty"`
	Merge          bool            `json:"merge,omitempty"`
	TimeoutSeconds int             `json:"timeoutSeconds,omitempty"`

	// SourceURL is the document in which this task was last defined or
	// overridden. Relative paths in the task config resolve against it.
	SourceURL string `json:"-"`
}

// PromptDefinition describes one interactive question.
type PromptDefinition struct {
	ID       string          `json:"id"`
	Kind     string          `json:"type"`
	Message  string          `json:"message,omitempty"`
	Required *ConditionValue `json:"required,omitempty"`
	Enabled  *ConditionValue `json:"enabled,omitempty"`
	Default  *DynamicValue   `json:"default,omitempty"`
	Choices  []Choice        `json:"choices,omitempty"`
	Min      *float64        `json:"min,omitempty"`
	Max      *float64        `json:"max,omitempty"`
	Merge    bool            `json:"merge,omitempty"`

	SourceURL string `json:"-"`
}

// VariableDefinition binds an id to a dynamic value.
type VariableDefinition struct {
	ID    string        `json:"id"`
	Value *DynamicValue `json:"value"`
	Merge bool          `json:"merge,omitempty"`

	SourceURL string `json:"-"`

	// DocEnabled points at the enabled-state of the document that defined
	// this variable. When that document is conditionally disabled, the
	// variable is skipped during resolution.
	DocEnabled *ConditionValue `json:"-"`
}

// Choice is one option of a select prompt. It decodes from either a bare
// string or a {label, value} object.
type Choice struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// UnmarshalJSON accepts "a" as shorthand for {"label":"a","value":"a"}.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Label = s
		c.Value = s
		return nil
	}
	type alias Choice
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("choice must be a string or a {label, value} object: %w", err)
	}
	*c = Choice(a)
	if c.Label == "" {
		c.Label = fmt.Sprintf("%v", c.Value)
	}
	return nil
}

// StringList decodes from either a single string or an array of strings.
type StringList []string

// UnmarshalJSON accepts "x" as shorthand for ["x"].
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*s = StringList(many)
	return nil
}

// idPattern is the canonical entity id grammar. Hyphens are allowed so that
// kebab-case ids, the common case in scaffolding configs, stay valid; the
// expression lexer understands the same grammar.
var idPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// ValidateID reports whether id matches the canonical grammar
// [a-zA-Z_][a-zA-Z0-9_-]*.
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s has an empty id", kind)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s id %q is invalid: ids must match [a-zA-Z_][a-zA-Z0-9_-]*", kind, id)
	}
	return nil
}

package document

import (
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the DynamicValue union.
type ValueKind string

const (
	KindStatic      ValueKind = "static"
	KindExec        ValueKind = "exec"
	KindExecFile    ValueKind = "exec-file"
	KindInterpolate ValueKind = "interpolate"
	KindConditional ValueKind = "conditional"
)

// DynamicValue is a tagged value specification. Exactly one variant is
// populated according to Kind; consumers dispatch on the tag, never on the
// runtime shape of Static.
type DynamicValue struct {
	Kind ValueKind

	Static   any              // static: the literal value
	Command  string           // exec: shell command line
	File     *ExecFileSpec    // exec-file
	Template string           // interpolate: template with {{dotted.path}} markers
	Cond     *ConditionalSpec // conditional
}

// ExecFileSpec configures script execution for an exec-file value.
type ExecFileSpec struct {
	Path    string            `json:"value"`
	Runtime string            `json:"runtime,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

// ConditionalSpec selects between two dynamic values. Branches are themselves
// dynamic values and may nest further conditionals.
type ConditionalSpec struct {
	Condition string        `json:"condition"`
	IfTrue    *DynamicValue `json:"ifTrue"`
	IfFalse   *DynamicValue `json:"ifFalse"`
}

// Static returns a DynamicValue holding a literal.
func StaticValue(v any) *DynamicValue {
	return &DynamicValue{Kind: KindStatic, Static: v}
}

// UnmarshalJSON decodes the tagged union. Any JSON value that is not an
// object carrying a recognized "type" tag decodes as a static literal,
// including plain objects.
func (d *DynamicValue) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Type == "" {
		return d.unmarshalStatic(data)
	}

	switch ValueKind(probe.Type) {
	case KindStatic:
		var spec struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("decoding static value: %w", err)
		}
		d.Kind = KindStatic
		d.Static = spec.Value
	case KindExec:
		var spec struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("decoding exec value: %w", err)
		}
		if spec.Value == "" {
			return fmt.Errorf("exec value requires a non-empty command")
		}
		d.Kind = KindExec
		d.Command = spec.Value
	case KindExecFile:
		var spec ExecFileSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("decoding exec-file value: %w", err)
		}
		if spec.Path == "" {
			return fmt.Errorf("exec-file value requires a non-empty path")
		}
		d.Kind = KindExecFile
		d.File = &spec
	case KindInterpolate:
		var spec struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("decoding interpolate value: %w", err)
		}
		d.Kind = KindInterpolate
		d.Template = spec.Value
	case KindConditional:
		var spec ConditionalSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("decoding conditional value: %w", err)
		}
		if spec.Condition == "" {
			return fmt.Errorf("conditional value requires a condition expression")
		}
		d.Kind = KindConditional
		d.Cond = &spec
	default:
		// Unknown tags are treated as plain objects that happen to carry a
		// "type" key of their own.
		return d.unmarshalStatic(data)
	}
	return nil
}

func (d *DynamicValue) unmarshalStatic(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding literal value: %w", err)
	}
	d.Kind = KindStatic
	d.Static = v
	return nil
}

// MarshalJSON re-encodes the union in its tagged wire form.
func (d *DynamicValue) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindStatic, "":
		return json.Marshal(d.Static)
	case KindExec:
		return json.Marshal(map[string]any{"type": string(KindExec), "value": d.Command})
	case KindExecFile:
		type tagged struct {
			Type string `json:"type"`
			ExecFileSpec
		}
		return json.Marshal(tagged{Type: string(KindExecFile), ExecFileSpec: *d.File})
	case KindInterpolate:
		return json.Marshal(map[string]any{"type": string(KindInterpolate), "value": d.Template})
	case KindConditional:
		type tagged struct {
			Type string `json:"type"`
			ConditionalSpec
		}
		return json.Marshal(tagged{Type: string(KindConditional), ConditionalSpec: *d.Cond})
	default:
		return nil, fmt.Errorf("unknown dynamic value kind %q", d.Kind)
	}
}

// ConditionKind discriminates ConditionValue variants.
type ConditionKind string

const (
	CondBool      ConditionKind = "bool"
	CondCondition ConditionKind = "condition"
	CondExec      ConditionKind = "exec"
)

// ConditionValue is the enabled/required specification: a boolean literal, a
// boolean expression evaluated against the context, or a shell command whose
// outcome is mapped to a boolean.
type ConditionValue struct {
	Kind       ConditionKind
	Bool       bool
	Expression string
	Command    string
}

// BoolCondition returns a literal boolean ConditionValue.
func BoolCondition(v bool) *ConditionValue {
	return &ConditionValue{Kind: CondBool, Bool: v}
}

// UnmarshalJSON accepts true/false, a bare expression string, or a tagged
// {"type":"condition"|"exec","value":...} object.
func (c *ConditionValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		c.Kind = CondBool
		c.Bool = b
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Kind = CondCondition
		c.Expression = s
		return nil
	}

	var spec struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("enabled/required must be a bool, an expression string, or a tagged object: %w", err)
	}
	switch spec.Type {
	case string(CondCondition):
		c.Kind = CondCondition
		c.Expression = spec.Value
	case string(CondExec):
		if spec.Value == "" {
			return fmt.Errorf("exec condition requires a non-empty command")
		}
		c.Kind = CondExec
		c.Command = spec.Value
	default:
		return fmt.Errorf("unknown condition type %q", spec.Type)
	}
	return nil
}

// MarshalJSON re-encodes the condition in its wire form.
func (c *ConditionValue) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CondBool:
		return json.Marshal(c.Bool)
	case CondCondition:
		return json.Marshal(map[string]string{"type": string(CondCondition), "value": c.Expression})
	case CondExec:
		return json.Marshal(map[string]string{"type": string(CondExec), "value": c.Command})
	default:
		return nil, fmt.Errorf("unknown condition kind %q", c.Kind)
	}
}

package expr

import (
	"fmt"
	"reflect"
)

// UnknownIdentifierError reports an expression referencing a name that is not
// bound in the context. Lazy condition evaluation special-cases it.
type UnknownIdentifierError struct {
	Name string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown identifier %q", e.Name)
}

// Eval parses and evaluates an expression against the context, returning the
// raw result value.
func Eval(expression string, ctx map[string]any) (any, error) {
	n, err := parse(expression)
	if err != nil {
		return nil, err
	}
	return n.eval(ctx)
}

// EvalBool evaluates an expression and coerces the result to a boolean by
// truthiness.
func EvalBool(expression string, ctx map[string]any) (bool, error) {
	v, err := Eval(expression, ctx)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Truthy maps a value to a boolean: nil, false, zero numbers, and empty
// strings are false; everything else is true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return true
	}
}

func (n *literalNode) eval(map[string]any) (any, error) {
	return n.value, nil
}

// eval resolves a dotted path. The root segment must be bound in the context;
// missing nested segments resolve to nil rather than failing, matching
// property access on present values.
func (n *identNode) eval(ctx map[string]any) (any, error) {
	root := n.path[0]
	v, ok := ctx[root]
	if !ok {
		return nil, &UnknownIdentifierError{Name: root}
	}
	for _, seg := range n.path[1:] {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil
		}
		v, ok = m[seg]
		if !ok {
			return nil, nil
		}
	}
	return v, nil
}

func (n *unaryNode) eval(ctx map[string]any) (any, error) {
	v, err := n.x.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

func (n *binaryNode) eval(ctx map[string]any) (any, error) {
	// Logical operators short-circuit.
	switch n.op {
	case tokAnd:
		l, err := n.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		if !Truthy(l) {
			return false, nil
		}
		r, err := n.r.eval(ctx)
		if err != nil {
			return nil, err
		}
		return Truthy(r), nil
	case tokOr:
		l, err := n.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(l) {
			return true, nil
		}
		r, err := n.r.eval(ctx)
		if err != nil {
			return nil, err
		}
		return Truthy(r), nil
	}

	l, err := n.l.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.r.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokEq, tokStrictEq:
		return equals(l, r), nil
	case tokNeq, tokStrictNe:
		return !equals(l, r), nil
	case tokLt, tokLte, tokGt, tokGte:
		return order(n.op, l, r)
	default:
		return nil, fmt.Errorf("unsupported operator")
	}
}

// equals compares two values. Numbers compare numerically regardless of Go
// type; everything else compares by deep equality. The strict variants share
// this behavior because the language has no cross-type coercion to begin
// with.
func equals(l, r any) bool {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if lok && rok {
		return lf == rf
	}
	if lok != rok {
		return false
	}
	return reflect.DeepEqual(l, r)
}

func order(op tokenKind, l, r any) (any, error) {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if lok && rok {
		switch op {
		case tokLt:
			return lf < rf, nil
		case tokLte:
			return lf <= rf, nil
		case tokGt:
			return lf > rf, nil
		default:
			return lf >= rf, nil
		}
	}

	ls, lsok := l.(string)
	rs, rsok := r.(string)
	if lsok && rsok {
		switch op {
		case tokLt:
			return ls < rs, nil
		case tokLte:
			return ls <= rs, nil
		case tokGt:
			return ls > rs, nil
		default:
			return ls >= rs, nil
		}
	}

	return nil, fmt.Errorf("cannot order %T and %T", l, r)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

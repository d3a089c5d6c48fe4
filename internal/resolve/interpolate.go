package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches {{dotted.path}} markers. The path grammar
// mirrors entity ids plus dot segments.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_-]*(?:\.[a-zA-Z_][a-zA-Z0-9_-]*)*)\s*\}\}`)

// Interpolate substitutes {{dotted.path}} placeholders with context values.
// A path that does not resolve substitutes the empty string. A nil context
// leaves the template unchanged.
func Interpolate(template string, ctx map[string]any) string {
	if template == "" || ctx == nil || !strings.Contains(template, "{{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		path := placeholderPattern.FindStringSubmatch(match)[1]
		v, ok := lookupPath(ctx, strings.Split(path, "."))
		if !ok {
			return ""
		}
		return stringify(v)
	})
}

// lookupPath walks a dotted path through nested string-keyed maps.
func lookupPath(ctx map[string]any, path []string) (any, bool) {
	v, ok := ctx[path[0]]
	if !ok {
		return nil, false
	}
	for _, seg := range path[1:] {
		m, isMap := v.(map[string]any)
		if !isMap {
			return nil, false
		}
		if v, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return v, true
}

// stringify renders a context value into template output. Scalars render
// bare; composite values render as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

package resolve

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Coerce maps trimmed process output to a typed value: JSON when it starts
// with '{' or '[', a number when it matches a signed decimal, a bool for the
// exact strings "true"/"false", otherwise the raw string.
func Coerce(out string) any {
	if out == "" {
		return ""
	}

	if strings.HasPrefix(out, "{") || strings.HasPrefix(out, "[") {
		var v any
		if err := json.Unmarshal([]byte(out), &v); err == nil {
			return v
		}
		return out
	}

	if decimalPattern.MatchString(out) {
		if !strings.Contains(out, ".") {
			if n, err := strconv.Atoi(out); err == nil {
				return n
			}
		}
		if f, err := strconv.ParseFloat(out, 64); err == nil {
			return f
		}
	}

	switch out {
	case "true":
		return true
	case "false":
		return false
	}

	return out
}

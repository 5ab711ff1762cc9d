package metadata

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the value family of a free-text type label.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// KindOf classifies a type label such as "float", "float64", "List[str]"
// or "map[string]int".
func KindOf(typ string) Kind {
	t := strings.ToLower(strings.TrimSpace(typ))
	t = strings.TrimPrefix(t, "*")

	switch t {
	case "str", "string", "text":
		return KindString
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "integer":
		return KindInt
	case "float", "float32", "float64", "double", "number":
		return KindFloat
	case "bool", "boolean":
		return KindBool
	}

	switch {
	case strings.HasPrefix(t, "[]"), strings.HasPrefix(t, "list"),
		strings.HasPrefix(t, "tuple"), strings.HasPrefix(t, "sequence"):
		return KindList
	case strings.HasPrefix(t, "map["), strings.HasPrefix(t, "dict"),
		strings.HasPrefix(t, "mapping"):
		return KindMap
	}
	return KindUnknown
}

// IsNumeric reports whether the kind is int or float
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// NormalizeValue brings v into the canonical Go representation for the
// given type label: integers are int, reals are float64, lists are []any
// and mappings are map[string]any. Values that do not fit the kind are
// returned unchanged; validation decides whether they are acceptable.
func NormalizeValue(typ string, v any) any {
	return normalizeKind(KindOf(typ), v)
}

func normalizeKind(kind Kind, v any) any {
	v = normalizeScalar(v)

	switch kind {
	case KindInt:
		if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	case KindFloat:
		if i, ok := v.(int); ok {
			return float64(i)
		}
	}
	return v
}

func normalizeScalar(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.Atoi(s); err == nil {
				return i
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return s
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return float64(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeKind(KindUnknown, item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeKind(KindUnknown, item)
		}
		return out
	}
	return v
}

// ValuesEqual compares two values after normalization for the given type.
func ValuesEqual(typ string, a, b any) bool {
	return reflect.DeepEqual(NormalizeValue(typ, a), NormalizeValue(typ, b))
}

// ContainsValue reports whether v is one of options.
func ContainsValue(typ string, options []any, v any) bool {
	for _, o := range options {
		if ValuesEqual(typ, o, v) {
			return true
		}
	}
	return false
}

package codegen

import (
	"go/ast"
	"go/parser"
	"strings"
)

// dslTypes maps DSL type labels (lower case) to Go types
var dslTypes = map[string]string{
	"str":      "string",
	"string":   "string",
	"text":     "string",
	"int":      "int",
	"integer":  "int",
	"float":    "float64",
	"double":   "float64",
	"number":   "float64",
	"bool":     "bool",
	"boolean":  "bool",
	"list":     "[]any",
	"tuple":    "[]any",
	"sequence": "[]any",
	"dict":     "map[string]any",
	"mapping":  "map[string]any",
	"any":      "any",
	"object":   "any",
	"none":     "any",
}

// GoType maps a DSL type label to a Go type expression. Labels that are
// already Go type expressions are kept; anything else becomes any.
func GoType(label string) string {
	t := strings.TrimSpace(label)
	if t == "" {
		return "any"
	}
	lower := strings.ToLower(t)
	if goType, ok := dslTypes[lower]; ok {
		return goType
	}

	if head, args, ok := generic(t); ok {
		switch strings.ToLower(head) {
		case "list", "sequence", "set":
			if len(args) == 1 {
				return "[]" + GoType(args[0])
			}
		case "tuple":
			return "[]any"
		case "dict", "mapping":
			if len(args) == 2 {
				return "map[" + GoType(args[0]) + "]" + GoType(args[1])
			}
			return "map[string]any"
		case "optional":
			if len(args) == 1 {
				return "*" + GoType(args[0])
			}
		}
	}

	if isTypeExpr(t) {
		return t
	}
	return "any"
}

// generic splits "head[a, b]" into its head and top-level arguments.
func generic(t string) (string, []string, bool) {
	open := strings.Index(t, "[")
	if open <= 0 || !strings.HasSuffix(t, "]") {
		return "", nil, false
	}
	head := t[:open]
	inner := t[open+1 : len(t)-1]

	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(inner[start:]); rest != "" {
		args = append(args, rest)
	}
	return head, args, true
}

func isTypeExpr(t string) bool {
	expr, err := parser.ParseExpr(t)
	if err != nil {
		return false
	}
	return typeNode(expr)
}

func typeNode(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return typeNode(e.X)
	case *ast.ParenExpr:
		return typeNode(e.X)
	case *ast.ArrayType:
		return typeNode(e.Elt)
	case *ast.MapType:
		return typeNode(e.Key) && typeNode(e.Value)
	case *ast.ChanType:
		return typeNode(e.Value)
	case *ast.IndexExpr:
		return typeNode(e.X) && typeNode(e.Index)
	case *ast.IndexListExpr:
		for _, idx := range e.Indices {
			if !typeNode(idx) {
				return false
			}
		}
		return typeNode(e.X)
	case *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	}
	return false
}

// zeroValue returns the Go zero value literal for a Go type expression.
func zeroValue(goType string) string {
	switch goType {
	case "string":
		return `""`
	case "bool":
		return "false"
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "byte", "rune":
		return "0"
	case "any", "error":
		return "nil"
	}
	switch {
	case strings.HasPrefix(goType, "[]"), strings.HasPrefix(goType, "map["),
		strings.HasPrefix(goType, "*"), strings.HasPrefix(goType, "func"),
		strings.HasPrefix(goType, "chan"), strings.HasPrefix(goType, "interface"):
		return "nil"
	case strings.HasPrefix(goType, "["):
		return goType + "{}"
	}
	return "*new(" + goType + ")"
}

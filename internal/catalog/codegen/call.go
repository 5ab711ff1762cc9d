package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/algodoc/algodoc/internal/catalog/docstring"
	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// GenerateCall renders a statement that calls the algorithm. Arguments
// follow the signature order: inputs take the variable names given in
// args (or their own name), parameters take the Go literal of their
// argument, default or zero value. With an empty outputVar the bare call
// expression is returned.
func GenerateCall(m metadata.Algorithm, args map[string]any, outputVar string) (string, error) {
	m, err := metadata.New(m)
	if err != nil {
		return "", err
	}

	known := make(map[string]bool, len(m.Inputs)+len(m.Parameters))
	callArgs := make([]string, 0, len(m.Inputs)+len(m.Parameters))
	for _, in := range m.Inputs {
		known[in.Name] = true
		name := in.Name
		if v, ok := args[in.Name]; ok {
			s, isString := v.(string)
			if !isString || !metadata.IsIdentifier(s) {
				return "", catalogerrors.NewInvalidMetadata("invalid_argument",
					"input %q must name a variable, got %v", in.Name, v).WithSymbol(m.ID)
			}
			name = s
		}
		callArgs = append(callArgs, name)
	}
	for _, p := range m.Parameters {
		known[p.Name] = true
		goType := GoType(p.Type)
		v, ok := args[p.Name]
		if ok {
			v = metadata.NormalizeValue(p.Type, v)
		} else {
			v = p.Default
		}
		if v == nil {
			callArgs = append(callArgs, zeroValue(goType))
			continue
		}
		if err := metadata.CheckValue(p.Type, v); err != nil {
			return "", catalogerrors.NewInvalidMetadata("invalid_argument",
				"argument %q: %v", p.Name, err).WithSymbol(m.ID)
		}
		callArgs = append(callArgs, GoLiteral(goType, v))
	}

	var unknown []string
	for name := range args {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", catalogerrors.NewInvalidMetadata("unknown_argument",
			"%s has no argument named %s", m.ID, strings.Join(unknown, ", ")).WithSymbol(m.ID)
	}

	call := fmt.Sprintf("%s(%s)", m.ID, strings.Join(callArgs, ", "))
	if outputVar == "" || len(m.Outputs) == 0 {
		return call, nil
	}
	if !metadata.IsIdentifier(outputVar) {
		return "", catalogerrors.NewGeneration(m.ID, fmt.Errorf("output variable %q is not an identifier", outputVar))
	}

	vars := []string{outputVar}
	for _, out := range m.Outputs[1:] {
		vars = append(vars, outputVar+"_"+out.Name)
	}
	return fmt.Sprintf("%s := %s", strings.Join(vars, ", "), call), nil
}

// GoLiteral renders v as a Go expression for a value of goType. Floats
// keep a decimal point so untyped contexts still see a float. Slices and
// maps become composite literals with map keys sorted.
func GoLiteral(goType string, v any) string {
	switch t := v.(type) {
	case nil:
		return zeroValue(goType)
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return docstring.FormatFloat(t)
	case []any:
		sliceType := goType
		if !strings.HasPrefix(sliceType, "[]") {
			sliceType = "[]any"
		}
		elem := strings.TrimPrefix(sliceType, "[]")
		items := make([]string, len(t))
		for i, item := range t {
			items[i] = GoLiteral(elem, item)
		}
		return sliceType + "{" + strings.Join(items, ", ") + "}"
	case map[string]any:
		mapType := goType
		if !strings.HasPrefix(mapType, "map[string]") {
			mapType = "map[string]any"
		}
		elem := strings.TrimPrefix(mapType, "map[string]")
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]string, len(keys))
		for i, k := range keys {
			entries[i] = strconv.Quote(k) + ": " + GoLiteral(elem, t[k])
		}
		return mapType + "{" + strings.Join(entries, ", ") + "}"
	}
	return fmt.Sprintf("%#v", v)
}

package scanner

import (
	"fmt"
	"strings"

	"github.com/algodoc/algodoc/internal/catalog/docstring"
	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// Assemble merges the parsed doc comment of fn with its signature. DSL
// fields win over extracted ones, which win over built-in defaults. The
// returned list holds the docstring warnings plus any raised while
// merging; the record itself is validated by metadata.New.
func Assemble(fn extractor.Function, fileImports []string, doc docstring.Document) (metadata.Algorithm, catalogerrors.List, error) {
	warnings := append(catalogerrors.List(nil), doc.Warnings...)
	if doc.Algorithm == nil {
		return metadata.Algorithm{}, warnings, catalogerrors.NewExtraction("no_algorithm_block",
			fmt.Sprintf("function %q has no Algorithm section", fn.Name)).WithSymbol(fn.Name)
	}
	block := doc.Algorithm

	a := metadata.Algorithm{
		ID:          fn.Name,
		Name:        block.Name,
		Category:    block.Category,
		Description: doc.Description,
		Prompt:      block.Prompt,
		NodeType:    block.NodeType,
		Imports:     fileImports,
	}
	if block.Imports != nil {
		a.Imports = block.Imports
	}
	if fn.Body != metadata.PlaceholderBody {
		a.Template = fn.Body
	}

	signature := make(map[string]bool, len(fn.Params))
	for _, sp := range fn.Params {
		signature[sp.Name] = true

		spec, declared := doc.Param(sp.Name)
		if declared && spec.Ignore {
			continue
		}
		typ := sp.Type
		if spec.Type != "" {
			typ = spec.Type
		}
		role := spec.Role
		if role == "" {
			role = metadata.InferRole(sp.Name, typ)
		}

		if role == metadata.RoleInput {
			a.Inputs = append(a.Inputs, metadata.Port{Name: sp.Name, Type: typ, Description: spec.Description})
			continue
		}

		p := metadata.Parameter{
			Name:        sp.Name,
			Type:        typ,
			Label:       spec.Label,
			Description: spec.Description,
			Widget:      spec.Widget,
			Priority:    spec.Priority,
			Role:        role,
			Min:         spec.Min,
			Max:         spec.Max,
			Step:        spec.Step,
		}
		if spec.Default != nil {
			v, err := spec.Default.Value(typ)
			if err != nil {
				warnings = append(warnings, mergeWarning("malformed_default", fn.Name, spec.Line,
					"parameter %q default dropped: %v", sp.Name, err))
			} else {
				p.Default = v
			}
		}
		for _, lit := range spec.Options {
			v, err := lit.Value(typ)
			if err != nil || v == nil {
				warnings = append(warnings, mergeWarning("malformed_option", fn.Name, spec.Line,
					"parameter %q option %q dropped", sp.Name, lit.Text))
				continue
			}
			p.Options = append(p.Options, v)
		}
		a.Parameters = append(a.Parameters, p)
	}

	for _, spec := range doc.Parameters {
		if !signature[spec.Name] {
			warnings = append(warnings, mergeWarning("unknown_parameter", fn.Name, spec.Line,
				"parameter %q is documented but not in the signature", spec.Name))
		}
	}

	if len(doc.Returns) > 0 {
		for _, r := range doc.Returns {
			a.Outputs = append(a.Outputs, metadata.Port{Name: r.Name, Type: r.Type, Description: r.Description})
		}
	} else {
		a.Outputs = outputsFromResults(fn.Results)
	}

	out, err := metadata.New(a)
	if err != nil {
		return metadata.Algorithm{}, warnings, err
	}
	return out, warnings, nil
}

// FromSource parses src and assembles the named function, or the first
// function when name is empty.
func FromSource(path, src, name string) (metadata.Algorithm, catalogerrors.List, error) {
	parsed, err := extractor.ParseSource(path, src)
	if err != nil {
		return metadata.Algorithm{}, nil, err
	}

	var fn extractor.Function
	switch {
	case name != "":
		if fn, err = parsed.Function(name); err != nil {
			return metadata.Algorithm{}, nil, err
		}
	case len(parsed.Functions) > 0:
		fn = parsed.Functions[0]
	default:
		return metadata.Algorithm{}, nil, catalogerrors.NewExtraction("no_function",
			"source has no function declaration").WithFile(path)
	}

	return Assemble(fn, parsed.Imports, docstring.Parse(fn.Doc))
}

func outputsFromResults(results []string) []metadata.Port {
	var out []metadata.Port
	for _, r := range results {
		if strings.TrimSpace(r) == "error" {
			continue
		}
		name := metadata.ResultPort
		if len(out) > 0 {
			name = fmt.Sprintf("%s_%d", metadata.ResultPort, len(out))
		}
		out = append(out, metadata.Port{Name: name, Type: r})
	}
	return out
}

func mergeWarning(typ, symbol string, line int, format string, args ...any) *catalogerrors.Error {
	return catalogerrors.NewMalformedDocstring(typ, line, format, args...).WithSymbol(symbol)
}

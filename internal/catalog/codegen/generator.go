// Package codegen renders algorithm metadata back into Go source. A
// generated function re-scans to the metadata it was generated from.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"strings"

	"go.uber.org/zap"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// DefaultPackage is the package clause used when none is configured
const DefaultPackage = "algorithms"

// Generator turns metadata into function source. It holds only
// configuration and is safe for concurrent use.
type Generator struct {
	pkg    string
	gofmt  bool
	logger *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithPackage sets the package clause of generated files
func WithPackage(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.pkg = name
		}
	}
}

// WithGofmt runs go/format over the generated file
func WithGofmt(enabled bool) Option {
	return func(g *Generator) {
		g.gofmt = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a generator
func New(opts ...Option) *Generator {
	g := &Generator{pkg: DefaultPackage, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders m as a complete Go file. The body is existingBody when
// it is non-blank, else the template of m, else a placeholder. Output is
// deterministic for fixed inputs.
func (g *Generator) Generate(m metadata.Algorithm, existingBody string) (string, error) {
	m, err := metadata.New(m)
	if err != nil {
		return "", err
	}

	imports := make([]metadata.Import, 0, len(m.Imports))
	for _, spec := range m.Imports {
		imp, err := metadata.ParseImport(spec)
		if err != nil {
			return "", catalogerrors.NewGeneration(m.ID, err)
		}
		imports = append(imports, imp)
	}

	body := metadata.CanonicalBody(existingBody)
	if body == "" {
		body = m.Template
	}
	if body == "" {
		body = metadata.PlaceholderBody
	}

	w := &writer{}
	w.line("package %s", g.pkg)
	switch len(imports) {
	case 0:
	case 1:
		w.line("")
		w.line("import %s", importSpec(imports[0]))
	default:
		w.line("")
		w.line("import (")
		for _, imp := range imports {
			w.line("\t%s", importSpec(imp))
		}
		w.line(")")
	}
	w.line("")
	for _, c := range renderDoc(m) {
		w.line("%s", c)
	}
	w.line("%s {", signature(m))
	for _, l := range strings.Split(body, "\n") {
		if l == "" {
			w.line("")
			continue
		}
		w.line("\t%s", l)
	}
	w.line("}")

	src := w.buf.Bytes()
	if _, err := parser.ParseFile(token.NewFileSet(), m.ID+".go", src, parser.ParseComments); err != nil {
		g.logger.Debug("generated source does not parse", zap.String("id", m.ID), zap.Error(err))
		return "", catalogerrors.NewGeneration(m.ID, err)
	}
	if g.gofmt {
		formatted, err := format.Source(src)
		if err != nil {
			return "", catalogerrors.NewGeneration(m.ID, err)
		}
		src = formatted
	}
	return string(src), nil
}

// Generate renders m with a default generator
func Generate(m metadata.Algorithm, existingBody string) (string, error) {
	return New().Generate(m, existingBody)
}

// signature builds "func id(inputs..., params...) results".
func signature(m metadata.Algorithm) string {
	args := make([]string, 0, len(m.Inputs)+len(m.Parameters))
	for _, in := range m.Inputs {
		args = append(args, in.Name+" "+GoType(in.Type))
	}
	for _, p := range m.Parameters {
		args = append(args, p.Name+" "+GoType(p.Type))
	}

	sig := fmt.Sprintf("func %s(%s)", m.ID, strings.Join(args, ", "))
	switch len(m.Outputs) {
	case 0:
		return sig
	case 1:
		return sig + " " + GoType(m.Outputs[0].Type)
	}
	results := make([]string, len(m.Outputs))
	for i, out := range m.Outputs {
		results[i] = GoType(out.Type)
	}
	return sig + " (" + strings.Join(results, ", ") + ")"
}

func importSpec(imp metadata.Import) string {
	if imp.Alias != "" {
		return imp.Alias + " " + fmt.Sprintf("%q", imp.Path)
	}
	return fmt.Sprintf("%q", imp.Path)
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) line(format string, args ...any) {
	if format == "" {
		w.buf.WriteString("\n")
		return
	}
	w.buf.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), " \t"))
	w.buf.WriteString("\n")
}

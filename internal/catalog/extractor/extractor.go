// Package extractor reads function signatures, imports and bodies from Go
// source text. Every function is pure and safe for concurrent use.
package extractor

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

const snippetPackage = "snippet"

// Param is one signature parameter.
type Param struct {
	Name string
	Type string
}

// Function is a top-level function declaration.
type Function struct {
	Name    string
	Doc     string
	Params  []Param
	Results []string
	// Body is the text between the braces, dedented.
	Body string
	Line int
	// Text is the full declaration including its doc comment.
	Text string
}

// ReturnType renders the result list: "" for none, the type for one and
// "(A, B)" for several.
func (f Function) ReturnType() string {
	switch len(f.Results) {
	case 0:
		return ""
	case 1:
		return f.Results[0]
	default:
		return "(" + strings.Join(f.Results, ", ") + ")"
	}
}

// Public reports whether the function is an algorithm candidate: not a
// method, not init or main, and not starting with an underscore.
func (f Function) Public() bool {
	return f.Name != "init" && f.Name != "main" && !strings.HasPrefix(f.Name, "_")
}

// Source is the parsed view of one file.
type Source struct {
	Path      string
	Package   string
	Imports   []string
	Functions []Function
}

// Function returns the named top-level function.
func (s *Source) Function(name string) (Function, error) {
	for _, fn := range s.Functions {
		if fn.Name == name {
			return fn, nil
		}
	}
	return Function{}, catalogerrors.NewExtraction("missing_function",
		fmt.Sprintf("function %q not found", name)).WithFile(s.Path).WithSymbol(name)
}

// PublicFunctions returns the names of the algorithm candidates in
// declaration order.
func (s *Source) PublicFunctions() []string {
	var out []string
	for _, fn := range s.Functions {
		if fn.Public() {
			out = append(out, fn.Name)
		}
	}
	return out
}

// ParseSource parses a file or a snippet. Snippets without a package
// clause are accepted.
func ParseSource(path, src string) (*Source, error) {
	file, fset, text, err := parse(path, src)
	if err != nil {
		return nil, err
	}

	out := &Source{
		Path:    path,
		Package: file.Name.Name,
		Imports: imports(file),
	}
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Body == nil {
			continue
		}
		out.Functions = append(out.Functions, function(fset, text, fn))
	}
	return out, nil
}

// ExtractParameters returns the parameters of the first function in src.
// Go has no default values, so Default is always nil.
func ExtractParameters(src string) ([]metadata.Parameter, error) {
	fn, err := firstFunction(src)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.Parameter, 0, len(fn.Params))
	for _, p := range fn.Params {
		out = append(out, metadata.Parameter{Name: p.Name, Type: p.Type})
	}
	return out, nil
}

// ExtractImports returns the top-level imports of src in canonical form.
func ExtractImports(src string) ([]string, error) {
	s, err := ParseSource("", src)
	if err != nil {
		return nil, err
	}
	return s.Imports, nil
}

// ExtractFunctionBody returns the dedented body of the first function.
func ExtractFunctionBody(src string) (string, error) {
	fn, err := firstFunction(src)
	if err != nil {
		return "", err
	}
	return fn.Body, nil
}

// ExtractReturnType returns the result type of the first function. The
// boolean is false when the function returns nothing.
func ExtractReturnType(src string) (string, bool, error) {
	fn, err := firstFunction(src)
	if err != nil {
		return "", false, err
	}
	rt := fn.ReturnType()
	return rt, rt != "", nil
}

func firstFunction(src string) (Function, error) {
	s, err := ParseSource("", src)
	if err != nil {
		return Function{}, err
	}
	if len(s.Functions) == 0 {
		return Function{}, catalogerrors.NewExtraction("no_function", "source has no function declaration")
	}
	return s.Functions[0], nil
}

func parse(path, src string) (*ast.File, *token.FileSet, string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err == nil {
		return file, fset, src, nil
	}
	if !hasPackageClause(src) {
		wrapped := "package " + snippetPackage + "\n" + src
		fset = token.NewFileSet()
		if file, werr := parser.ParseFile(fset, path, wrapped, parser.ParseComments); werr == nil {
			return file, fset, wrapped, nil
		}
	}
	return nil, nil, "", catalogerrors.NewExtraction("syntax_error", err.Error()).WithFile(path).WithCause(err)
}

func hasPackageClause(src string) bool {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", src, parser.PackageClauseOnly)
	return err == nil
}

func imports(file *ast.File) []string {
	var out []string
	seen := make(map[string]bool)
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := metadata.Import{Path: path}
		if spec.Name != nil {
			imp.Alias = spec.Name.Name
		}
		s := imp.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func function(fset *token.FileSet, src string, fn *ast.FuncDecl) Function {
	out := Function{
		Name: fn.Name.Name,
		Line: fset.Position(fn.Pos()).Line,
	}
	if fn.Doc != nil {
		out.Doc = fn.Doc.Text()
	}

	index := 0
	for _, field := range fn.Type.Params.List {
		typ := types.ExprString(field.Type)
		if len(field.Names) == 0 {
			out.Params = append(out.Params, Param{Name: fmt.Sprintf("arg%d", index), Type: typ})
			index++
			continue
		}
		for _, name := range field.Names {
			n := name.Name
			if n == "_" {
				n = fmt.Sprintf("arg%d", index)
			}
			out.Params = append(out.Params, Param{Name: n, Type: typ})
			index++
		}
	}

	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			typ := types.ExprString(field.Type)
			count := max(len(field.Names), 1)
			for i := 0; i < count; i++ {
				out.Results = append(out.Results, typ)
			}
		}
	}

	lbrace := fset.Position(fn.Body.Lbrace).Offset
	rbrace := fset.Position(fn.Body.Rbrace).Offset
	if lbrace < rbrace && rbrace <= len(src) {
		out.Body = metadata.CanonicalBody(src[lbrace+1 : rbrace])
	}

	start := fn.Pos()
	if fn.Doc != nil {
		start = fn.Doc.Pos()
	}
	from := fset.Position(start).Offset
	to := fset.Position(fn.End()).Offset
	if from <= to && to <= len(src) {
		out.Text = src[from:to]
	}
	return out
}

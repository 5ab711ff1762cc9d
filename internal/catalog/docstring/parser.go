// Package docstring reads the structured section DSL embedded in algorithm
// doc comments. Parsing never fails: malformed pieces are skipped and
// reported as warnings on the returned Document.
package docstring

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// AlgorithmBlock holds the keys of the Algorithm: section.
type AlgorithmBlock struct {
	Name     string
	Category string
	Prompt   string
	NodeType string
	// Imports is nil when the block declares no imports key.
	Imports []string
}

// ParamSpec is one item of the Parameters: section. Empty strings and nil
// pointers mean the docstring did not set the field.
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Label       string
	Widget      string
	Priority    metadata.Priority
	Role        string
	Default     *Literal
	Options     []Literal
	Min         *float64
	Max         *float64
	Step        *float64
	Ignore      bool
	Line        int
}

// ReturnSpec is one item of the Returns: section.
type ReturnSpec struct {
	Name        string
	Type        string
	Description string
}

// Document is the parsed form of a doc comment.
type Document struct {
	Description string
	// Algorithm is nil when the comment has no Algorithm: section.
	Algorithm  *AlgorithmBlock
	Parameters []ParamSpec
	Returns    []ReturnSpec
	Warnings   catalogerrors.List
}

// Param returns the ParamSpec for the named parameter
func (d *Document) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Parser turns doc comment text into Documents.
type Parser struct {
	logger *zap.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithLogger attaches a logger that receives every warning at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses doc with a parser that does not log.
func Parse(doc string) Document {
	return defaultParser.Parse(doc)
}

// HasAlgorithm reports whether doc contains an Algorithm: section.
func HasAlgorithm(doc string) bool {
	for _, n := range buildTree(lex(doc)) {
		if name, ok := metadata.HeaderName(n.text); ok {
			if section, known := metadata.CanonicalSection(name); known && section == metadata.SectionAlgorithm {
				return true
			}
		}
	}
	return false
}

type section struct {
	name   string // canonical name, or the raw header for unknown sections
	known  bool
	header line
	items  []*node
}

// Parse reads doc. The returned Document is always usable.
func (p *Parser) Parse(doc string) Document {
	st := &state{logger: p.logger}
	roots := buildTree(lex(doc))

	var description []string
	var sections []*section
	var current *section

	for _, n := range roots {
		if name, ok := metadata.HeaderName(n.text); ok {
			canonical, known := metadata.CanonicalSection(name)
			if known || current != nil {
				current = &section{name: canonical, known: known, header: n.line, items: n.children}
				if !known {
					current.name = name
				}
				sections = append(sections, current)
				continue
			}
		}
		if current == nil {
			description = append(description, n.text)
			for _, l := range n.descendants() {
				description = append(description, l.text)
			}
			continue
		}
		current.items = append(current.items, n)
	}

	out := Document{Description: metadata.CanonicalText(strings.Join(description, "\n"))}
	for _, s := range sections {
		if !s.known {
			st.warn("unknown_section", s.header.num, "unknown section %q ignored", s.name)
			continue
		}
		switch s.name {
		case metadata.SectionAlgorithm:
			if out.Algorithm != nil {
				st.warn("duplicate_section", s.header.num, "repeated Algorithm section merged into the first")
			} else {
				out.Algorithm = &AlgorithmBlock{}
			}
			st.parseAlgorithm(out.Algorithm, s.items)
		case metadata.SectionParameters:
			out.Parameters = append(out.Parameters, st.parseParameters(s.items)...)
		case metadata.SectionReturns:
			out.Returns = append(out.Returns, st.parseReturns(s.items)...)
		}
	}
	out.Warnings = st.warnings
	return out
}

type state struct {
	logger   *zap.Logger
	warnings catalogerrors.List
}

func (s *state) warn(typ string, lineNum int, format string, args ...any) {
	w := catalogerrors.NewMalformedDocstring(typ, lineNum, format, args...)
	s.warnings = append(s.warnings, w)
	s.logger.Debug("docstring warning",
		zap.String("type", typ),
		zap.Int("line", lineNum),
		zap.String("message", w.Message))
}

func (s *state) parseAlgorithm(block *AlgorithmBlock, items []*node) {
	for _, n := range items {
		key, value, ok := splitKey(n.text)
		if !ok {
			s.warn("malformed_algorithm_key", n.num, "expected 'key: value' in Algorithm section, got %q", n.text)
			continue
		}

		var target *string
		switch strings.ToLower(key) {
		case "name":
			target = &block.Name
		case "category":
			target = &block.Category
		case "prompt":
			target = &block.Prompt
		case "node_type", "nodetype", "node-type":
			target = &block.NodeType
		case "imports":
			s.parseImports(block, value, n)
			continue
		default:
			s.warn("unknown_algorithm_key", n.num, "unknown Algorithm key %q ignored", key)
			continue
		}

		parts := []string{unquoteText(value)}
		for _, l := range n.descendants() {
			parts = append(parts, l.text)
		}
		*target = metadata.CanonicalText(strings.Join(parts, "\n"))
	}
}

func (s *state) parseImports(block *AlgorithmBlock, value string, n *node) {
	if block.Imports == nil {
		block.Imports = []string{}
	}
	var raw []string
	if value != "" {
		raw = strings.Split(value, ",")
	}
	for _, l := range n.descendants() {
		raw = append(raw, strings.TrimSpace(strings.TrimPrefix(l.text, "-")))
	}
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		canonical, err := metadata.CanonicalImport(r)
		if err != nil {
			s.warn("malformed_import", n.num, "import %q: %v", r, err)
			continue
		}
		block.Imports = append(block.Imports, canonical)
	}
}

func (s *state) parseParameters(items []*node) []ParamSpec {
	var out []ParamSpec
	for _, n := range items {
		name, typ, desc, ok := splitItem(n.text)
		if !ok {
			s.warn("malformed_parameter", n.num, "cannot parse parameter line %q", n.text)
			continue
		}
		spec := ParamSpec{Name: name, Type: typ, Line: n.num}
		descLines := []string{desc}

		for _, c := range n.children {
			key, value, isOverride := metadata.OverrideLine(c.text)
			if !isOverride {
				descLines = append(descLines, c.text)
				for _, l := range c.descendants() {
					descLines = append(descLines, l.text)
				}
				continue
			}
			if key == "options" && value == "" {
				for _, l := range c.descendants() {
					spec.Options = append(spec.Options, ParseLiteral(strings.TrimSpace(strings.TrimPrefix(l.text, "-"))))
				}
				continue
			}
			s.applyOverride(&spec, key, value, c.num)
		}
		spec.Description = metadata.CanonicalText(strings.Join(descLines, "\n"))
		out = append(out, spec)
	}
	return out
}

func (s *state) applyOverride(spec *ParamSpec, key, value string, lineNum int) {
	switch key {
	case "label":
		spec.Label = unquoteText(value)
	case "widget":
		spec.Widget = unquoteText(value)
	case "role":
		spec.Role = unquoteText(value)
	case "priority":
		switch p := strings.ToLower(unquoteText(value)); p {
		case "critical", "normal", "advanced":
			spec.Priority = metadata.Priority(p)
		case "non-critical", "noncritical":
			spec.Priority = metadata.PriorityNormal
		default:
			s.warn("malformed_priority", lineNum, "parameter %q: unknown priority %q ignored", spec.Name, value)
		}
	case "options":
		spec.Options = SplitList(value)
	case "default":
		lit := ParseLiteral(value)
		spec.Default = &lit
	case "min", "max", "step":
		f, err := strconv.ParseFloat(unquoteText(value), 64)
		if err != nil || !floatPattern.MatchString(unquoteText(value)) {
			s.warn("malformed_number", lineNum, "parameter %q: %s value %q is not a number", spec.Name, key, value)
			return
		}
		switch key {
		case "min":
			spec.Min = &f
		case "max":
			spec.Max = &f
		default:
			spec.Step = &f
		}
	case "ignore":
		b, ok := parseBool(unquoteText(value))
		if !ok {
			s.warn("malformed_ignore", lineNum, "parameter %q: ignore value %q is not a boolean", spec.Name, value)
			return
		}
		spec.Ignore = b
	}
}

func (s *state) parseReturns(items []*node) []ReturnSpec {
	var out []ReturnSpec
	for _, n := range items {
		if strings.EqualFold(strings.TrimSuffix(n.text, "."), "none") {
			continue
		}

		var spec ReturnSpec
		if name, typ, desc, ok := splitItem(n.text); ok && typ != "" {
			spec = ReturnSpec{Name: name, Type: typ, Description: desc}
		} else {
			typ, desc := splitType(n.text)
			if typ == "" {
				s.warn("malformed_return", n.num, "cannot parse return line %q", n.text)
				continue
			}
			if strings.EqualFold(typ, "none") {
				continue
			}
			spec = ReturnSpec{Name: metadata.ResultPort, Type: typ, Description: desc}
		}

		descLines := []string{spec.Description}
		for _, l := range n.descendants() {
			descLines = append(descLines, l.text)
		}
		spec.Description = metadata.CanonicalText(strings.Join(descLines, "\n"))
		out = append(out, spec)
	}
	return out
}

// splitItem parses "name (type): description". The type and the
// description are optional; the colon may only be omitted when a type is
// given.
func splitItem(text string) (name, typ, desc string, ok bool) {
	end := 0
	for end < len(text) && isIdentByte(text[end], end == 0) {
		end++
	}
	if end == 0 {
		return "", "", "", false
	}
	name = text[:end]
	rest := strings.TrimLeft(text[end:], " ")

	hasType := false
	if strings.HasPrefix(rest, "(") {
		closeAt := matchParen(rest)
		if closeAt < 0 {
			return "", "", "", false
		}
		typ = strings.TrimSpace(rest[1:closeAt])
		rest = strings.TrimLeft(rest[closeAt+1:], " ")
		hasType = true
	}

	switch {
	case strings.HasPrefix(rest, ":"):
		desc = strings.TrimSpace(rest[1:])
	case rest == "" && hasType:
	default:
		return "", "", "", false
	}
	return name, typ, desc, true
}

// splitType splits "type: description" at the first colon outside
// brackets.
func splitType(text string) (typ, desc string) {
	depth := 0
	for i, r := range text {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
			}
		}
	}
	return strings.TrimSpace(text), ""
}

func matchParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitKey(text string) (key, value string, ok bool) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(text[:idx])
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(text[idx+1:]), true
}

func unquoteText(s string) string {
	lit := ParseLiteral(s)
	return lit.Text
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

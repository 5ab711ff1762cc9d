package codegen

import (
	"strconv"
	"strings"

	"github.com/algodoc/algodoc/internal/catalog/docstring"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// docBlock collects the lines of a doc comment before they are prefixed
// with "//". Section bodies are written as gofmt code blocks: a blank
// line after the header and a tab before every line.
type docBlock struct {
	lines []string
}

func (d *docBlock) text(line string) {
	d.lines = append(d.lines, line)
}

func (d *docBlock) blank() {
	if len(d.lines) > 0 && d.lines[len(d.lines)-1] != "" {
		d.lines = append(d.lines, "")
	}
}

func (d *docBlock) section(header string, body []string) {
	if len(body) == 0 {
		return
	}
	d.blank()
	d.text(header + ":")
	d.blank()
	for _, line := range body {
		d.text("\t" + line)
	}
}

func (d *docBlock) comment() []string {
	out := make([]string, len(d.lines))
	for i, line := range d.lines {
		if line == "" {
			out[i] = "//"
			continue
		}
		out[i] = "// " + line
		if strings.HasPrefix(line, "\t") {
			out[i] = "//" + line
		}
	}
	return out
}

// renderDoc produces the doc comment of a normalized algorithm.
func renderDoc(m metadata.Algorithm) []string {
	d := &docBlock{}
	if m.Description != "" {
		for _, line := range strings.Split(m.Description, "\n") {
			d.text(line)
		}
	}

	d.section("Algorithm", algorithmLines(m))

	var params []string
	for _, in := range m.Inputs {
		params = append(params, itemLines(in.Name, in.Type, in.Description)...)
		params = append(params, override("role", metadata.RoleInput))
	}
	for _, p := range m.Parameters {
		params = append(params, parameterLines(p)...)
	}
	d.section("Parameters", params)

	var returns []string
	for _, out := range m.Outputs {
		returns = append(returns, itemLines(out.Name, out.Type, out.Description)...)
	}
	d.section("Returns", returns)

	return d.comment()
}

func algorithmLines(m metadata.Algorithm) []string {
	lines := keyLines("name", m.Name)
	lines = append(lines, keyLines("category", m.Category)...)
	if m.Prompt != "" {
		lines = append(lines, keyLines("prompt", m.Prompt)...)
	}
	if m.NodeType != metadata.DefaultNodeType {
		lines = append(lines, keyLines("node_type", m.NodeType)...)
	}
	if len(m.Imports) > 0 {
		lines = append(lines, "imports: "+strings.Join(m.Imports, ", "))
	}
	return lines
}

// keyLines writes "key: value" with continuation lines indented below it.
// A first line that would be read back as a quoted literal is quoted.
func keyLines(key, value string) []string {
	parts := strings.Split(value, "\n")
	first := parts[0]
	if docstring.ParseLiteral(first).Quoted {
		first = strconv.Quote(first)
	}
	lines := []string{key + ": " + first}
	for _, cont := range parts[1:] {
		lines = append(lines, "  "+cont)
	}
	return lines
}

// itemLines writes "name (type): description" with continuation lines
// indented below it.
func itemLines(name, typ, description string) []string {
	parts := strings.Split(description, "\n")
	head := name + " (" + typ + "):"
	if parts[0] != "" {
		head += " " + parts[0]
	}
	lines := []string{head}
	for _, cont := range parts[1:] {
		lines = append(lines, "  "+cont)
	}
	return lines
}

func override(key, value string) string {
	return "  - " + key + ": " + value
}

// parameterLines emits the item line plus an override line for every field
// that differs from what a re-scan would infer.
func parameterLines(p metadata.Parameter) []string {
	lines := itemLines(p.Name, p.Type, p.Description)

	if p.Label != p.Name {
		lines = append(lines, override("label", quoteIfNeeded(p.Label)))
	}
	if p.Widget != metadata.InferWidget(p.Name, p.Type, p.Options) {
		lines = append(lines, override("widget", quoteIfNeeded(p.Widget)))
	}
	if p.Priority != metadata.PriorityNormal {
		lines = append(lines, override("priority", string(p.Priority)))
	}
	if p.Role != metadata.InferRole(p.Name, p.Type) {
		lines = append(lines, override("role", quoteIfNeeded(p.Role)))
	}
	if len(p.Options) > 0 {
		lines = append(lines, override("options", docstring.FormatOptions(p.Type, p.Options)))
	}
	if p.Default != nil {
		lines = append(lines, override("default", docstring.FormatLiteral(p.Type, p.Default)))
	}
	if p.Min != nil {
		lines = append(lines, override("min", docstring.FormatFloat(*p.Min)))
	}
	if p.Max != nil {
		lines = append(lines, override("max", docstring.FormatFloat(*p.Max)))
	}
	if p.Step != nil {
		lines = append(lines, override("step", docstring.FormatFloat(*p.Step)))
	}
	return lines
}

func quoteIfNeeded(s string) string {
	if docstring.ParseLiteral(s).Text != s {
		return strconv.Quote(s)
	}
	return s
}

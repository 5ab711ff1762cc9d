package metadata

import (
	"go/token"
	"strings"
	"unicode"
)

// Normalize returns a canonical deep copy of a: defaults are filled in,
// free text is reduced to the form the docstring DSL can carry and values
// are coerced to their declared types.
func (a Algorithm) Normalize() Algorithm {
	out := a.Clone()

	out.ID = strings.TrimSpace(out.ID)
	out.Name = CanonicalText(out.Name)
	if out.Name == "" {
		out.Name = out.ID
	}
	out.Category = CanonicalText(out.Category)
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	out.NodeType = CanonicalText(out.NodeType)
	if out.NodeType == "" {
		out.NodeType = DefaultNodeType
	}
	out.Description = CanonicalText(out.Description)
	out.Prompt = CanonicalText(out.Prompt)
	out.Template = CanonicalBody(out.Template)
	out.Imports = dedupeImports(out.Imports)

	if len(out.Parameters) == 0 {
		out.Parameters = nil
	}
	for i := range out.Parameters {
		out.Parameters[i] = out.Parameters[i].Normalize()
	}
	out.Inputs = normalizePorts(out.Inputs)
	out.Outputs = normalizePorts(out.Outputs)

	return out
}

// Normalize returns a canonical copy of the parameter
func (p Parameter) Normalize() Parameter {
	out := p.Clone()

	out.Name = strings.TrimSpace(out.Name)
	out.Type = CanonicalText(out.Type)
	if out.Type == "" {
		out.Type = DefaultType
	}
	out.Description = CanonicalText(out.Description)
	out.Label = CanonicalText(out.Label)
	if out.Label == "" {
		out.Label = out.Name
	}
	if out.Priority == "" {
		out.Priority = PriorityNormal
	}
	out.Role = strings.TrimSpace(out.Role)
	if out.Role == "" {
		out.Role = RoleParameter
	}

	out.Default = NormalizeValue(out.Type, out.Default)
	if len(out.Options) == 0 {
		out.Options = nil
	}
	for i, o := range out.Options {
		out.Options[i] = NormalizeValue(out.Type, o)
	}

	out.Widget = strings.TrimSpace(out.Widget)
	if out.Widget == "" {
		out.Widget = InferWidget(out.Name, out.Type, out.Options)
	}
	return out
}

func normalizePorts(ports []Port) []Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]Port, len(ports))
	for i, p := range ports {
		out[i] = Port{
			Name:        strings.TrimSpace(p.Name),
			Type:        CanonicalText(p.Type),
			Description: CanonicalText(p.Description),
		}
		if out[i].Type == "" {
			out[i].Type = DefaultType
		}
	}
	return out
}

// InferWidget picks a widget from the parameter name, type and options.
func InferWidget(name, typ string, options []any) string {
	lower := strings.ToLower(name)
	switch {
	case len(options) > 0:
		return WidgetSelect
	case strings.Contains(lower, "filepath"), strings.Contains(lower, "file_path"):
		return WidgetFileSelector
	case strings.Contains(lower, "column"):
		return WidgetColumnSelector
	case strings.Contains(lower, "color"):
		return WidgetColorPicker
	}

	switch kind := KindOf(typ); {
	case kind == KindBool:
		return WidgetCheckbox
	case kind.IsNumeric():
		return WidgetNumber
	}
	return WidgetText
}

// InferRole reports "input" for data-frame arguments and "parameter"
// for everything else.
func InferRole(name, typ string) string {
	if name == "df" || strings.HasPrefix(name, "df_") ||
		strings.Contains(strings.ToLower(typ), "dataframe") {
		return RoleInput
	}
	return RoleParameter
}

// CanonicalText trims every line and drops blank lines.
func CanonicalText(s string) string {
	if s == "" {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// CanonicalBody removes trailing whitespace from each line, trims leading
// and trailing blank lines and strips the indentation shared by every
// non-blank line.
func CanonicalBody(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	prefix := ""
	first := true
	for _, line := range lines {
		if line == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// IsIdentifier reports whether s is a valid Go identifier
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// IsValidID reports whether s can name a generated function that a later
// scan will pick up again.
func IsValidID(s string) bool {
	if !IsIdentifier(s) || token.IsKeyword(s) || strings.HasPrefix(s, "_") {
		return false
	}
	return s != "init" && s != "main"
}

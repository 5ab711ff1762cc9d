package docstring

import (
	"strings"
)

const tabWidth = 4

// line is one non-blank docstring line after dedent.
type line struct {
	text   string // content without leading whitespace
	indent int    // columns of leading whitespace after dedent
	num    int    // 1-based line number in the original text
}

// lex splits doc into lines, expands tabs, removes the common indentation
// of every line after the first and drops blank lines.
func lex(doc string) []line {
	raw := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	common := -1
	for i, r := range raw {
		if i == 0 {
			continue
		}
		expanded := expandTabs(r)
		if strings.TrimSpace(expanded) == "" {
			continue
		}
		indent := leadingSpaces(expanded)
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common < 0 {
		common = 0
	}

	var out []line
	for i, r := range raw {
		expanded := strings.TrimRight(expandTabs(r), " ")
		text := strings.TrimSpace(expanded)
		if text == "" {
			continue
		}
		indent := 0
		if i > 0 {
			indent = leadingSpaces(expanded) - common
		}
		out = append(out, line{text: text, indent: indent, num: i + 1})
	}
	return out
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a one-line (plus optional hint) human-readable message
func FormatError(e *Error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s[%s]", e.Severity, e.Code)
	if e.File != "" {
		fmt.Fprintf(&b, " %s", e.File)
		if e.Location.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Location.Line)
		}
	} else if e.Location.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Location.Line)
	}
	if e.Symbol != "" {
		fmt.Fprintf(&b, " (%s)", e.Symbol)
	}
	fmt.Fprintf(&b, ": %s", e.Message)

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Suggestion)
	}

	return b.String()
}

// FormatList returns all diagnostics separated by newlines, followed by a
// summary line.
func FormatList(list List) string {
	var b strings.Builder
	for i, err := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatError(err))
	}

	errs, warns := list.Count()
	fmt.Fprintf(&b, "\n%d error(s), %d warning(s)", errs, warns)
	return b.String()
}

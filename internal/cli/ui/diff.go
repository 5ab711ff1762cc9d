package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// LineDiff compares two texts line by line and returns one hunk per
// differing line, or "" when they are equal:
//
//	@@ -4 +4 @@
//	-old line
//	+new line
func LineDiff(before, after string) string {
	if before == after {
		return ""
	}

	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")

	var buf strings.Builder
	for i := range max(len(beforeLines), len(afterLines)) {
		var b, a string
		if i < len(beforeLines) {
			b = beforeLines[i]
		}
		if i < len(afterLines) {
			a = afterLines[i]
		}
		if b == a {
			continue
		}
		fmt.Fprintf(&buf, "@@ -%d +%d @@\n", i+1, i+1)
		if i < len(beforeLines) {
			fmt.Fprintf(&buf, "-%s\n", b)
		}
		if i < len(afterLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}

// WriteDiff writes diff text, coloring removed lines red, added lines
// green and hunk headers cyan.
func WriteDiff(w io.Writer, diff string, noColor bool) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	if noColor {
		red.DisableColor()
		green.DisableColor()
		cyan.DisableColor()
	}

	scanner := bufio.NewScanner(strings.NewReader(diff))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "@@"):
			cyan.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			red.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			green.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

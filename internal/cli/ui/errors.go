package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message is a structured, colored CLI message
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Detail      string
	Suggestions []string
	Help        []string
	NoColor     bool
}

// Format renders m.
//
// Example output:
//
//	✗ ALGORITHM NOT FOUND: filter_outlier
//	   No algorithm with id 'filter_outlier' in package algorithms.
//
//	   Did you mean: filter_outliers?
//
//	   → List algorithms: algodoc scan
func (m Message) Format() string {
	var b strings.Builder

	var head, body *color.Color
	var symbol string
	switch m.Level {
	case LevelWarning:
		head, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "!"
	case LevelInfo:
		head, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "i"
	default:
		head, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "✗"
	}
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	if m.NoColor {
		for _, c := range []*color.Color{head, body, yellow, cyan} {
			c.DisableColor()
		}
	}

	if m.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}
	if m.Detail != "" {
		body.Fprintf(&b, "   %s\n", m.Detail)
	}
	if len(m.Suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}
	if len(m.Help) > 0 {
		b.WriteString("\n")
		for _, h := range m.Help {
			cyan.Fprintf(&b, "   → %s\n", h)
		}
	}
	return b.String()
}

// Write writes the formatted message to w
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// NotFound builds the message for an unknown algorithm id
func NotFound(id, pkg string, known []string, noColor bool) Message {
	return Message{
		Level:       LevelError,
		Context:     "algorithm not found",
		Problem:     id,
		Detail:      fmt.Sprintf("No algorithm with id '%s' in package %s.", id, pkg),
		Suggestions: FindSimilar(id, known),
		Help:        []string{"List algorithms: algodoc scan"},
		NoColor:     noColor,
	}
}

// Diagnostic converts a catalog diagnostic into a message
func Diagnostic(e *catalogerrors.Error, noColor bool) Message {
	m := Message{
		Level:   LevelError,
		Context: string(e.Code),
		Problem: e.Message,
		NoColor: noColor,
	}
	if e.Severity == catalogerrors.SeverityWarning {
		m.Level = LevelWarning
	}
	var where []string
	if e.File != "" {
		loc := e.File
		if e.Location.Line > 0 {
			loc = fmt.Sprintf("%s:%d", e.File, e.Location.Line)
		}
		where = append(where, loc)
	}
	if e.Symbol != "" {
		where = append(where, e.Symbol)
	}
	m.Detail = strings.Join(where, " ")
	if e.Suggestion != "" {
		m.Help = []string{e.Suggestion}
	}
	return m
}

// Success returns a green check line
func Success(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, Success(message, noColor))
}

// Package errors provides structured diagnostics for the algorithm catalog.
// It defines error codes, categories and severities shared by the docstring
// parser, the source extractor, the library scanner and the code generator.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a unique diagnostic code
type ErrorCode string

// ErrorCategory represents the pipeline stage that produced a diagnostic
type ErrorCategory string

const (
	// CategoryDocstring represents DSL parsing problems (DOC100-199)
	CategoryDocstring ErrorCategory = "docstring"
	// CategoryExtraction represents source extraction problems (EXT200-299)
	CategoryExtraction ErrorCategory = "extraction"
	// CategoryScan represents library scanning problems (SCN300-399)
	CategoryScan ErrorCategory = "scan"
	// CategoryMetadata represents invariant violations (MDL400-499)
	CategoryMetadata ErrorCategory = "metadata"
	// CategoryCodeGen represents code generation problems (GEN500-599)
	CategoryCodeGen ErrorCategory = "codegen"
)

// ErrorSeverity indicates the severity level of a diagnostic
type ErrorSeverity string

const (
	// SeverityError indicates a failure surfaced to the caller
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a problem recovered locally
	SeverityWarning ErrorSeverity = "warning"
)

// Location is a position inside a docstring or a source file (1-indexed).
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column,omitempty"`
}

// Error is a structured catalog diagnostic.
type Error struct {
	// Code is the unique diagnostic code (e.g. "DOC100")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable sub-type (e.g. "unknown_section")
	Type string `json:"type"`
	// Category is the pipeline stage
	Category ErrorCategory `json:"category"`
	// Severity is the severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary message
	Message string `json:"message"`
	// Location is where the problem was found, when known
	Location Location `json:"location"`
	// File is the module path or file name (optional)
	File string `json:"file,omitempty"`
	// Symbol is the function or algorithm id involved (optional)
	Symbol string `json:"symbol,omitempty"`
	// Suggestion provides a hint for fixing the problem (optional)
	Suggestion string `json:"suggestion,omitempty"`

	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	return FormatError(e)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinel diagnostics by code, so callers can write
// errors.Is(err, ErrExtraction).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ToJSON returns the diagnostic as an indented JSON document
func (e *Error) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the file or module path
func (e *Error) WithFile(file string) *Error {
	e.File = file
	return e
}

// WithSymbol sets the function or algorithm id
func (e *Error) WithSymbol(symbol string) *Error {
	e.Symbol = symbol
	return e
}

// WithLine sets the line of the location
func (e *Error) WithLine(line int) *Error {
	e.Location.Line = line
	return e
}

// WithSuggestion sets a suggestion for fixing the problem
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithCause records the underlying error
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// List is a collection of diagnostics
type List []*Error

// Error implements the error interface
func (l List) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	return FormatList(l)
}

// HasErrors returns true if the list contains any error-severity entries
func (l List) HasErrors() bool {
	for _, err := range l {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns only the warning-severity entries
func (l List) Warnings() List {
	var out List
	for _, err := range l {
		if err.Severity == SeverityWarning {
			out = append(out, err)
		}
	}
	return out
}

// Count returns the number of errors and warnings
func (l List) Count() (errors, warnings int) {
	for _, err := range l {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// ToJSON returns all diagnostics as a JSON array
func (l List) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
) *Error {
	return &Error{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Newf is a convenience wrapper for ad hoc diagnostics of a known code.
func Newf(code ErrorCode, typ string, format string, args ...any) *Error {
	meta, ok := codeTable[code]
	if !ok {
		meta = codeMeta{category: CategoryScan, severity: SeverityError}
	}
	return newError(code, typ, meta.category, meta.severity, fmt.Sprintf(format, args...))
}

package errors

import "fmt"

const (
	// CodeMalformedDocstring marks a DSL section that could not be parsed
	CodeMalformedDocstring ErrorCode = "DOC100"
	// CodeExtraction marks source without a parseable function definition
	CodeExtraction ErrorCode = "EXT200"
	// CodeDuplicateIdentifier marks two algorithms sharing an id
	CodeDuplicateIdentifier ErrorCode = "SCN300"
	// CodePackageImport marks a package the discoverer could not enumerate
	CodePackageImport ErrorCode = "SCN301"
	// CodeInvalidMetadata marks a record that violates a model invariant
	CodeInvalidMetadata ErrorCode = "MDL400"
	// CodeGeneration marks generator output that is not valid source
	CodeGeneration ErrorCode = "GEN500"
)

type codeMeta struct {
	category ErrorCategory
	severity ErrorSeverity
}

var codeTable = map[ErrorCode]codeMeta{
	CodeMalformedDocstring:  {CategoryDocstring, SeverityWarning},
	CodeExtraction:          {CategoryExtraction, SeverityError},
	CodeDuplicateIdentifier: {CategoryScan, SeverityWarning},
	CodePackageImport:       {CategoryScan, SeverityError},
	CodeInvalidMetadata:     {CategoryMetadata, SeverityError},
	CodeGeneration:          {CategoryCodeGen, SeverityError},
}

// Sentinels for errors.Is matching. Only the code is compared.
var (
	ErrMalformedDocstring  = &Error{Code: CodeMalformedDocstring}
	ErrExtraction          = &Error{Code: CodeExtraction}
	ErrDuplicateIdentifier = &Error{Code: CodeDuplicateIdentifier}
	ErrPackageImport       = &Error{Code: CodePackageImport}
	ErrInvalidMetadata     = &Error{Code: CodeInvalidMetadata}
	ErrGeneration          = &Error{Code: CodeGeneration}
)

// NewMalformedDocstring creates a DOC100 warning
func NewMalformedDocstring(typ string, line int, format string, args ...any) *Error {
	return newError(
		CodeMalformedDocstring,
		typ,
		CategoryDocstring,
		SeverityWarning,
		fmt.Sprintf(format, args...),
	).WithLine(line)
}

// NewExtraction creates an EXT200 error
func NewExtraction(typ, reason string) *Error {
	return newError(
		CodeExtraction,
		typ,
		CategoryExtraction,
		SeverityError,
		fmt.Sprintf("Cannot extract function: %s", reason),
	)
}

// NewDuplicateIdentifier creates an SCN300 warning
func NewDuplicateIdentifier(id, previous, current string) *Error {
	return newError(
		CodeDuplicateIdentifier,
		"duplicate_identifier",
		CategoryScan,
		SeverityWarning,
		fmt.Sprintf("Algorithm id '%s' defined in %s is replaced by %s", id, previous, current),
	).WithSymbol(id).WithFile(current).
		WithSuggestion("Rename one of the functions; the last scanned definition wins")
}

// NewPackageImport creates an SCN301 error
func NewPackageImport(pkg string, cause error) *Error {
	return newError(
		CodePackageImport,
		"package_import_failure",
		CategoryScan,
		SeverityError,
		fmt.Sprintf("Cannot enumerate package '%s': %v", pkg, cause),
	).WithFile(pkg).WithCause(cause)
}

// NewInvalidMetadata creates an MDL400 error
func NewInvalidMetadata(typ string, format string, args ...any) *Error {
	return newError(
		CodeInvalidMetadata,
		typ,
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf(format, args...),
	)
}

// NewGeneration creates a GEN500 error
func NewGeneration(id string, cause error) *Error {
	return newError(
		CodeGeneration,
		"invalid_source",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Generated source for '%s' does not parse: %v", id, cause),
	).WithSymbol(id).WithCause(cause).
		WithSuggestion("Check the preserved body and the declared types")
}

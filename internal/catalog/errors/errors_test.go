package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	err := NewExtraction("no_function", "source has no function declaration")
	wrapped := fmt.Errorf("scan module: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrExtraction))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidMetadata))

	var diag *Error
	require.True(t, stderrors.As(wrapped, &diag))
	assert.Equal(t, CodeExtraction, diag.Code)
	assert.Equal(t, CategoryExtraction, diag.Category)
}

func TestUnwrapCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := NewPackageImport("algorithms", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPackageImport)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestFormatError(t *testing.T) {
	err := NewMalformedDocstring("malformed_parameter", 7, "cannot parse parameter line %q", "x (int")
	err.WithFile("anomaly/iqr.go").WithSymbol("iqr_anomaly")

	out := FormatError(err)
	assert.True(t, strings.HasPrefix(out, "warning[DOC100] anomaly/iqr.go:7 (iqr_anomaly)"))
	assert.Contains(t, out, `"x (int"`)
}

func TestListCounts(t *testing.T) {
	list := List{
		NewMalformedDocstring("unknown_section", 1, "unknown section"),
		NewInvalidMetadata("missing_id", "id is required"),
		NewDuplicateIdentifier("f", "a.go", "b.go"),
	}

	errs, warns := list.Count()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warns)
	assert.True(t, list.HasErrors())
	assert.Len(t, list.Warnings(), 2)
	assert.Contains(t, list.Error(), "1 error(s), 2 warning(s)")
}

func TestNewfUsesCodeTable(t *testing.T) {
	err := Newf(CodeGeneration, "invalid_source", "bad %s", "body")
	assert.Equal(t, CategoryCodeGen, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Equal(t, "bad body", err.Message)

	js, jerr := err.ToJSON()
	require.NoError(t, jerr)
	assert.Contains(t, js, `"code": "GEN500"`)
}

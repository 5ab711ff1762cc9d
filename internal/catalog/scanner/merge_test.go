package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

const thresholdSource = `package filters

import (
	"sort"

	st "example.com/stats"
)

// ThresholdFilter keeps rows above a cutoff.
//
// Algorithm:
//
//	name: Threshold Filter
//	category: data_operation
//	prompt: Filter rows by a numeric threshold
//	imports: sort, example.com/stats as st
//
// Parameters:
//
//	df (DataFrame): Rows to filter
//	threshold (float): Cutoff value
//	  - default: 0.5
//	  - min: 0
//	  - max: 1
//	  - step: 0.05
//	  - priority: critical
//	mode (str): Comparison
//	  - options: above, below
//	  - default: above
//	debug (bool): Internal switch
//	  - ignore: true
//	ghost (int): Not in the signature
//
// Returns:
//
//	kept (DataFrame): Rows that passed
//	dropped (DataFrame): Rows that failed
func ThresholdFilter(df DataFrame, threshold float64, mode string, debug bool) (DataFrame, DataFrame) {
	sort.Float64s(nil)
	return df, st.Empty(df)
}
`

func TestAssembleFollowsPrecedence(t *testing.T) {
	a, warnings, err := FromSource("filters/threshold.go", thresholdSource, "ThresholdFilter")
	require.NoError(t, err)

	assert.Equal(t, "ThresholdFilter", a.ID)
	assert.Equal(t, "Threshold Filter", a.Name)
	assert.Equal(t, "data_operation", a.Category)
	assert.Equal(t, "ThresholdFilter keeps rows above a cutoff.", a.Description)
	assert.Equal(t, "Filter rows by a numeric threshold", a.Prompt)
	assert.Equal(t, metadata.DefaultNodeType, a.NodeType)
	assert.Equal(t, []string{"sort", "example.com/stats as st"}, a.Imports)

	assert.Equal(t, []metadata.Port{{Name: "df", Type: "DataFrame", Description: "Rows to filter"}}, a.Inputs)
	assert.Equal(t, []metadata.Port{
		{Name: "kept", Type: "DataFrame", Description: "Rows that passed"},
		{Name: "dropped", Type: "DataFrame", Description: "Rows that failed"},
	}, a.Outputs)

	require.Len(t, a.Parameters, 2)
	threshold := a.Parameters[0]
	assert.Equal(t, "float", threshold.Type)
	assert.Equal(t, 0.5, threshold.Default)
	assert.Equal(t, metadata.Float(0), threshold.Min)
	assert.Equal(t, metadata.Float(1), threshold.Max)
	assert.Equal(t, metadata.Float(0.05), threshold.Step)
	assert.Equal(t, metadata.PriorityCritical, threshold.Priority)

	mode := a.Parameters[1]
	assert.Equal(t, []any{"above", "below"}, mode.Options)
	assert.Equal(t, "above", mode.Default)
	assert.Equal(t, metadata.WidgetSelect, mode.Widget)

	_, ok := a.Parameter("debug")
	assert.False(t, ok)

	require.Len(t, warnings, 1)
	assert.Equal(t, "unknown_parameter", warnings[0].Type)
	assert.Equal(t, "ThresholdFilter", warnings[0].Symbol)
}

func TestAssembleFallsBackToSignature(t *testing.T) {
	src := `package p

// Scale multiplies a column.
//
// Algorithm:
//
//	name: Scale
func Scale(df DataFrame, factor float64, label string) (DataFrame, error) {
	return df, nil
}
`
	a, warnings, err := FromSource("p/scale.go", src, "")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, metadata.DefaultCategory, a.Category)
	assert.Nil(t, a.Imports)
	require.Len(t, a.Parameters, 2)
	assert.Equal(t, "float64", a.Parameters[0].Type)
	assert.Nil(t, a.Parameters[0].Default)
	assert.Equal(t, "factor", a.Parameters[0].Label)
	assert.Equal(t, metadata.WidgetNumber, a.Parameters[0].Widget)
	assert.Equal(t, metadata.WidgetText, a.Parameters[1].Widget)
	assert.Equal(t, []metadata.Port{{Name: "result", Type: "DataFrame"}}, a.Outputs)
}

func TestAssembleNamesMultipleResults(t *testing.T) {
	src := `package p

// Split divides rows.
//
// Algorithm:
//
//	name: Split
func Split(df DataFrame) (DataFrame, DataFrame, error) {
	return df, df, nil
}
`
	a, _, err := FromSource("p/split.go", src, "Split")
	require.NoError(t, err)
	assert.Equal(t, []metadata.Port{
		{Name: "result", Type: "DataFrame"},
		{Name: "result_1", Type: "DataFrame"},
	}, a.Outputs)
}

func TestAssemblePlaceholderBodyIsEmptyTemplate(t *testing.T) {
	src := `package p

// Todo is not written yet.
//
// Algorithm:
//
//	name: Todo
func Todo() {
	` + metadata.PlaceholderBody + `
}
`
	a, _, err := FromSource("p/todo.go", src, "Todo")
	require.NoError(t, err)
	assert.Empty(t, a.Template)
}

func TestAssembleDropsMalformedDefault(t *testing.T) {
	src := `package p

// Window picks a window size.
//
// Algorithm:
//
//	name: Window
//
// Parameters:
//
//	size (int): Rows per window
//	  - default: lots
func Window(size int) {}
`
	a, warnings, err := FromSource("p/window.go", src, "Window")
	require.NoError(t, err)
	assert.Nil(t, a.Parameters[0].Default)
	require.Len(t, warnings, 1)
	assert.Equal(t, "malformed_default", warnings[0].Type)
}

func TestAssembleRequiresAlgorithmBlock(t *testing.T) {
	src := `package p

// Plain is an ordinary helper.
func Plain() {}
`
	_, _, err := FromSource("p/plain.go", src, "Plain")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrExtraction)
}

func TestFromSourceReportsMissingFunction(t *testing.T) {
	_, _, err := FromSource("filters/threshold.go", thresholdSource, "Nope")
	assert.ErrorIs(t, err, catalogerrors.ErrExtraction)
}

package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
)

func filterOutliers() metadata.Algorithm {
	return metadata.Algorithm{
		ID:          "filter_outliers",
		Name:        "Filter Outliers",
		Category:    "anomaly_detection",
		Description: "Remove rows whose value lies far from the bulk of the data.",
		Prompt:      "Filter outliers from {VAR_NAME}",
		Imports:     []string{"math", "sort"},
		Inputs:      []metadata.Port{{Name: "df", Type: "DataFrame", Description: "Input table"}},
		Parameters: []metadata.Parameter{
			{
				Name:        "method",
				Type:        "str",
				Default:     "iqr",
				Description: "Detection method",
				Options:     []any{"iqr", "zscore", "mad"},
			},
			{
				Name:        "threshold",
				Type:        "float",
				Default:     3,
				Description: "Cut-off multiplier",
				Widget:      metadata.WidgetSlider,
				Min:         metadata.Float(1),
				Max:         metadata.Float(5),
			},
		},
		Outputs: []metadata.Port{{Name: "result", Type: "DataFrame"}},
	}
}

const filterOutliersSource = `package algorithms

import (
	"math"
	"sort"
)

// Remove rows whose value lies far from the bulk of the data.
//
// Algorithm:
//
//	name: Filter Outliers
//	category: anomaly_detection
//	prompt: Filter outliers from {VAR_NAME}
//	imports: math, sort
//
// Parameters:
//
//	df (DataFrame): Input table
//	  - role: input
//	method (str): Detection method
//	  - options: iqr, zscore, mad
//	  - default: iqr
//	threshold (float): Cut-off multiplier
//	  - widget: slider
//	  - default: 3.0
//	  - min: 1.0
//	  - max: 5.0
//
// Returns:
//
//	result (DataFrame):
func filter_outliers(df DataFrame, method string, threshold float64) DataFrame {
	panic("algodoc: not implemented")
}
`

func TestGenerateLayout(t *testing.T) {
	src, err := Generate(filterOutliers(), "")
	require.NoError(t, err)
	assert.Equal(t, filterOutliersSource, src)
}

func TestGenerateFilterOutliersRoundTrip(t *testing.T) {
	src, err := Generate(filterOutliers(), "")
	require.NoError(t, err)

	got, warnings, err := scanner.FromSource("filter_outliers.go", src, "filter_outliers")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "filter_outliers", got.ID)
	require.Len(t, got.Parameters, 2)
	method, threshold := got.Parameters[0], got.Parameters[1]
	assert.Equal(t, []any{"iqr", "zscore", "mad"}, method.Options)
	assert.Equal(t, "iqr", method.Default)
	assert.Equal(t, metadata.WidgetSlider, threshold.Widget)
	assert.Equal(t, metadata.Float(1.0), threshold.Min)
	assert.Equal(t, metadata.Float(5.0), threshold.Max)
}

func roundTripCases() map[string]metadata.Algorithm {
	return map[string]metadata.Algorithm{
		"filter outliers": filterOutliers(),
		"minimal":         {ID: "noop"},
		"escaped values": {
			ID:       "split_columns",
			Template: "_ = strings.Split(col, sep)",
			Imports:  []string{"strings"},
			Parameters: []metadata.Parameter{
				{Name: "sep", Type: "str", Default: "a\tb", Options: []any{"a\tb", "c\rd", "nul\x00"}},
				{Name: "col", Type: "str", Default: "name\u2028"},
				{Name: "labels", Type: "dict", Default: map[string]any{"k": "v\tw"}},
			},
		},
		"rich": {
			ID:          "Resample",
			Name:        "'Resample'",
			Category:    "data_preprocessing",
			Description: "Resample a time series.\nNotes:\nGaps are forward filled.",
			Prompt:      "Resample {VAR_NAME}\nto a fixed frequency",
			NodeType:    "transform",
			Imports:     []string{"time", "example.com/frames as fr"},
			Template:    "if rule == \"\" {\n\treturn df, nil\n}\nreturn fr.Resample(df, rule), nil",
			Inputs: []metadata.Port{
				{Name: "df", Type: "fr.Frame", Description: "Series to resample\nindexed by time"},
				{Name: "reference", Type: "fr.Frame"},
			},
			Parameters: []metadata.Parameter{
				{Name: "rule", Type: "str", Default: "none", Label: "Frequency rule", Priority: metadata.PriorityCritical},
				{Name: "how", Type: "str", Options: []any{"mean, weighted", "sum", "last"}, Default: "sum", Widget: metadata.WidgetText},
				{Name: "df_window", Type: "int", Default: 4, Role: metadata.RoleParameter, Step: metadata.Float(2)},
				{Name: "columns", Type: "list[str]", Default: []any{"open", "close"}, Priority: metadata.PriorityAdvanced},
				{Name: "weights", Type: "dict", Default: map[string]any{"open": 0.5, "close": 1}},
				{Name: "fill", Type: "bool", Default: true, Role: "tuning"},
				{Name: "origin", Type: "any", Default: "10", Description: "Anchor point\nfor bins"},
				{Name: "tolerance", Type: "float64", Min: metadata.Float(-1.5), Max: metadata.Float(0)},
			},
			Outputs: []metadata.Port{
				{Name: "resampled", Type: "fr.Frame", Description: "Resampled data"},
				{Name: "err", Type: "error"},
			},
		},
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	for name, m := range roundTripCases() {
		t.Run(name, func(t *testing.T) {
			want, err := metadata.New(m)
			require.NoError(t, err)

			src, err := Generate(m, "")
			require.NoError(t, err)

			got, warnings, err := scanner.FromSource(want.ID+".go", src, want.ID)
			require.NoError(t, err, src)
			assert.Empty(t, warnings)
			assert.True(t, metadata.Equal(want, got), "%s\n%s", metadata.Diff(want, got), src)
		})
	}
}

func TestGenerateWithGofmtRoundTrips(t *testing.T) {
	g := New(WithGofmt(true), WithPackage("library"))
	for name, m := range roundTripCases() {
		t.Run(name, func(t *testing.T) {
			want, err := metadata.New(m)
			require.NoError(t, err)

			src, err := g.Generate(m, "")
			require.NoError(t, err)
			assert.Contains(t, src, "package library\n")

			got, _, err := scanner.FromSource(want.ID+".go", src, want.ID)
			require.NoError(t, err)
			assert.True(t, metadata.Equal(want, got), metadata.Diff(want, got))
		})
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	body := "x := 1\n_ = x\nreturn df"
	first, err := Generate(filterOutliers(), body)
	require.NoError(t, err)
	second, err := Generate(filterOutliers(), body)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, _, err := scanner.FromSource("f.go", first, "filter_outliers")
	require.NoError(t, err)
	regenerated, err := Generate(got, "")
	require.NoError(t, err)
	assert.Equal(t, first, regenerated)
}

func TestGeneratePrefersExistingBody(t *testing.T) {
	m := filterOutliers()
	m.Template = "return nil"

	src, err := Generate(m, "\n\t\treturn df\n")
	require.NoError(t, err)
	assert.Contains(t, src, "{\n\treturn df\n}\n")
	assert.NotContains(t, src, "return nil")

	src, err = Generate(m, "   ")
	require.NoError(t, err)
	assert.Contains(t, src, "{\n\treturn nil\n}\n")
}

func TestGenerateRejectsInvalidMetadata(t *testing.T) {
	m := filterOutliers()
	m.Parameters[0].Default = "median"

	_, err := Generate(m, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)

	_, err = Generate(metadata.Algorithm{ID: "func"}, "")
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)
}

func TestGenerateReportsUnparsableBody(t *testing.T) {
	_, err := Generate(filterOutliers(), "return df }{")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrGeneration)
}

func TestGoType(t *testing.T) {
	tests := map[string]string{
		"str":                 "string",
		"Float":               "float64",
		"list":                "[]any",
		"dict":                "map[string]any",
		"list[int]":           "[]int",
		"List[str]":           "[]string",
		"dict[str, float]":    "map[string]float64",
		"Optional[int]":       "*int",
		"tuple[int, str]":     "[]any",
		"DataFrame":           "DataFrame",
		"pd.DataFrame":        "pd.DataFrame",
		"[]float64":           "[]float64",
		"map[string][]string": "map[string][]string",
		"float | None":        "any",
		"":                    "any",
		"not a type":          "any",
	}
	for label, want := range tests {
		assert.Equal(t, want, GoType(label), label)
	}
}

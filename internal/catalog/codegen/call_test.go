package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

func TestGenerateCall(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		outputVar string
		want      string
	}{
		{
			name: "defaults",
			want: "filter_outliers(df, \"iqr\", 3.0)",
		},
		{
			name:      "arguments and output",
			args:      map[string]any{"df": "sales", "method": "mad", "threshold": 2.5},
			outputVar: "clean",
			want:      "clean := filter_outliers(sales, \"mad\", 2.5)",
		},
		{
			name: "json numbers are coerced",
			args: map[string]any{"threshold": 4},
			want: "filter_outliers(df, \"iqr\", 4.0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateCall(filterOutliers(), tt.args, tt.outputVar)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCallZeroValuesAndComposites(t *testing.T) {
	m := metadata.Algorithm{
		ID: "summarize",
		Parameters: []metadata.Parameter{
			{Name: "label", Type: "str"},
			{Name: "count", Type: "int"},
			{Name: "columns", Type: "list[str]", Default: []any{"a", "b"}},
			{Name: "weights", Type: "dict[str, float]", Default: map[string]any{"z": 1.5, "a": 2.0}},
			{Name: "extra", Type: "Options"},
		},
		Outputs: []metadata.Port{{Name: "table", Type: "Table"}, {Name: "stats", Type: "Stats"}},
	}

	got, err := GenerateCall(m, nil, "out")
	require.NoError(t, err)
	assert.Equal(t,
		`out, out_stats := summarize("", 0, []string{"a", "b"}, map[string]float64{"a": 2.0, "z": 1.5}, *new(Options))`,
		got)
}

func TestGenerateCallKeepsFloatsForUntypedParameters(t *testing.T) {
	m := metadata.Algorithm{
		ID: "shift",
		Parameters: []metadata.Parameter{
			{Name: "offset", Type: "any", Default: 3.0},
			{Name: "count", Type: "any", Default: 3},
		},
	}

	got, err := GenerateCall(m, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "shift(3.0, 3)", got)

	got, err = GenerateCall(m, map[string]any{"offset": 1e-7}, "")
	require.NoError(t, err)
	assert.Equal(t, "shift(0.0000001, 3)", got)
}

func TestGenerateCallRejectsBadArguments(t *testing.T) {
	_, err := GenerateCall(filterOutliers(), map[string]any{"nope": 1, "also": 2}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)
	assert.Contains(t, err.Error(), "also, nope")

	_, err = GenerateCall(filterOutliers(), map[string]any{"df": 42}, "")
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)

	_, err = GenerateCall(filterOutliers(), map[string]any{"method": 5}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)
	assert.Contains(t, err.Error(), `"method"`)

	_, err = GenerateCall(filterOutliers(), map[string]any{"threshold": "high"}, "")
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)

	_, err = GenerateCall(filterOutliers(), nil, "not valid")
	assert.ErrorIs(t, err, catalogerrors.ErrGeneration)
}

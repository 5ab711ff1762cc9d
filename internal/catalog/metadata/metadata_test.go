package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
)

func filterOutliers() Algorithm {
	return Algorithm{
		ID:          "filter_outliers",
		Name:        "Filter Outliers",
		Category:    "anomaly_detection",
		Description: "Remove rows whose value lies far from the bulk of the data.",
		Prompt:      "Filter outliers from {VAR_NAME}",
		Imports:     []string{`"math"`, "sort", "math"},
		Inputs:      []Port{{Name: "df", Type: "DataFrame", Description: "Input table"}},
		Parameters: []Parameter{
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
				Widget:      WidgetSlider,
				Min:         Float(1),
				Max:         Float(5),
			},
		},
		Outputs: []Port{{Name: "result", Type: "DataFrame"}},
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	m, err := New(Algorithm{ID: "smooth"})
	require.NoError(t, err)

	assert.Equal(t, "smooth", m.Name)
	assert.Equal(t, DefaultCategory, m.Category)
	assert.Equal(t, DefaultNodeType, m.NodeType)
	assert.Nil(t, m.Imports)
	assert.Nil(t, m.Parameters)
}

func TestNewNormalizesParameters(t *testing.T) {
	m, err := New(filterOutliers())
	require.NoError(t, err)

	assert.Equal(t, []string{"math", "sort"}, m.Imports)

	method := m.Parameters[0]
	assert.Equal(t, "method", method.Label)
	assert.Equal(t, WidgetSelect, method.Widget)
	assert.Equal(t, PriorityNormal, method.Priority)
	assert.Equal(t, RoleParameter, method.Role)

	threshold := m.Parameters[1]
	assert.Equal(t, 3.0, threshold.Default)
	assert.Equal(t, WidgetSlider, threshold.Widget)
}

func TestNewDoesNotAlias(t *testing.T) {
	src := filterOutliers()
	m, err := New(src)
	require.NoError(t, err)

	src.Parameters[0].Options[0] = "changed"
	*src.Parameters[1].Min = 99
	assert.Equal(t, "iqr", m.Parameters[0].Options[0])
	assert.Equal(t, 1.0, *m.Parameters[1].Min)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Algorithm)
		typ    string
	}{
		{"empty id", func(a *Algorithm) { a.ID = "" }, "struct_validation"},
		{"keyword id", func(a *Algorithm) { a.ID = "func" }, "invalid_id"},
		{"default outside options", func(a *Algorithm) { a.Parameters[0].Default = "median" }, "default_not_in_options"},
		{"select without options", func(a *Algorithm) {
			a.Parameters[1].Widget = WidgetSelect
		}, "select_without_options"},
		{"inverted range", func(a *Algorithm) { a.Parameters[1].Min = Float(9) }, "invalid_range"},
		{"bad priority", func(a *Algorithm) { a.Parameters[0].Priority = "urgent" }, "struct_validation"},
		{"input role", func(a *Algorithm) { a.Parameters[0].Role = RoleInput }, "input_role_parameter"},
		{"name clash", func(a *Algorithm) { a.Parameters[0].Name = "df" }, "duplicate_name"},
		{"duplicate output", func(a *Algorithm) {
			a.Outputs = append(a.Outputs, Port{Name: "result"})
		}, "duplicate_name"},
		{"wrong default kind", func(a *Algorithm) { a.Parameters[1].Default = "high" }, "invalid_default"},
		{"bad import", func(a *Algorithm) { a.Imports = []string{"fmt as 1x"} }, "invalid_import"},
		{"header in description", func(a *Algorithm) { a.Description = "Intro\nReturns:" }, "reserved_description_line"},
		{"override in description", func(a *Algorithm) {
			a.Parameters[0].Description = "Detection method\nwidget: text"
		}, "ambiguous_description"},
		{"tab in label", func(a *Algorithm) { a.Parameters[0].Label = "x\ty" }, "invalid_text"},
		{"carriage return in description", func(a *Algorithm) { a.Description = "a\rb" }, "invalid_text"},
		{"nul in prompt", func(a *Algorithm) { a.Prompt = "x\x00y" }, "invalid_text"},
		{"invalid utf-8 in name", func(a *Algorithm) { a.Name = "bad \xff" }, "invalid_text"},
		{"byte order mark in port", func(a *Algorithm) { a.Inputs[0].Description = "in\ufeffput" }, "invalid_text"},
		{"nul in template", func(a *Algorithm) { a.Template = "return df\x00" }, "invalid_text"},
		{"invalid utf-8 default", func(a *Algorithm) {
			a.Parameters[0].Options = nil
			a.Parameters[0].Default = "\xff"
		}, "invalid_default"},
		{"comma in import", func(a *Algorithm) { a.Imports = []string{"a,b"} }, "invalid_import"},
		{"space in import", func(a *Algorithm) { a.Imports = []string{`"a b"`} }, "invalid_import"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := filterOutliers()
			tt.mutate(&a)

			_, err := New(a)
			require.Error(t, err)
			assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)

			var diag *catalogerrors.Error
			require.ErrorAs(t, err, &diag)
			assert.Equal(t, tt.typ, diag.Type)
		})
	}
}

func TestDictRoundTrip(t *testing.T) {
	m, err := New(filterOutliers())
	require.NoError(t, err)

	d := m.ToDict()
	assert.ElementsMatch(t, []string{
		"id", "name", "category", "description", "prompt", "template",
		"imports", "parameters", "inputs", "outputs", "node_type",
	}, keys(d))

	back, err := FromDict(d)
	require.NoError(t, err)
	assert.Equal(t, m, back)
	assert.Empty(t, Diff(m, back))
}

func TestFromDictIgnoresUnknownKeysAndMissingLists(t *testing.T) {
	m, err := FromDict(map[string]any{
		"id":      "noop",
		"comment": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "noop", m.ID)
	assert.Nil(t, m.Parameters)
	assert.Nil(t, m.Outputs)
}

func TestFromDictInvalid(t *testing.T) {
	_, err := FromDict(map[string]any{
		"id": "pick",
		"parameters": []any{map[string]any{
			"name":    "mode",
			"type":    "str",
			"default": "c",
			"options": []any{"a", "b"},
		}},
	})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidMetadata)
}

func TestJSONRoundTrip(t *testing.T) {
	m, err := New(filterOutliers())
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, Diff(m, back))

	var decoded Algorithm
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, Equal(m, decoded))
}

func TestListFromJSON(t *testing.T) {
	m, err := New(filterOutliers())
	require.NoError(t, err)
	data, err := json.Marshal([]Algorithm{m, {ID: "noop"}})
	require.NoError(t, err)

	list, err := ListFromJSON(data)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, Equal(m, list[0]), Diff(m, list[0]))
	assert.Equal(t, DefaultCategory, list[1].Category)

	_, err = ListFromJSON([]byte(`[{"id":"ok"},{"id":"bad","parameters":"nope"}]`))
	require.Error(t, err)
	var diag *catalogerrors.Error
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "schema_violation", diag.Type)

	_, err = ListFromJSON([]byte(`[{"id":"ok"`))
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "malformed_json", diag.Type)
}

func TestFromJSONKeepsIntegers(t *testing.T) {
	m, err := FromJSON([]byte(`{"id":"bins","parameters":[{"name":"n","type":"int","default":10}]}`))
	require.NoError(t, err)
	assert.Equal(t, 10, m.Parameters[0].Default)
	assert.Equal(t, WidgetNumber, m.Parameters[0].Widget)
}

func TestFromJSONSchemaViolation(t *testing.T) {
	_, err := FromJSON([]byte(`{"id":"bins","parameters":[{"type":"int"}]}`))
	require.Error(t, err)

	var diag *catalogerrors.Error
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "schema_violation", diag.Type)
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fmt", "fmt"},
		{`"strings"`, "strings"},
		{`str "strings"`, "strings as str"},
		{`import m "math"`, "math as m"},
		{"github.com/x/y as y2", "github.com/x/y as y2"},
		{`_ "embed"`, "embed as _"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalImport(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseImport(`"unterminated`)
	assert.Error(t, err)
}

func TestCanonicalBody(t *testing.T) {
	in := "\n\t\tx := 1  \n\n\t\tif x > 0 {\n\t\t\treturn\n\t\t}\n\n"
	assert.Equal(t, "x := 1\n\nif x > 0 {\n\treturn\n}", CanonicalBody(in))
	assert.Equal(t, "", CanonicalBody("\n  \n"))
}

func TestInferWidget(t *testing.T) {
	assert.Equal(t, WidgetSelect, InferWidget("mode", "str", []any{"a"}))
	assert.Equal(t, WidgetFileSelector, InferWidget("output_filepath", "str", nil))
	assert.Equal(t, WidgetColumnSelector, InferWidget("value_column", "str", nil))
	assert.Equal(t, WidgetColorPicker, InferWidget("line_color", "str", nil))
	assert.Equal(t, WidgetCheckbox, InferWidget("verbose", "bool", nil))
	assert.Equal(t, WidgetNumber, InferWidget("window", "int", nil))
	assert.Equal(t, WidgetText, InferWidget("title", "str", nil))
}

func TestInferRole(t *testing.T) {
	assert.Equal(t, RoleInput, InferRole("df", "any"))
	assert.Equal(t, RoleInput, InferRole("df_left", "any"))
	assert.Equal(t, RoleInput, InferRole("frame", "*dataframe.DataFrame"))
	assert.Equal(t, RoleParameter, InferRole("dfx", "int"))
}

func TestCategoryLabels(t *testing.T) {
	labels := DefaultCategoryLabels().Merge(map[string]string{"eda": "EDA"})
	assert.Equal(t, "EDA", labels.Label("eda"))
	assert.Equal(t, "Anomaly Detection", labels.Label("anomaly_detection"))
	assert.Equal(t, "custom", labels.Label("custom"))
	assert.Equal(t, "Exploratory Analysis", DefaultCategoryLabels().Label("eda"))
}

func TestDiffReportsChanges(t *testing.T) {
	a := filterOutliers()
	b := filterOutliers()
	b.Parameters[1].Default = 2.5

	assert.False(t, Equal(a, b))
	assert.Contains(t, Diff(a, b), "Default")
}

func TestViews(t *testing.T) {
	m, err := New(filterOutliers())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id":     "filter_outliers",
		"name":   "Filter Outliers",
		"prompt": "Filter outliers from {VAR_NAME}",
	}, m.ToPromptDict())

	ports := m.ToPortDict()
	assert.Len(t, ports["inputs"], 1)
	assert.Len(t, ports["outputs"], 1)
}

func keys(d map[string]any) []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	return out
}

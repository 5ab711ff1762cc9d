package docs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

func testAlgorithms(t *testing.T) []metadata.Algorithm {
	t.Helper()

	iqr, err := metadata.New(metadata.Algorithm{
		ID:          "iqr_anomaly",
		Name:        "IQR Anomaly",
		Category:    "anomaly_detection",
		Description: "Flags outliers. Uses the interquartile range.",
		Prompt:      "Find the outliers in a column",
		Inputs:      []metadata.Port{{Name: "df", Type: "DataFrame", Description: "Input table"}},
		Parameters: []metadata.Parameter{{
			Name:        "multiplier",
			Type:        "float",
			Default:     1.5,
			Min:         metadata.Float(0.5),
			Max:         metadata.Float(5),
			Description: "Fence | multiplier",
		}},
		Outputs: []metadata.Port{{Name: "result", Type: "DataFrame"}},
	})
	require.NoError(t, err)

	plot, err := metadata.New(metadata.Algorithm{
		ID:       "line_plot",
		Name:     "Line Plot",
		Category: "plotting",
		Inputs:   []metadata.Port{{Name: "df", Type: "DataFrame"}},
	})
	require.NoError(t, err)

	return []metadata.Algorithm{iqr, plot}
}

func TestMarkdownGenerator_Generate(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen := NewMarkdownGenerator(fs, &Config{
		OutputDir: "/out",
		Labels:    metadata.DefaultCategoryLabels(),
	})

	paths, err := gen.Generate(testAlgorithms(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/README.md", "/out/iqr_anomaly.md", "/out/line_plot.md"}, paths)

	index, err := afero.ReadFile(fs, "/out/README.md")
	require.NoError(t, err)
	assert.Contains(t, string(index), "# Algorithm Catalog\n")
	assert.Contains(t, string(index), "**Algorithms:** 2")
	assert.Contains(t, string(index), "## Anomaly Detection\n\n- [IQR Anomaly](iqr_anomaly.md): Flags outliers.\n")
	assert.Contains(t, string(index), "## Data Plotting\n\n- [Line Plot](line_plot.md)\n")

	page, err := afero.ReadFile(fs, "/out/iqr_anomaly.md")
	require.NoError(t, err)
	content := string(page)
	assert.Contains(t, content, "# IQR Anomaly\n\n`iqr_anomaly` · Anomaly Detection\n")
	assert.Contains(t, content, "> Find the outliers in a column\n")
	assert.Contains(t, content, "## Inputs\n")
	assert.Contains(t, content, "| `df` | `DataFrame` | Input table |")
	assert.Contains(t, content, "| `multiplier` | `float` | `1.5` |")
	assert.Contains(t, content, "0.5 .. 5.0")
	assert.Contains(t, content, `Fence \| multiplier`)
	assert.Contains(t, content, "```go\nresult := iqr_anomaly(df, 1.5)\n```")
	assert.Contains(t, content, `"id": "iqr_anomaly"`)

	plot, err := afero.ReadFile(fs, "/out/line_plot.md")
	require.NoError(t, err)
	assert.NotContains(t, string(plot), "## Parameters")
	assert.NotContains(t, string(plot), "## Outputs")
}

func TestMarkdownGenerator_CustomTitle(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen := NewMarkdownGenerator(fs, &Config{
		Title:       "Team Library",
		Description: "Shared notebook algorithms.",
		OutputDir:   "docs",
	})

	_, err := gen.Generate(nil)
	require.NoError(t, err)

	index, err := afero.ReadFile(fs, "docs/README.md")
	require.NoError(t, err)
	assert.Equal(t, "# Team Library\n\nShared notebook algorithms.\n\n**Algorithms:** 0\n\n", string(index))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "-", cell(""))
	assert.Equal(t, `a \| b`, cell("a | b"))
	assert.Equal(t, "one<br>two", cell("one\ntwo"))
}

func TestBounds(t *testing.T) {
	assert.Equal(t, "-", bounds(metadata.Parameter{}))
	assert.Equal(t, "1.0 ..", bounds(metadata.Parameter{Min: metadata.Float(1)}))
	assert.Equal(t, ".. 10.0", bounds(metadata.Parameter{Max: metadata.Float(10)}))
	assert.Equal(t, "0.0 .. 1.0 step 0.1", bounds(metadata.Parameter{
		Min:  metadata.Float(0),
		Max:  metadata.Float(1),
		Step: metadata.Float(0.1),
	}))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Flags outliers.", firstSentence("Flags outliers. Uses IQR."))
	assert.Equal(t, "Single line", firstSentence("Single line\nmore"))
	assert.Equal(t, "", firstSentence(""))
}

package metadata

import "maps"

// CategoryLabels maps category keys to display labels.
type CategoryLabels map[string]string

var defaultCategoryLabels = CategoryLabels{
	"load_data":          "Input / Output",
	"data_operation":     "Data Operations",
	"data_preprocessing": "Data Preprocessing",
	"eda":                "Exploratory Analysis",
	"anomaly_detection":  "Anomaly Detection",
	"trend_plot":         "Trend Plots",
	"plotting":           "Data Plotting",
}

// DefaultCategoryLabels returns a copy of the built-in label table
func DefaultCategoryLabels() CategoryLabels {
	return maps.Clone(defaultCategoryLabels)
}

// Merge returns a copy of c with overrides applied on top.
func (c CategoryLabels) Merge(overrides map[string]string) CategoryLabels {
	out := maps.Clone(c)
	if out == nil {
		out = CategoryLabels{}
	}
	maps.Copy(out, overrides)
	return out
}

// Label returns the display label for category; unmapped categories are
// their own label.
func (c CategoryLabels) Label(category string) string {
	if label, ok := c[category]; ok && label != "" {
		return label
	}
	return category
}

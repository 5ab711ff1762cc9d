// Package docs renders a scanned algorithm catalog as Markdown reference
// pages.
package docs

import "github.com/algodoc/algodoc/internal/catalog/metadata"

// Config configures documentation output
type Config struct {
	// Title heads the index page
	Title string

	// Description is written under the title
	Description string

	// OutputDir is the directory receiving README.md and one page per
	// algorithm
	OutputDir string

	// Labels maps categories to section headings
	Labels metadata.CategoryLabels
}

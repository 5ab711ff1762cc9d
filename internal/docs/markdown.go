package docs

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	"github.com/algodoc/algodoc/internal/catalog/docstring"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

// MarkdownGenerator generates Markdown documentation
type MarkdownGenerator struct {
	config *Config
	fs     afero.Fs
}

// NewMarkdownGenerator creates a generator writing to fs
func NewMarkdownGenerator(fs afero.Fs, config *Config) *MarkdownGenerator {
	if config.Title == "" {
		config.Title = "Algorithm Catalog"
	}
	return &MarkdownGenerator{config: config, fs: fs}
}

// Generate writes README.md and one <id>.md page per algorithm. It returns
// the paths written, index first.
func (g *MarkdownGenerator) Generate(algorithms []metadata.Algorithm) ([]string, error) {
	if err := g.fs.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(algorithms)+1)
	path, err := g.write("README.md", g.index(algorithms))
	if err != nil {
		return nil, err
	}
	written = append(written, path)

	for _, alg := range algorithms {
		page, err := g.page(alg)
		if err != nil {
			return written, err
		}
		path, err := g.write(alg.ID+".md", page)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *MarkdownGenerator) write(name, content string) (string, error) {
	path := filepath.Join(g.config.OutputDir, name)
	if err := afero.WriteFile(g.fs, path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// index lists the algorithms under one heading per category label, in
// order of first appearance.
func (g *MarkdownGenerator) index(algorithms []metadata.Algorithm) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s\n\n", g.config.Title)
	if g.config.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", g.config.Description)
	}
	fmt.Fprintf(&buf, "**Algorithms:** %d\n\n", len(algorithms))

	var order []string
	groups := make(map[string][]metadata.Algorithm)
	for _, alg := range algorithms {
		label := g.config.Labels.Label(alg.Category)
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], alg)
	}

	for _, label := range order {
		fmt.Fprintf(&buf, "## %s\n\n", label)
		for _, alg := range groups[label] {
			fmt.Fprintf(&buf, "- [%s](%s.md)", alg.Name, alg.ID)
			if summary := firstSentence(alg.Description); summary != "" {
				fmt.Fprintf(&buf, ": %s", summary)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func (g *MarkdownGenerator) page(alg metadata.Algorithm) (string, error) {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s\n\n", alg.Name)
	fmt.Fprintf(&buf, "`%s` · %s", alg.ID, g.config.Labels.Label(alg.Category))
	if alg.NodeType != metadata.DefaultNodeType {
		fmt.Fprintf(&buf, " · %s", alg.NodeType)
	}
	buf.WriteString("\n\n")

	if alg.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", alg.Description)
	}
	if alg.Prompt != "" {
		fmt.Fprintf(&buf, "> %s\n\n", strings.ReplaceAll(alg.Prompt, "\n", "\n> "))
	}

	if len(alg.Inputs) > 0 {
		buf.WriteString("## Inputs\n\n")
		writePorts(&buf, alg.Inputs)
	}

	if len(alg.Parameters) > 0 {
		buf.WriteString("## Parameters\n\n")
		buf.WriteString("| Name | Type | Default | Widget | Range | Description |\n")
		buf.WriteString("|------|------|---------|--------|-------|-------------|\n")
		for _, p := range alg.Parameters {
			def := "-"
			if p.HasDefault() {
				def = "`" + docstring.FormatLiteral(p.Type, p.Default) + "`"
			}
			widget := p.Widget
			if len(p.Options) > 0 {
				widget = fmt.Sprintf("%s (%s)", widget, docstring.FormatOptions(p.Type, p.Options))
			}
			fmt.Fprintf(&buf, "| `%s` | `%s` | %s | %s | %s | %s |\n",
				p.Name, p.Type, def, cell(widget), bounds(p), cell(p.Description))
		}
		buf.WriteString("\n")
	}

	if len(alg.Outputs) > 0 {
		buf.WriteString("## Outputs\n\n")
		writePorts(&buf, alg.Outputs)
	}

	call, err := codegen.GenerateCall(alg, nil, metadata.ResultPort)
	if err != nil {
		return "", err
	}
	buf.WriteString("## Usage\n\n")
	fmt.Fprintf(&buf, "```go\n%s\n```\n\n", call)

	meta, err := json.MarshalIndent(alg, "", "  ")
	if err != nil {
		return "", err
	}
	buf.WriteString("### Metadata\n\n")
	fmt.Fprintf(&buf, "```json\n%s\n```\n", meta)

	return buf.String(), nil
}

func writePorts(buf *strings.Builder, ports []metadata.Port) {
	buf.WriteString("| Name | Type | Description |\n")
	buf.WriteString("|------|------|-------------|\n")
	for _, p := range ports {
		fmt.Fprintf(buf, "| `%s` | `%s` | %s |\n", p.Name, p.Type, cell(p.Description))
	}
	buf.WriteString("\n")
}

// bounds renders min, max and step as "lo .. hi step s".
func bounds(p metadata.Parameter) string {
	if p.Min == nil && p.Max == nil {
		return "-"
	}
	var lo, hi string
	if p.Min != nil {
		lo = docstring.FormatFloat(*p.Min)
	}
	if p.Max != nil {
		hi = docstring.FormatFloat(*p.Max)
	}
	r := strings.TrimSpace(lo + " .. " + hi)
	if p.Step != nil {
		r += " step " + docstring.FormatFloat(*p.Step)
	}
	return r
}

// cell escapes a table cell; empty cells render as a dash.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", "<br>")
}

func firstSentence(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/algodoc/algodoc/internal/catalog/docstring"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
	"github.com/algodoc/algodoc/internal/cli/ui"
)

func newShowCommand(a *app) *cobra.Command {
	var (
		prompt bool
		ports  bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the metadata of one algorithm",
		Example: `  algodoc show filter_outliers
  algodoc show filter_outliers --format yaml
  algodoc show filter_outliers --ports --format json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, alg, err := a.lookup(cmd, args[0])
			if err != nil {
				return err
			}

			var v any
			switch {
			case prompt:
				v = alg.ToPromptDict()
			case ports:
				v = alg.ToPortDict()
			default:
				v = alg.ToDict()
			}

			module, _ := snap.Module(alg.ID)
			return a.render(cmd.OutOrStdout(), v, func(w io.Writer) {
				a.showTable(w, alg, module)
			})
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "Only show id, name and prompt")
	cmd.Flags().BoolVar(&ports, "ports", false, "Only show input and output ports")

	return cmd
}

// lookup finds id in the configured package, reporting close matches when
// it is missing.
func (a *app) lookup(cmd *cobra.Command, id string) (*scanner.Snapshot, metadata.Algorithm, error) {
	pkg := a.cfg.Library.Package
	snap, err := a.scanner.Snapshot(cmd.Context(), pkg)
	if err != nil {
		return nil, metadata.Algorithm{}, err
	}

	alg, ok := a.scanner.GetAlgorithmByID(id)
	if !ok {
		known := make([]string, 0, snap.Len())
		for _, other := range a.scanner.GetAllAlgorithms() {
			known = append(known, other.ID)
		}
		ui.NotFound(id, snap.Package, known, a.flags.noColor).Write(cmd.ErrOrStderr())
		return nil, metadata.Algorithm{}, silentError{fmt.Errorf("algorithm %q not found", id)}
	}
	return snap, alg, nil
}

func (a *app) showTable(w io.Writer, alg metadata.Algorithm, module string) {
	noColor := a.flags.noColor

	ui.Header(w, alg.Name, noColor)
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("id", alg.ID)
	kv.AddRow("category", fmt.Sprintf("%s (%s)", alg.Category, a.scanner.Labels().Label(alg.Category)))
	kv.AddRow("node type", alg.NodeType)
	kv.AddRow("module", module)
	kv.AddRow("description", alg.Description)
	kv.AddRow("prompt", alg.Prompt)
	kv.AddRow("imports", strings.Join(alg.Imports, ", "))
	kv.Render()

	if len(alg.Inputs) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Inputs", noColor)
		table := ui.NewTable(w, noColor, "NAME", "TYPE", "DESCRIPTION")
		for _, p := range alg.Inputs {
			table.AddRow(p.Name, p.Type, p.Description)
		}
		table.Render()
	}

	if len(alg.Parameters) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Parameters", noColor)
		table := ui.NewTable(w, noColor, "NAME", "TYPE", "DEFAULT", "WIDGET", "PRIORITY", "ROLE", "LABEL")
		for _, p := range alg.Parameters {
			def := ""
			if p.HasDefault() {
				def = docstring.FormatLiteral(p.Type, p.Default)
			}
			widget := p.Widget
			if len(p.Options) > 0 {
				widget = fmt.Sprintf("%s [%s]", widget, docstring.FormatOptions(p.Type, p.Options))
			}
			table.AddRow(p.Name, p.Type, def, widget, string(p.Priority), p.Role, p.Label)
		}
		table.Render()
	}

	if len(alg.Outputs) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Outputs", noColor)
		table := ui.NewTable(w, noColor, "NAME", "TYPE", "DESCRIPTION")
		for _, p := range alg.Outputs {
			table.AddRow(p.Name, p.Type, p.Description)
		}
		table.Render()
	}
}

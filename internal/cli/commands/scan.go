package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/cli/ui"
)

func newScanCommand(a *app) *cobra.Command {
	var byLabel bool

	cmd := &cobra.Command{
		Use:   "scan [package]",
		Short: "List the algorithms of a package by category",
		Long: `Scan a package directory for functions whose doc comment carries an
"Algorithm:" block and list them grouped by category.

Functions that fail to parse are skipped with a warning; the rest of the
package is still listed.`,
		Example: `  # List the configured library package
  algodoc scan

  # Group by display label and print JSON
  algodoc scan algorithms --labels --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pkg := a.pkg(args)

			snap, err := a.scanner.Snapshot(ctx, pkg)
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()
			a.reportSkips(stderr, snap.Report)
			a.reportWarnings(stderr, snap.Report.Warnings)

			var groups map[string][]metadata.Algorithm
			if byLabel {
				groups, err = a.scanner.ScanWithLabels(ctx, pkg)
			} else {
				groups, err = a.scanner.Scan(ctx, pkg)
			}
			if err != nil {
				return err
			}
			categories, err := a.scanner.Categories(ctx, pkg)
			if err != nil {
				return err
			}

			order := make([]string, 0, len(categories))
			seen := make(map[string]bool)
			for _, c := range categories {
				if byLabel {
					c = a.scanner.Labels().Label(c)
				}
				if !seen[c] {
					seen[c] = true
					order = append(order, c)
				}
			}

			out := make(map[string][]map[string]any, len(groups))
			for group, algs := range groups {
				for _, alg := range algs {
					out[group] = append(out[group], alg.ToDict())
				}
			}

			return a.render(cmd.OutOrStdout(), out, func(w io.Writer) {
				for _, group := range order {
					algs := groups[group]
					ui.Header(w, fmt.Sprintf("%s (%d)", group, len(algs)), a.flags.noColor)

					table := ui.NewTable(w, a.flags.noColor, "ID", "NAME", "INPUTS", "PARAMETERS", "OUTPUTS")
					for _, alg := range algs {
						table.AddRow(alg.ID, alg.Name, portNames(alg.Inputs),
							parameterNames(alg.Parameters), portNames(alg.Outputs))
					}
					table.Render()
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s in %s, %s skipped (revision %s)\n",
					plural(snap.Len(), "algorithm"),
					plural(snap.Report.Modules, "module"),
					plural(len(snap.Report.Skipped), "function"),
					snap.Revision)
			})
		},
	}

	cmd.Flags().BoolVar(&byLabel, "labels", false, "Group by category display label")

	return cmd
}

func portNames(ports []metadata.Port) string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func parameterNames(params []metadata.Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

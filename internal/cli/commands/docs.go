package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/cli/ui"
	"github.com/algodoc/algodoc/internal/docs"
)

func newDocsCommand(a *app) *cobra.Command {
	var (
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "docs [package]",
		Short: "Write Markdown reference pages for a package",
		Long: `Generate a README.md index and one page per algorithm, with the
parameter table, a usage snippet and the metadata document.

Relative output directories are resolved against the project root.`,
		Example: `  algodoc docs
  algodoc docs algorithms --out site/reference --title "Notebook Algorithms"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := a.pkg(args)

			snap, err := a.scanner.Snapshot(cmd.Context(), pkg)
			if err != nil {
				return err
			}
			a.reportSkips(cmd.ErrOrStderr(), snap.Report)

			if output == "" {
				output = a.cfg.Docs.Output
			}
			if !filepath.IsAbs(output) {
				output = filepath.Join(a.root, output)
			}
			if title == "" {
				title = a.cfg.Docs.Title
			}

			gen := docs.NewMarkdownGenerator(a.fs, &docs.Config{
				Title:     title,
				OutputDir: output,
				Labels:    a.scanner.Labels(),
			})
			paths, err := gen.Generate(snap.Algorithms())
			if err != nil {
				return err
			}

			a.logger.Info("documentation written", zap.String("dir", output), zap.Int("files", len(paths)))
			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Wrote %s to %s", plural(len(paths), "file"), output), a.flags.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "out", "", "Output directory (default: docs.output)")
	cmd.Flags().StringVar(&title, "title", "", "Index page title (default: docs.title)")

	return cmd
}

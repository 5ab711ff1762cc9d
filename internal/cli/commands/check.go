package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
	"github.com/algodoc/algodoc/internal/cli/ui"
)

// checkResult is the round-trip verdict for one algorithm
type checkResult struct {
	ID     string `json:"id" yaml:"id"`
	Module string `json:"module" yaml:"module"`
	OK     bool   `json:"ok" yaml:"ok"`
	Diff   string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newCheckCommand(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [package]",
		Short: "Verify that every algorithm survives regeneration",
		Long: `Regenerate every algorithm of a package from its scanned metadata and
existing body, scan the result again and compare. An algorithm passes when
the metadata is unchanged and a second generation is byte-identical to the
first.

With --strict, skipped functions and docstring warnings also fail the check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := a.pkg(args)
			snap, err := a.scanner.Snapshot(cmd.Context(), pkg)
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()
			a.reportSkips(stderr, snap.Report)
			a.reportWarnings(stderr, snap.Report.Warnings)

			type source struct {
				src *extractor.Source
				err error
			}
			sources := make(map[string]source)
			var results []checkResult
			failed := 0
			for _, alg := range snap.Algorithms() {
				module, _ := snap.Module(alg.ID)
				res := checkResult{ID: alg.ID, Module: module}

				s, ok := sources[module]
				if !ok {
					s.src, s.err = a.readSource(module)
					sources[module] = s
				}
				if s.err != nil {
					res.Error = s.err.Error()
				} else if res.Diff, err = a.roundTrip(alg, s.src); err != nil {
					res.Error = err.Error()
				}

				res.OK = res.Error == "" && res.Diff == ""
				if !res.OK {
					failed++
					a.logger.Warn("round trip failed", zap.String("id", alg.ID), zap.String("module", module))
				}
				results = append(results, res)
			}

			err = a.render(cmd.OutOrStdout(), results, func(w io.Writer) {
				table := ui.NewTable(w, a.flags.noColor, "ID", "MODULE", "STATUS")
				for _, res := range results {
					status := "ok"
					switch {
					case res.Error != "":
						status = "error: " + res.Error
					case res.Diff != "":
						status = "drift"
					}
					table.AddRow(res.ID, res.Module, status)
				}
				table.Render()
				for _, res := range results {
					if res.Diff != "" {
						fmt.Fprintf(w, "\n%s (-scanned +regenerated):\n", res.ID)
						ui.WriteDiff(w, res.Diff, a.flags.noColor)
					}
				}
			})
			if err != nil {
				return err
			}

			if strict {
				failed += len(snap.Report.Skipped) + len(snap.Report.Warnings)
			}
			if failed > 0 {
				return silentError{fmt.Errorf("%s failed the check", plural(failed, "item"))}
			}
			ui.WriteSuccess(stderr, fmt.Sprintf("%s round-trip cleanly", plural(len(results), "algorithm")), a.flags.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on skipped functions and docstring warnings")

	return cmd
}

// roundTrip regenerates alg with its current body and returns the
// structural diff between the scanned and the re-scanned metadata, or the
// line diff between the first and second generation when only the source
// text drifts.
func (a *app) roundTrip(alg metadata.Algorithm, src *extractor.Source) (string, error) {
	var body string
	if fn, err := src.Function(alg.ID); err == nil {
		body = fn.Body
	}

	gen := codegen.New(
		codegen.WithPackage(src.Package),
		codegen.WithGofmt(a.cfg.Generator.Gofmt),
		codegen.WithLogger(a.logger),
	)
	first, err := gen.Generate(alg, body)
	if err != nil {
		return "", err
	}

	again, _, err := scanner.FromSource(src.Path, first, alg.ID)
	if err != nil {
		return "", err
	}
	if diff := metadata.Diff(alg, again); diff != "" {
		return diff, nil
	}

	parsed, err := extractor.ParseSource(src.Path, first)
	if err != nil {
		return "", err
	}
	regenerated, err := parsed.Function(alg.ID)
	if err != nil {
		return "", err
	}
	second, err := gen.Generate(again, regenerated.Body)
	if err != nil {
		return "", err
	}
	if second != first {
		return ui.LineDiff(first, second), nil
	}
	return "", nil
}

package commands

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	"github.com/algodoc/algodoc/internal/catalog/extractor"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/cli/ui"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		output  string
		from    string
		pkgName string
		noBody  bool
		noGofmt bool
	)

	cmd := &cobra.Command{
		Use:   "generate [id]",
		Short: "Generate Go source for an algorithm",
		Long: `Generate the Go source of an algorithm from its metadata.

With an id, the metadata comes from the scanned package and the existing
function body is kept. With --from, the metadata is read from a JSON file
and the body is its template (or a placeholder). A file holding a JSON
array generates one <id>.go per entry into the --output directory.`,
		Example: `  # Regenerate an algorithm in place
  algodoc generate filter_outliers -o algorithms/filter_outliers.go

  # Generate from edited metadata
  algodoc show filter_outliers -f json > filter.json
  algodoc generate --from filter.json

  # Generate a batch of algorithms into a directory
  algodoc generate --from batch.json -o algorithms/`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeIDs(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				alg  metadata.Algorithm
				body string
				err  error
			)
			pkg := a.cfg.Generator.Package

			switch {
			case from != "":
				data, rerr := afero.ReadFile(a.fs, from)
				if rerr != nil {
					return fmt.Errorf("failed to read metadata: %w", rerr)
				}
				if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
					algs, lerr := metadata.ListFromJSON(data)
					if lerr != nil {
						return lerr
					}
					return a.generateBatch(cmd, algs, output, a.generator(cmd, pkg, pkgName, noGofmt))
				}
				if alg, err = metadata.FromJSON(data); err != nil {
					return err
				}
			case len(args) == 1:
				snap, found, lerr := a.lookup(cmd, args[0])
				if lerr != nil {
					return lerr
				}
				alg = found
				if !noBody {
					module, _ := snap.Module(alg.ID)
					src, serr := a.readSource(module)
					if serr != nil {
						return serr
					}
					pkg = src.Package
					if fn, ferr := src.Function(alg.ID); ferr == nil {
						body = fn.Body
					}
				}
			default:
				return fmt.Errorf("an algorithm id or --from is required")
			}

			src, err := a.generator(cmd, pkg, pkgName, noGofmt).Generate(alg, body)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), src)
				return err
			}
			if err := a.writeFile(output, src); err != nil {
				return err
			}
			a.scanner.InvalidateAll()
			a.logger.Info("source generated", zap.String("id", alg.ID), zap.String("path", output))
			ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Generated %s", output), a.flags.noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the source to a file instead of stdout")
	cmd.Flags().StringVar(&from, "from", "", "Read metadata from a JSON file")
	cmd.Flags().StringVar(&pkgName, "package-name", "", "Package clause of the generated file")
	cmd.Flags().BoolVar(&noBody, "no-body", false, "Ignore the existing function body")
	cmd.Flags().BoolVar(&noGofmt, "no-gofmt", false, "Skip gofmt on the generated source")

	return cmd
}

func (a *app) generator(cmd *cobra.Command, pkg, pkgName string, noGofmt bool) *codegen.Generator {
	if cmd.Flags().Changed("package-name") {
		pkg = pkgName
	}
	return codegen.New(
		codegen.WithPackage(pkg),
		codegen.WithGofmt(a.cfg.Generator.Gofmt && !noGofmt),
		codegen.WithLogger(a.logger),
	)
}

// generateBatch writes one file per algorithm into dir. Every record is
// generated before anything is written.
func (a *app) generateBatch(cmd *cobra.Command, algs []metadata.Algorithm, dir string, gen *codegen.Generator) error {
	if dir == "" {
		return fmt.Errorf("a metadata list requires --output to name a directory")
	}

	sources := make([]string, len(algs))
	seen := make(map[string]bool, len(algs))
	for i, alg := range algs {
		if seen[alg.ID] {
			return fmt.Errorf("metadata list declares %q twice", alg.ID)
		}
		seen[alg.ID] = true

		src, err := gen.Generate(alg, "")
		if err != nil {
			return err
		}
		sources[i] = src
	}

	for i, alg := range algs {
		path := filepath.Join(dir, alg.ID+".go")
		if err := a.writeFile(path, sources[i]); err != nil {
			return err
		}
		a.logger.Info("source generated", zap.String("id", alg.ID), zap.String("path", path))
	}
	a.scanner.InvalidateAll()
	ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Generated %s to %s", plural(len(algs), "file"), dir), a.flags.noColor)
	return nil
}

// readSource parses a module of the scanned tree. module is relative to
// the library root.
func (a *app) readSource(module string) (*extractor.Source, error) {
	path := filepath.Join(a.root, filepath.FromSlash(module))
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", module, err)
	}
	return extractor.ParseSource(module, string(data))
}

func (a *app) writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(a.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

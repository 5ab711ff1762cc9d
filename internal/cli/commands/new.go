package commands

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	"github.com/algodoc/algodoc/internal/catalog/docstring"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/cli/ui"
	casing "github.com/algodoc/algodoc/internal/util/strings"
)

func newNewCommand(a *app) *cobra.Command {
	var (
		category    string
		description string
		prompt      string
		inputs      []string
		params      []string
		outputType  string
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new algorithm in the library package",
		Long: `Create a new algorithm file in the library package. The id is the
snake_case form of the name; the function body is a placeholder.

Parameters are given as name:type or name:type=default.`,
		Example: `  algodoc new "Rolling Mean" --category data_operation \
    --param window:int=5 --param center:bool=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if err := askDetails(a.scanner.Labels(), &category, &description, &prompt); err != nil {
					return err
				}
			}
			alg, err := scaffold(args[0], category, description, prompt, inputs, params, outputType)
			if err != nil {
				return err
			}

			gen := codegen.New(
				codegen.WithPackage(a.cfg.Generator.Package),
				codegen.WithGofmt(a.cfg.Generator.Gofmt),
				codegen.WithLogger(a.logger),
			)
			src, err := gen.Generate(alg, "")
			if err != nil {
				return err
			}

			dir := filepath.Join(a.root, filepath.FromSlash(a.cfg.Library.Package))
			path := filepath.Join(dir, alg.ID+".go")
			exists, err := afero.Exists(a.fs, path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := a.writeFile(path, src); err != nil {
				return err
			}

			a.scanner.Invalidate(a.cfg.Library.Package)
			a.logger.Info("algorithm created", zap.String("id", alg.ID), zap.String("path", path))
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s (%s)", path, alg.ID), a.flags.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category key")
	cmd.Flags().StringVar(&description, "description", "", "One-line description")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Assistant prompt")
	cmd.Flags().StringSliceVar(&inputs, "input", []string{"df"}, "Input port names")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter as name:type[=default] (repeatable)")
	cmd.Flags().StringVar(&outputType, "output-type", "DataFrame", "Type of the result port; empty for none")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for category, description and prompt")

	return cmd
}

// askDetails prompts for the fields not given as flags.
func askDetails(labels metadata.CategoryLabels, category, description, prompt *string) error {
	if *category == "" {
		options := categoryOptions(labels)
		if err := survey.AskOne(&survey.Select{
			Message: "Category:",
			Options: options,
			Description: func(value string, _ int) string {
				return labels.Label(value)
			},
		}, category); err != nil {
			return err
		}
	}
	if *description == "" {
		if err := survey.AskOne(&survey.Input{Message: "Description:"}, description,
			survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if *prompt == "" {
		if err := survey.AskOne(&survey.Input{Message: "Assistant prompt (optional):"}, prompt); err != nil {
			return err
		}
	}
	return nil
}

// categoryOptions lists the labelled categories, sorted, followed by the
// default category.
func categoryOptions(labels metadata.CategoryLabels) []string {
	options := slices.Sorted(maps.Keys(labels))
	options = slices.DeleteFunc(options, func(c string) bool { return c == metadata.DefaultCategory })
	return append(options, metadata.DefaultCategory)
}

// scaffold builds the metadata of a new algorithm.
func scaffold(name, category, description, prompt string, inputs, params []string, outputType string) (metadata.Algorithm, error) {
	id := casing.ToSnakeCase(name)
	if !metadata.IsValidID(id) {
		return metadata.Algorithm{}, fmt.Errorf("%q does not make a valid algorithm id", name)
	}

	display := strings.TrimSpace(name)
	if display == id || !strings.ContainsAny(display, " ") {
		display = casing.ToTitle(id)
	}

	alg := metadata.Algorithm{
		ID:          id,
		Name:        display,
		Category:    category,
		Description: description,
		Prompt:      prompt,
	}
	for _, in := range inputs {
		if in = strings.TrimSpace(in); in != "" {
			alg.Inputs = append(alg.Inputs, metadata.Port{Name: in, Type: "DataFrame"})
		}
	}
	for _, spec := range params {
		p, err := parseParamSpec(spec)
		if err != nil {
			return metadata.Algorithm{}, err
		}
		alg.Parameters = append(alg.Parameters, p)
	}
	if outputType != "" {
		alg.Outputs = []metadata.Port{{Name: metadata.ResultPort, Type: outputType}}
	}

	return metadata.New(alg)
}

// parseParamSpec reads name:type[=default].
func parseParamSpec(spec string) (metadata.Parameter, error) {
	head, def, hasDefault := strings.Cut(spec, "=")
	name, typ, _ := strings.Cut(head, ":")
	p := metadata.Parameter{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}
	if !metadata.IsIdentifier(p.Name) {
		return p, fmt.Errorf("invalid parameter %q (want name:type[=default])", spec)
	}
	if hasDefault {
		v, err := docstring.ParseLiteral(def).Value(p.Type)
		if err != nil {
			return p, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		p.Default = v
	}
	return p, nil
}

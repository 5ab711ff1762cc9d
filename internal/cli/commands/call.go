package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
)

func newCallCommand(a *app) *cobra.Command {
	var (
		argPairs []string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "call <id>",
		Short: "Print a Go call statement for an algorithm",
		Long: `Print a Go statement that calls an algorithm with the given arguments.

Inputs take variable names. Parameter values are parsed as JSON when
possible and used as plain strings otherwise; parameters without a value
use their default, else the zero value of their type.`,
		Example: `  algodoc call filter_outliers --arg df=frame --arg threshold=2.5
  algodoc call filter_outliers --arg 'method="zscore"' --out cleaned`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, alg, err := a.lookup(cmd, args[0])
			if err != nil {
				return err
			}

			values, err := parseArgs(argPairs)
			if err != nil {
				return err
			}
			code, err := codegen.GenerateCall(alg, values, out)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&argPairs, "arg", "a", nil, "Argument as name=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "result", "Variable receiving the result")

	return cmd
}

// parseArgs turns name=value pairs into call arguments. Values that are
// valid JSON are decoded; anything else is kept as a string.
func parseArgs(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q (want name=value)", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		values[name] = v
	}
	return values, nil
}

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
	"github.com/algodoc/algodoc/internal/cli/ui"
)

// render writes v as JSON or YAML, or calls table for the table format.
func (a *app) render(w io.Writer, v any, table func(io.Writer)) error {
	switch strings.ToLower(a.flags.format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		table(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", a.flags.format)
	}
}

// reportSkips writes one warning per skipped function and duplicate id.
func (a *app) reportSkips(w io.Writer, report scanner.Report) {
	for _, skip := range report.Skipped {
		var diag *catalogerrors.Error
		if errors.As(skip.Err, &diag) {
			ui.Diagnostic(diag, a.flags.noColor).Write(w)
			continue
		}
		ui.Message{
			Level:   ui.LevelWarning,
			Context: "skipped",
			Problem: strings.TrimSpace(skip.Module + " " + skip.Function),
			Detail:  skip.Err.Error(),
			NoColor: a.flags.noColor,
		}.Write(w)
	}
	for _, dup := range report.Duplicates {
		ui.Message{
			Level:   ui.LevelWarning,
			Context: "duplicate id",
			Problem: dup.ID,
			Detail:  fmt.Sprintf("%s replaces the definition in %s", dup.Current, dup.Previous),
			NoColor: a.flags.noColor,
		}.Write(w)
	}
}

// reportWarnings writes docstring and merge warnings. Duplicate ids are
// left to reportSkips.
func (a *app) reportWarnings(w io.Writer, list catalogerrors.List) {
	for _, e := range list {
		if e.Code == catalogerrors.CodeDuplicateIdentifier {
			continue
		}
		ui.Diagnostic(e, a.flags.noColor).Write(w)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Import is a parsed import declaration.
type Import struct {
	Path  string
	Alias string
}

// String returns the canonical form: "path" or "path as alias".
func (i Import) String() string {
	if i.Alias == "" {
		return i.Path
	}
	return i.Path + " as " + i.Alias
}

// ParseImport accepts any of the spellings found in docstrings and source
// files: `path`, `path as alias`, `"path"`, `alias "path"`, optionally
// preceded by the import keyword.
func ParseImport(spec string) (Import, error) {
	s := strings.TrimSpace(spec)
	s = strings.TrimSpace(strings.TrimPrefix(s, "import "))
	if s == "" {
		return Import{}, fmt.Errorf("empty import")
	}

	var imp Import
	switch {
	case strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "`"):
		quoteAt := strings.IndexAny(s, "\"`")
		path, err := strconv.Unquote(s[quoteAt:])
		if err != nil {
			return Import{}, fmt.Errorf("bad import path %s: %w", s[quoteAt:], err)
		}
		imp = Import{Path: path, Alias: strings.TrimSpace(s[:quoteAt])}
	case strings.Contains(s, " as "):
		idx := strings.LastIndex(s, " as ")
		imp = Import{Path: strings.TrimSpace(s[:idx]), Alias: strings.TrimSpace(s[idx+4:])}
	default:
		imp = Import{Path: s}
	}

	if imp.Path == "" || strings.ContainsAny(imp.Path, ",\"`") || strings.IndexFunc(imp.Path, invalidPathRune) >= 0 {
		return Import{}, fmt.Errorf("invalid import path %q", imp.Path)
	}
	if imp.Alias != "" && imp.Alias != "_" && imp.Alias != "." && !IsIdentifier(imp.Alias) {
		return Import{}, fmt.Errorf("invalid import alias %q", imp.Alias)
	}
	return imp, nil
}

func invalidPathRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || r == utf8.RuneError
}

// CanonicalImport returns the canonical string form of spec
func CanonicalImport(spec string) (string, error) {
	imp, err := ParseImport(spec)
	if err != nil {
		return "", err
	}
	return imp.String(), nil
}

func dedupeImports(imports []string) []string {
	if len(imports) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(imports))
	var out []string
	for _, raw := range imports {
		imp := strings.TrimSpace(raw)
		if canonical, err := CanonicalImport(imp); err == nil {
			imp = canonical
		}
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		out = append(out, imp)
	}
	return out
}

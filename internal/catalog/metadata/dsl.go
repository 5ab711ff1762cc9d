package metadata

import "strings"

// Section names of the docstring DSL, lower case, keyed by every accepted
// spelling.
var sectionAliases = map[string]string{
	"algorithm":  SectionAlgorithm,
	"parameters": SectionParameters,
	"params":     SectionParameters,
	"args":       SectionParameters,
	"arguments":  SectionParameters,
	"returns":    SectionReturns,
	"return":     SectionReturns,
}

const (
	SectionAlgorithm  = "algorithm"
	SectionParameters = "parameters"
	SectionReturns    = "returns"
)

// OverrideKeys lists the keys accepted on parameter override lines.
var OverrideKeys = []string{
	"label", "widget", "priority", "options", "min", "max", "step",
	"role", "default", "ignore",
}

// CanonicalSection maps a header spelling to its section name. The boolean
// is false for headers the DSL does not know.
func CanonicalSection(header string) (string, bool) {
	name, ok := sectionAliases[strings.ToLower(strings.TrimSpace(header))]
	return name, ok
}

// HeaderName returns the text before the colon of a line shaped like a
// section header ("Word:" or "Two Words:").
func HeaderName(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasSuffix(s, ":") {
		return "", false
	}
	name := strings.TrimSuffix(s, ":")
	words := strings.Fields(name)
	if len(words) == 0 || len(words) > 2 || strings.Join(words, " ") != name {
		return "", false
	}
	for _, w := range words {
		for _, r := range w {
			if !isWordRune(r) {
				return "", false
			}
		}
	}
	return name, true
}

// OverrideLine splits a parameter override line ("- key: value", dash
// optional) when key is one of OverrideKeys.
func OverrideLine(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(s[:idx]))
	for _, k := range OverrideKeys {
		if k == key {
			return key, strings.TrimSpace(s[idx+1:]), true
		}
	}
	return "", "", false
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

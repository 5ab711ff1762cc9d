package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a display name or CamelCase identifier to
// snake_case. Spaces and dashes become underscores and acronyms stay
// together (HTTPRequest -> http_request, "Filter Outliers" -> filter_outliers).
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(strings.TrimSpace(s))

	underscore := func() {
		if result.Len() > 0 && !strings.HasSuffix(result.String(), "_") {
			result.WriteRune('_')
		}
	}

	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '_':
			underscore()
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					underscore()
				} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					underscore()
				}
			}
			result.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
		}
	}
	return strings.TrimSuffix(result.String(), "_")
}

// ToTitle turns a snake_case id into a display name (filter_outliers ->
// Filter Outliers).
func ToTitle(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

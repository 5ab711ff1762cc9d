package docstring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/algodoc/algodoc/internal/catalog/metadata"
)

var (
	intPattern   = regexp.MustCompile(`^[+-]?\d+$`)
	floatPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// Literal is a value as written in a docstring. Coercion is deferred until
// the declared type of the parameter is known.
type Literal struct {
	Text   string
	Quoted bool
}

// ParseLiteral reads a single value. Double-quoted and backquoted text
// follows Go escaping rules; single quotes are stripped verbatim.
func ParseLiteral(s string) Literal {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '`':
			if unq, err := strconv.Unquote(s); err == nil {
				return Literal{Text: unq, Quoted: true}
			}
		case '\'':
			if s[len(s)-1] == '\'' {
				return Literal{Text: s[1 : len(s)-1], Quoted: true}
			}
		}
	}
	return Literal{Text: s}
}

// Value coerces the literal to the kind of typ. A nil result with a nil
// error means the literal spells an absent value.
func (l Literal) Value(typ string) (any, error) {
	if l.Quoted {
		return l.Text, nil
	}
	text := strings.TrimSpace(l.Text)
	switch strings.ToLower(text) {
	case "none", "null", "nil":
		return nil, nil
	}

	switch metadata.KindOf(typ) {
	case metadata.KindString:
		return text, nil
	case metadata.KindInt:
		if intPattern.MatchString(text) {
			return strconv.Atoi(text)
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil && floatPattern.MatchString(text) && f == float64(int(f)) {
			return int(f), nil
		}
		return nil, fmt.Errorf("%q is not an integer", text)
	case metadata.KindFloat:
		if !floatPattern.MatchString(text) {
			return nil, fmt.Errorf("%q is not a number", text)
		}
		return strconv.ParseFloat(text, 64)
	case metadata.KindBool:
		if b, ok := parseBool(text); ok {
			return b, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", text)
	case metadata.KindList:
		return parseList(text, elemType(typ))
	case metadata.KindMap:
		return parseMap(text)
	}
	return infer(text)
}

func infer(text string) (any, error) {
	if b, ok := parseBool(text); ok && !strings.EqualFold(text, "yes") && !strings.EqualFold(text, "no") {
		return b, nil
	}
	if intPattern.MatchString(text) {
		if i, err := strconv.Atoi(text); err == nil {
			return i, nil
		}
	}
	if floatPattern.MatchString(text) {
		return strconv.ParseFloat(text, 64)
	}
	if _, ok := enclosed(text, '[', ']'); ok {
		return parseList(text, "")
	}
	if strings.HasPrefix(text, "{") {
		if m, err := parseMap(text); err == nil {
			return m, nil
		}
	}
	return text, nil
}

func parseBool(text string) (bool, bool) {
	switch strings.ToLower(text) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func parseList(text, elem string) (any, error) {
	items := SplitList(text)
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := item.Value(elem)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("list %q contains an empty item", text)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseMap(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%q is not a JSON object: %w", text, err)
	}
	return metadata.NormalizeValue("map", m).(map[string]any), nil
}

// elemType returns T for "list[T]", "List[T]" and "[]T".
func elemType(typ string) string {
	t := strings.TrimSpace(typ)
	if strings.HasPrefix(t, "[]") {
		return t[2:]
	}
	if open := strings.Index(t, "["); open > 0 && strings.HasSuffix(t, "]") {
		return t[open+1 : len(t)-1]
	}
	return ""
}

// SplitList splits a comma-separated list, honouring quotes and nested
// brackets. A single pair of brackets around the whole text is optional.
func SplitList(text string) []Literal {
	text = strings.TrimSpace(text)
	if inner, ok := enclosed(text, '[', ']'); ok {
		text = strings.TrimSpace(inner)
	}
	if text == "" {
		return nil
	}

	var items []Literal
	depth := 0
	var quote rune
	escaped := false
	start := 0
	for i, r := range text {
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote == '"':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '[' || r == '{' || r == '(':
			depth++
		case r == ']' || r == '}' || r == ')':
			depth--
		case r == ',' && depth == 0:
			items = append(items, ParseLiteral(text[start:i]))
			start = i + 1
		}
	}
	return append(items, ParseLiteral(text[start:]))
}

// enclosed reports whether the opening bracket at the start of text is
// closed by its last character, returning the content in between.
func enclosed(text string, open, close byte) (string, bool) {
	if len(text) < 2 || text[0] != open || text[len(text)-1] != close {
		return "", false
	}
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 && i != len(text)-1 {
				return "", false
			}
		}
	}
	return text[1 : len(text)-1], depth == 0
}

// FormatLiteral renders v so that ParseLiteral(s).Value(typ) yields v
// again. Strings are left bare when that is unambiguous.
func FormatLiteral(typ string, v any) string {
	plain := formatPlain(typ, v)
	if roundTrips(typ, plain, v) {
		return plain
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	if list, ok := v.([]any); ok {
		quoted := formatList(elemType(typ), list, true)
		if roundTrips(typ, quoted, v) {
			return quoted
		}
	}
	return formatJSON(v)
}

// FormatOptions renders an option list without surrounding brackets.
func FormatOptions(typ string, options []any) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = formatItem(typ, o)
	}
	joined := strings.Join(parts, ", ")
	if optionsRoundTrip(typ, joined, options) {
		return joined
	}
	return formatList(typ, options, true)
}

func formatItem(typ string, v any) string {
	s := FormatLiteral(typ, v)
	if str, ok := v.(string); ok && s == str && strings.ContainsAny(s, ",[]{}()\"'`") {
		return strconv.Quote(str)
	}
	return s
}

func optionsRoundTrip(typ, text string, options []any) bool {
	items := SplitList(text)
	if len(items) != len(options) {
		return false
	}
	for i, item := range items {
		v, err := item.Value(typ)
		if err != nil || !metadata.ValuesEqual(typ, v, options[i]) {
			return false
		}
	}
	return true
}

func formatPlain(typ string, v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return FormatFloat(t)
	case []any:
		return formatList(elemType(typ), t, false)
	case map[string]any:
		return formatJSON(t)
	}
	return fmt.Sprint(v)
}

func formatList(elem string, items []any, quoteStrings bool) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok && quoteStrings {
			parts[i] = strconv.Quote(s)
			continue
		}
		parts[i] = formatPlain(elem, item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatFloat renders f with a decimal point so it never reads as an int.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}

// nonPrintable reports runes that must be escaped to survive the comment
// lexer, which expands tabs and drops carriage returns.
func nonPrintable(r rune) bool {
	return r != ' ' && !strconv.IsPrint(r)
}

func roundTrips(typ, text string, v any) bool {
	if text != strings.TrimSpace(text) || !utf8.ValidString(text) || strings.IndexFunc(text, nonPrintable) >= 0 {
		return false
	}
	got, err := ParseLiteral(text).Value(typ)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(metadata.NormalizeValue(typ, got), metadata.NormalizeValue(typ, v))
}

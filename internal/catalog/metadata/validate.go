package metadata

import (
	stderrors "errors"
	"fmt"
	"go/token"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// New normalizes a and checks every model invariant. The returned record
// shares no memory with a.
func New(a Algorithm) (Algorithm, error) {
	out := a.Normalize()
	if err := out.Validate(); err != nil {
		return Algorithm{}, err
	}
	return out, nil
}

// Validate checks the model invariants and returns an InvalidMetadata
// diagnostic describing the first violation. The receiver is expected to
// be normalized.
func (a Algorithm) Validate() error {
	if err := validate.Struct(a); err != nil {
		return structError(a.ID, err)
	}

	if !IsValidID(a.ID) {
		return invalid(a.ID, "invalid_id", "id %q is not a valid function name", a.ID)
	}

	for _, field := range []struct{ name, value string }{
		{"name", a.Name}, {"category", a.Category}, {"node_type", a.NodeType},
		{"description", a.Description}, {"prompt", a.Prompt},
	} {
		if err := checkText(a.ID, field.name, field.value, "\n"); err != nil {
			return err
		}
	}
	if err := checkText(a.ID, "template", a.Template, "\n\t"); err != nil {
		return err
	}

	for _, line := range strings.Split(a.Description, "\n") {
		if name, ok := HeaderName(line); ok {
			if _, known := CanonicalSection(name); known {
				return invalid(a.ID, "reserved_description_line",
					"description line %q would be read as a section header", line)
			}
		}
	}

	for _, imp := range a.Imports {
		if _, err := ParseImport(imp); err != nil {
			return invalid(a.ID, "invalid_import", "import %q: %v", imp, err)
		}
	}

	signature := make(map[string]bool, len(a.Inputs)+len(a.Parameters))
	for _, port := range a.Inputs {
		if err := checkPort(a.ID, "input", port); err != nil {
			return err
		}
		if signature[port.Name] {
			return invalid(a.ID, "duplicate_name", "input %q declared twice", port.Name)
		}
		signature[port.Name] = true
	}
	for _, p := range a.Parameters {
		if err := checkParameter(a.ID, p); err != nil {
			return err
		}
		if signature[p.Name] {
			return invalid(a.ID, "duplicate_name", "parameter %q collides with another input or parameter", p.Name)
		}
		signature[p.Name] = true
	}

	outputs := make(map[string]bool, len(a.Outputs))
	for _, port := range a.Outputs {
		if err := checkPort(a.ID, "output", port); err != nil {
			return err
		}
		if outputs[port.Name] {
			return invalid(a.ID, "duplicate_name", "output %q declared twice", port.Name)
		}
		outputs[port.Name] = true
	}

	return nil
}

func checkPort(id, kind string, port Port) error {
	if !IsIdentifier(port.Name) || isKeyword(port.Name) {
		return invalid(id, "invalid_port", "%s port name %q is not a Go identifier", kind, port.Name)
	}
	if err := checkTypeLabel(port.Type); err != nil {
		return invalid(id, "invalid_type", "%s port %q: %v", kind, port.Name, err)
	}
	for _, field := range []struct{ name, value string }{
		{"type", port.Type}, {"description", port.Description},
	} {
		if err := checkText(id, kind+" "+port.Name+" "+field.name, field.value, "\n"); err != nil {
			return err
		}
	}
	return checkContinuation(id, port.Name, port.Description)
}

func checkParameter(id string, p Parameter) error {
	if !IsIdentifier(p.Name) || isKeyword(p.Name) {
		return invalid(id, "invalid_parameter", "parameter name %q is not a Go identifier", p.Name)
	}
	if err := checkTypeLabel(p.Type); err != nil {
		return invalid(id, "invalid_type", "parameter %q: %v", p.Name, err)
	}
	if p.Role == RoleInput {
		return invalid(id, "input_role_parameter",
			"parameter %q has role %q; inputs belong in the input port list", p.Name, RoleInput)
	}
	for _, field := range []struct{ name, value string }{
		{"label", p.Label}, {"widget", p.Widget}, {"role", p.Role},
	} {
		if strings.Contains(field.value, "\n") {
			return invalid(id, "multiline_field", "parameter %q: %s must be a single line", p.Name, field.name)
		}
	}
	for _, field := range []struct{ name, value string }{
		{"type", p.Type}, {"label", p.Label}, {"widget", p.Widget},
		{"role", p.Role}, {"description", p.Description},
	} {
		if err := checkText(id, "parameter "+p.Name+" "+field.name, field.value, "\n"); err != nil {
			return err
		}
	}
	if err := checkContinuation(id, p.Name, p.Description); err != nil {
		return err
	}

	if p.Default != nil {
		if err := CheckValue(p.Type, p.Default); err != nil {
			return invalid(id, "invalid_default", "parameter %q default: %v", p.Name, err)
		}
	}
	for _, o := range p.Options {
		if o == nil {
			return invalid(id, "invalid_option", "parameter %q has a null option", p.Name)
		}
		if err := CheckValue(p.Type, o); err != nil {
			return invalid(id, "invalid_option", "parameter %q option: %v", p.Name, err)
		}
	}
	if len(p.Options) > 0 && p.Default != nil && !ContainsValue(p.Type, p.Options, p.Default) {
		return invalid(id, "default_not_in_options",
			"parameter %q default %v is not one of its options %v", p.Name, p.Default, p.Options)
	}
	if p.Widget == WidgetSelect && len(p.Options) == 0 {
		return invalid(id, "select_without_options", "parameter %q uses a select widget but declares no options", p.Name)
	}

	for _, bound := range []struct {
		name  string
		value *float64
	}{{"min", p.Min}, {"max", p.Max}, {"step", p.Step}} {
		if f := bound.value; f != nil && (math.IsNaN(*f) || math.IsInf(*f, 0)) {
			return invalid(id, "invalid_bound", "parameter %q: %s must be finite", p.Name, bound.name)
		}
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return invalid(id, "invalid_range", "parameter %q: min %v exceeds max %v", p.Name, *p.Min, *p.Max)
	}
	return nil
}

// checkValue verifies that v is one of the representable value types and
// fits the kind of the declared type.
func CheckValue(typ string, v any) error {
	if err := checkRepresentable(v); err != nil {
		return err
	}
	ok := true
	switch KindOf(typ) {
	case KindString:
		_, ok = v.(string)
	case KindInt:
		_, ok = v.(int)
	case KindFloat:
		_, ok = v.(float64)
	case KindBool:
		_, ok = v.(bool)
	case KindList:
		_, ok = v.([]any)
	case KindMap:
		_, ok = v.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("%v (%T) does not match type %q", v, v, typ)
	}
	return nil
}

func checkRepresentable(v any) error {
	switch t := v.(type) {
	case string:
		return checkString(t)
	case bool, int:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%v is not a finite number", t)
		}
		return nil
	case []any:
		for _, item := range t {
			if item == nil {
				return fmt.Errorf("list items cannot be null")
			}
			if err := checkRepresentable(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for key, item := range t {
			if err := checkString(key); err != nil {
				return err
			}
			if item == nil {
				continue
			}
			if err := checkRepresentable(item); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported value type %T", v)
}

// checkString rejects strings that no Go comment can carry, even escaped
// inside a JSON literal.
func checkString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%q is not valid UTF-8", s)
	}
	if strings.ContainsRune(s, '\uFEFF') {
		return fmt.Errorf("%q contains a byte order mark", s)
	}
	return nil
}

// checkText rejects free text that would not survive a trip through a doc
// comment: invalid UTF-8, byte order marks and control characters other
// than those in allowed.
func checkText(id, field, s, allowed string) error {
	if !utf8.ValidString(s) {
		return invalid(id, "invalid_text", "%s is not valid UTF-8", field)
	}
	for _, r := range s {
		if strings.ContainsRune(allowed, r) {
			continue
		}
		if r == '\uFEFF' || unicode.IsControl(r) {
			return invalid(id, "invalid_text", "%s contains control character %U", field, r)
		}
	}
	return nil
}

func checkTypeLabel(typ string) error {
	if strings.Contains(typ, "\n") {
		return fmt.Errorf("type %q must be a single line", typ)
	}
	depth := 0
	for _, r := range typ {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("type %q has unbalanced parentheses", typ)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("type %q has unbalanced parentheses", typ)
	}
	return nil
}

// checkContinuation rejects description lines that the parser would read
// back as override lines.
func checkContinuation(id, name, description string) error {
	lines := strings.Split(description, "\n")
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "-") {
			return invalid(id, "ambiguous_description",
				"description of %q: continuation line %q starts with a dash", name, line)
		}
		if key, _, ok := OverrideLine(line); ok {
			return invalid(id, "ambiguous_description",
				"description of %q: continuation line %q reads as a %s override", name, line, key)
		}
	}
	return nil
}

func structError(id string, err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalid(id, "struct_validation", "%s failed on the '%s' rule", fe.Namespace(), fe.Tag()).
			WithCause(err)
	}
	return invalid(id, "struct_validation", "%v", err).WithCause(err)
}

func invalid(id, typ, format string, args ...any) *catalogerrors.Error {
	return catalogerrors.NewInvalidMetadata(typ, format, args...).WithSymbol(id)
}

func isKeyword(s string) bool {
	return token.IsKeyword(s)
}

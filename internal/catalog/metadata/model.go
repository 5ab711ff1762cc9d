// Package metadata defines the canonical description of a catalog
// algorithm: its ports, its parameters and the record that ties them to a
// function. Records are plain values; every constructor normalizes and
// validates them so that two records describing the same function compare
// equal field for field.
package metadata

// Priority ranks how prominently a parameter is surfaced to users
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityNormal   Priority = "normal"
	PriorityAdvanced Priority = "advanced"
)

// Built-in defaults applied by Normalize
const (
	DefaultCategory = "uncategorized"
	DefaultNodeType = "generic"
	DefaultType     = "any"
	RoleParameter   = "parameter"
	RoleInput       = "input"
	RoleOutput      = "output"
	ResultPort      = "result"

	// PlaceholderBody is emitted for algorithms without a template and is
	// read back as an empty template.
	PlaceholderBody = `panic("algodoc: not implemented")`
)

// Widget hints understood by the notebook front end. The list is advisory;
// any non-empty string is accepted.
const (
	WidgetText           = "text"
	WidgetNumber         = "number"
	WidgetSlider         = "slider"
	WidgetSelect         = "select"
	WidgetCheckbox       = "checkbox"
	WidgetFileSelector   = "file-selector"
	WidgetColumnSelector = "column-selector"
	WidgetColorPicker    = "color-picker"
)

// Port is a named input or output data channel of an algorithm.
type Port struct {
	Name        string `validate:"required"`
	Type        string
	Description string
}

// Parameter is one configurable argument of an algorithm.
type Parameter struct {
	Name string `validate:"required"`
	Type string
	// Default is nil when the parameter has no default.
	Default     any
	Label       string
	Description string
	Widget      string
	Options     []any
	Min         *float64
	Max         *float64
	Step        *float64
	Priority    Priority `validate:"omitempty,oneof=critical normal advanced"`
	Role        string
}

// HasDefault reports whether a default value is declared
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// Algorithm is the complete description of one algorithm function.
type Algorithm struct {
	ID          string `validate:"required"`
	Name        string
	Category    string
	Description string
	Prompt      string
	// Template is the raw function body used when no body is preserved.
	Template   string
	Imports    []string
	Parameters []Parameter `validate:"dive"`
	Inputs     []Port      `validate:"dive"`
	Outputs    []Port      `validate:"dive"`
	NodeType   string
}

// Parameter returns the parameter with the given name
func (a Algorithm) Parameter(name string) (Parameter, bool) {
	for _, p := range a.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Clone returns a deep copy that shares no slices with the receiver.
func (a Algorithm) Clone() Algorithm {
	out := a
	if a.Imports != nil {
		out.Imports = append([]string(nil), a.Imports...)
	}
	if a.Parameters != nil {
		out.Parameters = make([]Parameter, len(a.Parameters))
		for i, p := range a.Parameters {
			out.Parameters[i] = p.Clone()
		}
	}
	out.Inputs = clonePorts(a.Inputs)
	out.Outputs = clonePorts(a.Outputs)
	return out
}

// Clone returns a deep copy of the parameter
func (p Parameter) Clone() Parameter {
	out := p
	out.Default = cloneValue(p.Default)
	if p.Options != nil {
		out.Options = make([]any, len(p.Options))
		for i, o := range p.Options {
			out.Options[i] = cloneValue(o)
		}
	}
	out.Min = cloneFloat(p.Min)
	out.Max = cloneFloat(p.Max)
	out.Step = cloneFloat(p.Step)
	return out
}

// ToPromptDict returns the short form used to describe the algorithm to an
// assistant.
func (a Algorithm) ToPromptDict() map[string]any {
	return map[string]any{
		"id":     a.ID,
		"name":   a.Name,
		"prompt": a.Prompt,
	}
}

// ToPortDict returns only the port lists
func (a Algorithm) ToPortDict() map[string]any {
	return map[string]any{
		"inputs":  portsToDict(a.Inputs),
		"outputs": portsToDict(a.Outputs),
	}
}

func clonePorts(ports []Port) []Port {
	if ports == nil {
		return nil
	}
	return append([]Port(nil), ports...)
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Float returns a pointer to f, for building Min/Max/Step literals.
func Float(f float64) *float64 {
	return &f
}

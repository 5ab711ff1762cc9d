package metadata

import (
	"github.com/go-viper/mapstructure/v2"
)

type wirePort struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Description string `mapstructure:"description"`
}

type wireParameter struct {
	Name        string   `mapstructure:"name"`
	Type        string   `mapstructure:"type"`
	Default     any      `mapstructure:"default"`
	Label       string   `mapstructure:"label"`
	Description string   `mapstructure:"description"`
	Widget      string   `mapstructure:"widget"`
	Options     []any    `mapstructure:"options"`
	Min         *float64 `mapstructure:"min"`
	Max         *float64 `mapstructure:"max"`
	Step        *float64 `mapstructure:"step"`
	Priority    string   `mapstructure:"priority"`
	Role        string   `mapstructure:"role"`
}

type wireAlgorithm struct {
	ID          string          `mapstructure:"id"`
	Name        string          `mapstructure:"name"`
	Category    string          `mapstructure:"category"`
	Description string          `mapstructure:"description"`
	Prompt      string          `mapstructure:"prompt"`
	Template    string          `mapstructure:"template"`
	Imports     []string        `mapstructure:"imports"`
	Parameters  []wireParameter `mapstructure:"parameters"`
	Inputs      []wirePort      `mapstructure:"inputs"`
	Outputs     []wirePort      `mapstructure:"outputs"`
	NodeType    string          `mapstructure:"node_type"`
}

// ToDict returns the canonical dictionary form. Lists are never nil so
// that serializers emit empty arrays.
func (a Algorithm) ToDict() map[string]any {
	imports := make([]any, 0, len(a.Imports))
	for _, imp := range a.Imports {
		imports = append(imports, imp)
	}
	params := make([]any, 0, len(a.Parameters))
	for _, p := range a.Parameters {
		params = append(params, p.ToDict())
	}

	return map[string]any{
		"id":          a.ID,
		"name":        a.Name,
		"category":    a.Category,
		"description": a.Description,
		"prompt":      a.Prompt,
		"template":    a.Template,
		"imports":     imports,
		"parameters":  params,
		"inputs":      portsToDict(a.Inputs),
		"outputs":     portsToDict(a.Outputs),
		"node_type":   a.NodeType,
	}
}

// ToDict returns the dictionary form of a parameter. Options and bounds
// are omitted when unset.
func (p Parameter) ToDict() map[string]any {
	d := map[string]any{
		"name":        p.Name,
		"type":        p.Type,
		"default":     cloneValue(p.Default),
		"label":       p.Label,
		"description": p.Description,
		"widget":      p.Widget,
		"priority":    string(p.Priority),
		"role":        p.Role,
	}
	if len(p.Options) > 0 {
		d["options"] = cloneValue(p.Options)
	}
	if p.Min != nil {
		d["min"] = *p.Min
	}
	if p.Max != nil {
		d["max"] = *p.Max
	}
	if p.Step != nil {
		d["step"] = *p.Step
	}
	return d
}

// ToDict returns the dictionary form of a port
func (p Port) ToDict() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"type":        p.Type,
		"description": p.Description,
	}
}

func portsToDict(ports []Port) []any {
	out := make([]any, 0, len(ports))
	for _, p := range ports {
		out = append(out, p.ToDict())
	}
	return out
}

// FromDict rebuilds a record from its dictionary form. Unknown keys are
// ignored and absent lists are treated as empty. The result is normalized
// and validated like New.
func FromDict(d map[string]any) (Algorithm, error) {
	var w wireAlgorithm
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &w,
		TagName: "mapstructure",
	})
	if err != nil {
		return Algorithm{}, err
	}
	if err := decoder.Decode(d); err != nil {
		id, _ := d["id"].(string)
		return Algorithm{}, invalid(id, "malformed_dict", "cannot decode metadata: %v", err).WithCause(err)
	}

	a := Algorithm{
		ID:          w.ID,
		Name:        w.Name,
		Category:    w.Category,
		Description: w.Description,
		Prompt:      w.Prompt,
		Template:    w.Template,
		Imports:     w.Imports,
		Inputs:      fromWirePorts(w.Inputs),
		Outputs:     fromWirePorts(w.Outputs),
		NodeType:    w.NodeType,
	}
	for _, p := range w.Parameters {
		a.Parameters = append(a.Parameters, Parameter{
			Name:        p.Name,
			Type:        p.Type,
			Default:     p.Default,
			Label:       p.Label,
			Description: p.Description,
			Widget:      p.Widget,
			Options:     p.Options,
			Min:         p.Min,
			Max:         p.Max,
			Step:        p.Step,
			Priority:    Priority(p.Priority),
			Role:        p.Role,
		})
	}
	return New(a)
}

func fromWirePorts(ports []wirePort) []Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]Port, len(ports))
	for i, p := range ports {
		out[i] = Port(p)
	}
	return out
}

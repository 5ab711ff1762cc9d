package metadata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
)

//go:embed algorithm.schema.json
var algorithmSchema string

var schemaLoader = gojsonschema.NewStringLoader(algorithmSchema)

// MarshalJSON encodes the dictionary form
func (a Algorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDict())
}

// UnmarshalJSON decodes and validates a JSON document
func (a *Algorithm) UnmarshalJSON(data []byte) error {
	out, err := FromJSON(data)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// FromJSON checks data against the embedded JSON schema, then decodes it
// with FromDict. Numbers keep their integer or real nature.
func FromJSON(data []byte) (Algorithm, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Algorithm{}, invalid("", "malformed_json", "cannot read metadata document: %v", err).WithCause(err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return Algorithm{}, invalid("", "schema_violation", "metadata document does not match schema: %s",
			strings.Join(msgs, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var d map[string]any
	if err := dec.Decode(&d); err != nil {
		return Algorithm{}, invalid("", "malformed_json", "cannot decode metadata document: %v", err).WithCause(err)
	}
	return FromDict(d)
}

// ListFromJSON decodes a JSON array of metadata documents. Each element
// goes through UnmarshalJSON, so the first invalid one is reported as is.
func ListFromJSON(data []byte) ([]Algorithm, error) {
	var out []Algorithm
	if err := json.Unmarshal(data, &out); err != nil {
		var diag *catalogerrors.Error
		if stderrors.As(err, &diag) {
			return nil, diag
		}
		return nil, invalid("", "malformed_json", "cannot decode metadata list: %v", err).WithCause(err)
	}
	return out, nil
}

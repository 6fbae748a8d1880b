package workspace

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaDocument []byte

var rootSchema *jsonschema.Schema

func init() {
	js, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDocument))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource("workspace.json", js); err != nil {
		panic(err)
	}
	rootSchema, err = compiler.Compile("workspace.json")
	if err != nil {
		panic(err)
	}
}

// Schema returns the JSON Schema workspace documents are validated against.
func Schema() []byte {
	return append([]byte(nil), schemaDocument...)
}

// validate checks a JSON or YAML document. YAML is converted first so the
// validator sees JSON numbers.
func validate(name string, data []byte) error {
	payload, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("workspace: %s: %w: %w", name, errdefs.ErrInvalidArgument, err)
	}
	document, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("workspace: %s: %w: %w", name, errdefs.ErrInvalidArgument, err)
	}
	if err := rootSchema.Validate(document); err != nil {
		return fmt.Errorf("workspace: %s: %w: %w", name, errdefs.ErrInvalidArgument, err)
	}
	return nil
}

package domain

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = compileSchemas()

func compileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	names := []string{
		"workspace-v1",
		"machine-registration-v1",
		"agent-config-v1",
		"workflow-v1",
		"run-v1",
	}
	compiled := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("domain: missing embedded schema %s: %v", name, err))
		}
		if err := compiler.AddResource(name+".json", bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("domain: add schema %s: %v", name, err))
		}
		schema, err := compiler.Compile(name + ".json")
		if err != nil {
			panic(fmt.Sprintf("domain: compile schema %s: %v", name, err))
		}
		compiled[name] = schema
	}
	return compiled
}

// parseRecord validates raw against the named schema and decodes it into out.
func parseRecord(schemaName, record string, raw []byte, out any) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return &ParseError{Record: record, Err: err}
	}
	if err := schemas[schemaName].Validate(value); err != nil {
		return &ParseError{Record: record, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Record: record, Err: err}
	}
	return nil
}

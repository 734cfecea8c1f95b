package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// BuildDictionarySchema returns the JSON-Schema for dictionary override files as a generic map.
func BuildDictionarySchema() map[string]any {
	fields := []string{}
	for _, op := range constants.Operations {
		for _, f := range op.Fields() {
			fields = append(fields, string(f))
		}
	}
	ops := make([]string, 0, len(constants.Operations))
	for _, op := range constants.Operations {
		ops = append(ops, string(op))
	}

	entry := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"field", "variants"},
		"properties": map[string]any{
			"field": map[string]any{"type": "string", "enum": fields},
			"variants": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
	return map[string]any{
		"type":          "object",
		"propertyNames": map[string]any{"enum": ops},
		"additionalProperties": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    entry,
		},
	}
}

const dictionarySchemaURL = "dictionary.schema.json"

// dictionarySchema is compiled on first use and shared by every load.
var dictionarySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildDictionarySchema())
	if err != nil {
		return nil, fmt.Errorf("marshal dictionary schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(dictionarySchemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add dictionary schema: %w", err)
	}
	return compiler.Compile(dictionarySchemaURL)
})

// validateDictionaryDoc checks a decoded override document. doc must hold JSON types
// (map[string]any, []any, string), which is what json.Unmarshal produces.
func validateDictionaryDoc(doc any) error {
	schema, err := dictionarySchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			for len(verr.Causes) > 0 {
				verr = verr.Causes[0]
			}
			return fmt.Errorf("dictionary does not match schema at %q: %s", verr.InstanceLocation, verr.Message)
		}
		return fmt.Errorf("dictionary does not match schema: %w", err)
	}
	return nil
}

// ParseDictionaries decodes a YAML (or JSON) override document. Operations present in
// the document replace the built-in dictionary; the rest keep their defaults.
func ParseDictionaries(data []byte) (Dictionaries, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dictionary yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal dictionary: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	if err := validateDictionaryDoc(doc); err != nil {
		return nil, err
	}

	var overrides map[constants.Operation]Dictionary
	if err := json.Unmarshal(asJSON, &overrides); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	dicts := DefaultDictionaries()
	for op, d := range overrides {
		dicts[op] = d
	}
	return dicts, nil
}

// LoadDictionaries reads path; an empty path returns the built-in dictionaries.
func LoadDictionaries(path string) (Dictionaries, error) {
	if path == "" {
		return DefaultDictionaries(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return ParseDictionaries(data)
}

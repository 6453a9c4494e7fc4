package fields

import (
	"fmt"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

// ArrayCompiler handles the "array" type. Items compile into a single
// homogeneous subfield; without items an enum turns the array into a set of
// scalar choices.
var ArrayCompiler = &Compiler{
	name:      "Array",
	kind:      KindArray,
	supported: newKeySet("array"),
	ignore:    baseIgnore,
	allowed: baseAllowed.union(newKeySet(
		"enum", "items", "minItems", "maxItems", "definitions",
	)),
	extract: extractArray,
	expand:  expandArray,
}

func extractArray(params *schema.Map, available keySet) ([]node.Validator, map[string]any, error) {
	var validators []node.Validator
	attributes := make(map[string]any)

	if available.has("minItems") || available.has("maxItems") {
		min, err := intOf(params, "minItems", -1)
		if err != nil {
			return nil, nil, err
		}
		max, err := intOf(params, "maxItems", -1)
		if err != nil {
			return nil, nil, err
		}
		validators = append(validators, node.Length(min, max))
	}
	if available.has("default") {
		attributes[AttrDefault], _ = params.Get("default")
	}
	return validators, attributes, nil
}

func expandArray(c *compilation, f *Field, params *schema.Map, sc scope, _ FieldConfig) error {
	local, _ := params.Get("definitions")
	definitions, err := mergeDefinitions(sc.definitions, local)
	if err != nil {
		return err
	}
	f.Definitions = definitions

	if raw, ok := params.Get("items"); ok && raw != nil {
		items, ok := schema.AsMap(raw)
		if !ok {
			return fmt.Errorf("fields: items at %q must be a single schema object", f.Path)
		}
		subfield, err := c.fromSchema(items, "", false, scope{
			path:        sc.path,
			hasParent:   true,
			definitions: definitions,
		})
		if err != nil {
			return err
		}
		f.Items = subfield
		return nil
	}

	if params.Has("enum") {
		choices, err := enumOf(params)
		if err != nil {
			return fmt.Errorf("fields: array at %q: %w", f.Path, err)
		}
		f.Attributes[AttrChoices] = choices
	}
	return nil
}

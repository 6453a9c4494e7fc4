package fields

import (
	"fmt"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

// ObjectCompiler handles the "object" type. Properties compile in
// declaration order; allOf and dependentSchemas become projections. Objects
// take no default; their properties carry their own.
var ObjectCompiler = &Compiler{
	name:      "Object",
	kind:      KindObject,
	supported: newKeySet("object"),
	ignore:    baseIgnore.union(newKeySet("$id", "id", "$schema", "$comment")),
	allowed: newKeySet(
		"required", "properties", "definitions", "allOf", "dependentSchemas",
	),
	extract: extractObject,
	expand:  expandObject,
}

// projectionKeywords are compiled into whole-value checks, in this order.
var projectionKeywords = []string{"allOf", "dependentSchemas"}

func expandObject(c *compilation, f *Field, params *schema.Map, sc scope, fieldconf FieldConfig) error {
	local, _ := params.Get("definitions")
	definitions, err := mergeDefinitions(sc.definitions, local)
	if err != nil {
		return err
	}
	f.Definitions = definitions
	f.Fields = newOrderedFields()

	properties := schema.NewMap()
	if raw, ok := params.Get("properties"); ok && raw != nil {
		mapped, ok := schema.AsMap(raw)
		if !ok {
			return fmt.Errorf("fields: properties at %q must be an object", f.Path)
		}
		properties = mapped
	}

	required, err := requiredNames(params)
	if err != nil {
		return fmt.Errorf("fields: object at %q: %w", f.Path, err)
	}
	for name := range required {
		if !properties.Has(name) {
			c.logger.Debug().Str("path", f.Path).Str("property", name).Msg("required entry names no declared property")
		}
	}

	selected := selectProperties(properties.Keys(), fieldconf)
	child := scope{path: sc.path, hasParent: true, definitions: definitions}
	for _, name := range properties.Keys() {
		if !selected[name] {
			continue
		}
		raw, _ := properties.Get(name)
		definition, ok := schema.AsMap(raw)
		if !ok {
			return fmt.Errorf("fields: property %q at %q must be a schema object", name, f.Path)
		}
		field, err := c.fromSchema(definition, name, required[name], child)
		if err != nil {
			return err
		}
		f.Fields.add(field)
	}

	for _, keyword := range projectionKeywords {
		fragment, ok := params.Get(keyword)
		if !ok {
			continue
		}
		projection := NewProjection(keyword, fragment, c.schemaValidator()).withDefinitions(definitions)
		f.Projections = append(f.Projections, projection)
		c.logger.Debug().Str("path", f.Path).Str("keyword", keyword).Msg("compiled projection")
	}
	return nil
}

func extractObject(*schema.Map, keySet) ([]node.Validator, map[string]any, error) {
	return nil, make(map[string]any), nil
}

func requiredNames(params *schema.Map) (map[string]bool, error) {
	out := make(map[string]bool)
	raw, ok := params.Get("required")
	if !ok || raw == nil {
		return out, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("required must be a list of names")
	}
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("required must be a list of names")
		}
		out[name] = true
	}
	return out, nil
}

// selectProperties applies include (replacing the declared set) then exclude.
func selectProperties(declared []string, conf FieldConfig) map[string]bool {
	out := make(map[string]bool, len(declared))
	if conf.Include != nil {
		for _, name := range conf.Include {
			out[name] = true
		}
	} else {
		for _, name := range declared {
			out[name] = true
		}
	}
	for _, name := range conf.Exclude {
		delete(out, name)
	}
	return out
}

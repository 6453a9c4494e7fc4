package fields

import (
	"fmt"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

// NumberCompiler handles the "integer" and "number" types.
var NumberCompiler = &Compiler{
	name:      "Number",
	kind:      KindNumber,
	supported: newKeySet("integer", "number"),
	ignore:    baseIgnore,
	allowed: baseAllowed.union(newKeySet(
		"enum", "format", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
	)),
	extract: extractNumber,
}

// BooleanCompiler handles the "boolean" type.
var BooleanCompiler = &Compiler{
	name:      "Boolean",
	kind:      KindBoolean,
	supported: newKeySet("boolean"),
	ignore:    baseIgnore,
	allowed:   baseAllowed,
	extract:   extractDefault,
}

func extractNumber(params *schema.Map, available keySet) ([]node.Validator, map[string]any, error) {
	var validators []node.Validator
	attributes := make(map[string]any)

	if available.has("default") {
		attributes[AttrDefault], _ = params.Get("default")
	}
	if available.has("minimum") || available.has("maximum") ||
		available.has("exclusiveMinimum") || available.has("exclusiveMaximum") {
		bounds, err := numberRange(params)
		if err != nil {
			return nil, nil, err
		}
		validators = append(validators, bounds)
	}
	if available.has("enum") {
		choices, err := enumOf(params)
		if err != nil {
			return nil, nil, err
		}
		attributes[AttrChoices] = choices
	}
	return validators, attributes, nil
}

// numberRange reads the bound keywords. A boolean exclusiveMinimum or
// exclusiveMaximum (draft 4) turns the matching inclusive bound exclusive.
func numberRange(params *schema.Map) (NumberRange, error) {
	var out NumberRange
	var err error
	if out.Min, err = floatOf(params, "minimum"); err != nil {
		return out, err
	}
	if out.Max, err = floatOf(params, "maximum"); err != nil {
		return out, err
	}

	if flag, ok := boolOf(params, "exclusiveMinimum"); ok {
		if flag && out.Min != nil {
			out.ExclusiveMin, out.Min = out.Min, nil
		}
	} else if out.ExclusiveMin, err = floatOf(params, "exclusiveMinimum"); err != nil {
		return out, err
	}

	if flag, ok := boolOf(params, "exclusiveMaximum"); ok {
		if flag && out.Max != nil {
			out.ExclusiveMax, out.Max = out.Max, nil
		}
	} else if out.ExclusiveMax, err = floatOf(params, "exclusiveMaximum"); err != nil {
		return out, err
	}
	return out, nil
}

func floatOf(params *schema.Map, key string) (*float64, error) {
	value, ok := params.Get(key)
	if !ok || value == nil {
		return nil, nil
	}
	number, ok := toFloat(value)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &number, nil
}

func boolOf(params *schema.Map, key string) (bool, bool) {
	value, _ := params.Get(key)
	flag, ok := value.(bool)
	return flag, ok
}

func extractDefault(params *schema.Map, available keySet) ([]node.Validator, map[string]any, error) {
	attributes := make(map[string]any)
	if available.has("default") {
		attributes[AttrDefault], _ = params.Get("default")
	}
	return nil, attributes, nil
}

package fields

import (
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

// StringCompiler handles the "string" type.
var StringCompiler = &Compiler{
	name:      "String",
	kind:      KindString,
	supported: newKeySet("string"),
	ignore:    baseIgnore,
	allowed: baseAllowed.union(newKeySet(
		"format", "pattern", "enum", "minLength", "maxLength",
		"writeOnly", "contentMediaType", "contentEncoding",
	)),
	extract: extractString,
}

var formatValidators = map[string]func() node.Validator{
	"email": node.Email,
	"uuid":  node.UUID,
	"url":   node.URL,
	"uri":   node.URL,
}

func extractString(params *schema.Map, available keySet) ([]node.Validator, map[string]any, error) {
	var validators []node.Validator
	attributes := make(map[string]any)

	if available.has("minLength") || available.has("maxLength") {
		min, err := intOf(params, "minLength", -1)
		if err != nil {
			return nil, nil, err
		}
		max, err := intOf(params, "maxLength", -1)
		if err != nil {
			return nil, nil, err
		}
		validators = append(validators, node.Length(min, max))
	}
	if available.has("default") {
		attributes[AttrDefault], _ = params.Get("default")
	}
	if available.has("pattern") {
		pattern, ok := params.Get("pattern")
		text, isString := pattern.(string)
		if !ok || !isString {
			return nil, nil, fmt.Errorf("pattern must be a string")
		}
		validator, err := node.Regex(text)
		if err != nil {
			return nil, nil, err
		}
		validators = append(validators, validator)
	}
	if available.has("enum") {
		choices, err := enumOf(params)
		if err != nil {
			return nil, nil, err
		}
		attributes[AttrChoices] = choices
	}
	if available.has("writeOnly") {
		value, _ := params.Get("writeOnly")
		if flag, ok := value.(bool); ok && flag {
			attributes[AttrWriteOnly] = true
		}
	}
	if available.has("format") {
		format := stringOf(params, "format")
		attributes["format"] = format
		if build, ok := formatValidators[format]; ok {
			validators = append(validators, build())
		}
		if format == "binary" && available.has("contentMediaType") {
			attributes[AttrRenderKW] = map[string]any{"accept": mediaTypes(params)}
		}
	}
	return validators, attributes, nil
}

func mediaTypes(params *schema.Map) string {
	value, _ := params.Get("contentMediaType")
	switch typed := value.(type) {
	case string:
		return typed
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(typed)
	}
}

func enumOf(params *schema.Map) ([]any, error) {
	value, _ := params.Get("enum")
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("enum must be a list")
	}
	out := make([]any, len(items))
	for idx, item := range items {
		out[idx] = schema.Plain(item)
	}
	return out, nil
}

func intOf(params *schema.Map, key string, fallback int) (int, error) {
	value, ok := params.Get(key)
	if !ok {
		return fallback, nil
	}
	number, ok := toFloat(value)
	if !ok || number < math.MinInt64 || number >= math.MaxInt64 || number != math.Trunc(number) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(number), nil
}

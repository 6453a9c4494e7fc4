package openapi

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

const componentPrefix = "#/components/schemas/"

// OpenAPI-only annotations with no JSON Schema field counterpart.
var annotations = map[string]struct{}{
	"nullable":      {},
	"example":       {},
	"examples":      {},
	"deprecated":    {},
	"readOnly":      {},
	"xml":           {},
	"externalDocs":  {},
	"discriminator": {},
}

var (
	schemaMaps = map[string]struct{}{
		"properties":        {},
		"definitions":       {},
		"$defs":             {},
		"dependentSchemas":  {},
		"patternProperties": {},
	}
	schemaValues = map[string]struct{}{
		"items":                {},
		"not":                  {},
		"additionalProperties": {},
		"if":                   {},
		"then":                 {},
		"else":                 {},
		"contains":             {},
	}
	schemaLists = map[string]struct{}{
		"allOf":       {},
		"anyOf":       {},
		"oneOf":       {},
		"prefixItems": {},
	}
)

// convertSchema copies an OpenAPI schema object into plain JSON Schema.
// Annotations and x- extensions are dropped, nullable type lists collapse to
// their single non-null member and component references are rewritten to
// "#/definitions/<name>".
func convertSchema(in *schema.Map, logger zerolog.Logger) *schema.Map {
	out := schema.NewMap()
	for _, key := range in.Keys() {
		value, _ := in.Get(key)
		if _, ok := annotations[key]; ok || strings.HasPrefix(key, "x-") {
			logger.Debug().Str("keyword", key).Msg("dropped openapi annotation")
			continue
		}
		switch {
		case key == "$ref":
			if ref, ok := value.(string); ok && strings.HasPrefix(ref, componentPrefix) {
				value = "#/definitions/" + strings.TrimPrefix(ref, componentPrefix)
			}
		case key == "type":
			value = collapseType(value)
		case isKey(schemaMaps, key):
			value = convertEntries(value, logger)
		case isKey(schemaValues, key):
			if sub, ok := schema.AsMap(value); ok {
				value = convertSchema(sub, logger)
			}
		case isKey(schemaLists, key):
			value = convertList(value, logger)
		}
		out.Set(key, value)
	}
	return out
}

func convertEntries(value any, logger zerolog.Logger) any {
	entries, ok := schema.AsMap(value)
	if !ok {
		return value
	}
	out := schema.NewMap()
	for _, name := range entries.Keys() {
		entry, _ := entries.Get(name)
		if sub, ok := schema.AsMap(entry); ok {
			entry = convertSchema(sub, logger)
		}
		out.Set(name, entry)
	}
	return out
}

func convertList(value any, logger zerolog.Logger) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(list))
	for idx, entry := range list {
		if sub, ok := schema.AsMap(entry); ok {
			entry = convertSchema(sub, logger)
		}
		out[idx] = entry
	}
	return out
}

// collapseType turns ["string", "null"] into "string". Other lists are kept.
func collapseType(value any) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	var kept []any
	for _, entry := range list {
		if entry != "null" {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return value
}

func containsRef(value any) bool {
	switch typed := value.(type) {
	case *schema.Map:
		if typed.Has("$ref") {
			return true
		}
		for _, key := range typed.Keys() {
			child, _ := typed.Get(key)
			if containsRef(child) {
				return true
			}
		}
	case []any:
		for _, child := range typed {
			if containsRef(child) {
				return true
			}
		}
	}
	return false
}

func isKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

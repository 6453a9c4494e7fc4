package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const fragmentURL = "mem://schemafields/fragment.json"

// Error is a failed validation: the message and the location of the offending
// value as property (string) and index (int) components from the value root.
type Error struct {
	Message string
	Path    []any
	Keyword string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for idx, component := range e.Path {
		parts[idx] = fmt.Sprint(component)
	}
	return strings.Join(parts, ".") + ": " + e.Message
}

// JSONSchemaValidator validates values against JSON Schema fragments. Each
// distinct fragment is compiled once and reused; it is safe for concurrent
// use.
type JSONSchemaValidator struct {
	cache sync.Map
}

// NewJSONSchemaValidator returns a validator using draft 2020-12 semantics.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate checks value against fragment. A nil *Error means the value is
// valid; the error return is reserved for fragments that fail to compile.
func (v *JSONSchemaValidator) Validate(value any, fragment map[string]any) (*Error, error) {
	compiled, err := v.compile(fragment)
	if err != nil {
		return nil, err
	}
	instance, err := toJSONValue(value)
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validation: %w", err)
		}
		return errorFromValidation(verr), nil
	}
	return nil, nil
}

func (v *JSONSchemaValidator) compile(fragment map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(fragment)
	if err != nil {
		return nil, fmt.Errorf("validation: encode fragment: %w", err)
	}
	key := string(raw)
	if cached, ok := v.cache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(fragmentURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("validation: add fragment: %w", err)
	}
	compiled, err := compiler.Compile(fragmentURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile fragment: %w", err)
	}
	actual, _ := v.cache.LoadOrStore(key, compiled)
	return actual.(*jsonschema.Schema), nil
}

// toJSONValue round-trips value through encoding/json so deserialized Go
// values (int64, time.Time, typed slices) reach the validator in JSON shapes.
func toJSONValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("validation: encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: decode value: %w", err)
	}
	return out, nil
}

// errorFromValidation follows the first cause down to the most specific
// failure. A failing "required" keyword is addressed to the missing property
// rather than to the object that lacks it.
func errorFromValidation(verr *jsonschema.ValidationError) *Error {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	out := &Error{
		Message: strings.TrimSpace(leaf.Message),
		Path:    pointerComponents(leaf.InstanceLocation),
		Keyword: leaf.KeywordLocation,
	}
	if strings.HasSuffix(leaf.KeywordLocation, "/required") {
		if missing := missingProperties(leaf.Message); len(missing) > 0 {
			out.Path = append(out.Path, missing[0])
			out.Message = "Required"
		}
	}
	return out
}

var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)

func missingProperties(message string) []string {
	matches := quotedName.FindAllStringSubmatch(message, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, strings.ReplaceAll(match[1], `\'`, `'`))
	}
	return out
}

// pointerComponents splits a JSON pointer into path components. Tokens made
// of digits become int indexes.
func pointerComponents(pointer string) []any {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" || trimmed == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if isNumeric(segment) {
			if idx, err := strconv.Atoi(segment); err == nil {
				out = append(out, idx)
				continue
			}
		}
		out = append(out, segment)
	}
	return out
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

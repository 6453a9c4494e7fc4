package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// ErrNotFound reports an unknown component or operation.
var ErrNotFound = errors.New("openapi: not found")

// preferred request body media types, in order.
var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operation identifies one operation of the document.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Option customises Parse.
type Option func(*options)

type options struct {
	validate bool
	logger   zerolog.Logger
}

// WithValidation toggles kin-openapi document validation. Enabled by default.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithLogger sets the logger receiving debug events for stripped keywords.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Spec is a parsed OpenAPI document.
type Spec struct {
	api    *openapi3.T
	tree   *schema.Map
	logger zerolog.Logger
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	value, err := schema.Decode(raw)
	if err != nil {
		return false
	}
	obj, ok := schema.AsMap(value)
	if !ok {
		return false
	}
	return obj.Has("openapi") || obj.Has("swagger")
}

// Parse loads doc with kin-openapi.
func Parse(ctx context.Context, doc schema.Document, opts ...Option) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := options{validate: true, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if o.validate {
		if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	tree, err := doc.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return &Spec{api: api, tree: tree, logger: o.logger}, nil
}

// Components lists the component schema names in declaration order.
func (s *Spec) Components() []string {
	components, ok := lookup(s.tree, "components", "schemas")
	if !ok {
		return nil
	}
	return components.Keys()
}

// Operations lists every operation sorted by ID. Operations without an
// operationId are keyed "method:path".
func (s *Spec) Operations() []Operation {
	var out []Operation
	if s.api.Paths == nil {
		return out
	}
	for path, item := range s.api.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			out = append(out, Operation{ID: operationID(method, path, operation), Method: method, Path: path})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ComponentSchema returns the component schema name as a standalone JSON
// Schema document.
func (s *Spec) ComponentSchema(name string) (*schema.Map, error) {
	body, ok := lookup(s.tree, "components", "schemas", name)
	if !ok {
		return nil, fmt.Errorf("%w: component schema %q", ErrNotFound, name)
	}
	return s.document(body), nil
}

// RequestSchema returns the request body schema of the operation id. JSON
// bodies are preferred, then form encodings, then the first media type
// declared.
func (s *Spec) RequestSchema(id string) (*schema.Map, error) {
	for _, op := range s.Operations() {
		if op.ID != id {
			continue
		}
		operation := s.api.Paths.Value(op.Path).GetOperation(op.Method)
		body := operation.RequestBody
		if body == nil || body.Value == nil {
			return nil, fmt.Errorf("openapi: operation %q has no request body", id)
		}

		base := []string{"paths", op.Path, strings.ToLower(op.Method), "requestBody"}
		if body.Ref != "" {
			tokens, err := refTokens(body.Ref)
			if err != nil {
				return nil, err
			}
			base = tokens
		}
		mediaType, ok := pickMediaType(s.orderedContent(base), body.Value.Content)
		if !ok {
			return nil, fmt.Errorf("openapi: operation %q has no request body schema", id)
		}
		target, ok := lookup(s.tree, append(base, "content", mediaType, "schema")...)
		if !ok {
			return nil, fmt.Errorf("openapi: operation %q request schema is not an object", id)
		}
		return s.document(target), nil
	}
	return nil, fmt.Errorf("%w: operation %q", ErrNotFound, id)
}

func (s *Spec) orderedContent(base []string) []string {
	content, ok := lookup(s.tree, append(append([]string(nil), base...), "content")...)
	if !ok {
		return nil
	}
	return content.Keys()
}

// document converts body and attaches the converted component schemas when
// it references any.
func (s *Spec) document(body *schema.Map) *schema.Map {
	out := convertSchema(body, s.logger)
	if !containsRef(out) {
		return out
	}
	definitions := schema.NewMap()
	if components, ok := lookup(s.tree, "components", "schemas"); ok {
		for _, name := range components.Keys() {
			value, _ := components.Get(name)
			if component, ok := schema.AsMap(value); ok {
				definitions.Set(name, convertSchema(component, s.logger))
			}
		}
	}
	if out.Has("$ref") {
		// A bare reference keeps only the reference next to its definitions.
		ref, _ := out.Get("$ref")
		root := schema.NewMap()
		root.Set("$ref", ref)
		root.Set("definitions", definitions)
		return root
	}
	out.Set("definitions", definitions)
	return out
}

func operationID(method, path string, operation *openapi3.Operation) string {
	if operation != nil && operation.OperationID != "" {
		return operation.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func pickMediaType(ordered []string, content openapi3.Content) (string, bool) {
	for _, candidate := range mediaTypes {
		if mt, ok := content[candidate]; ok && mt != nil && mt.Schema != nil {
			return candidate, true
		}
	}
	for _, candidate := range ordered {
		if mt, ok := content[candidate]; ok && mt != nil && mt.Schema != nil {
			return candidate, true
		}
	}
	return "", false
}

func lookup(root *schema.Map, tokens ...string) (*schema.Map, bool) {
	current := root
	for _, token := range tokens {
		value, ok := current.Get(token)
		if !ok {
			return nil, false
		}
		next, ok := schema.AsMap(value)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// refTokens splits a local reference such as "#/components/requestBodies/Pet".
func refTokens(ref string) ([]string, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, fmt.Errorf("openapi: external reference %q is not supported", ref)
	}
	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	replacer := strings.NewReplacer("~1", "/", "~0", "~")
	for idx, part := range parts {
		parts[idx] = replacer.Replace(part)
	}
	return parts, nil
}

package fields

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
)

type keySet map[string]struct{}

func newKeySet(keys ...string) keySet {
	out := make(keySet, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out
}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s keySet) union(other keySet) keySet {
	out := make(keySet, len(s)+len(other))
	for key := range s {
		out[key] = struct{}{}
	}
	for key := range other {
		out[key] = struct{}{}
	}
	return out
}

func (s keySet) sorted() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

var (
	baseIgnore  = newKeySet("name", "type", "title", "description", "anyOf", "if", "then")
	baseAllowed = newKeySet("default")
)

type extractFunc func(params *schema.Map, available keySet) ([]node.Validator, map[string]any, error)

type expandFunc func(c *compilation, f *Field, params *schema.Map, sc scope, fieldconf FieldConfig) error

// Compiler turns a schema node of one of its supported types into a Field.
type Compiler struct {
	name      string
	kind      Kind
	supported keySet
	ignore    keySet
	allowed   keySet
	extract   extractFunc
	expand    expandFunc
}

// Name identifies the compiler in errors.
func (c *Compiler) Name() string { return c.name }

// Kind is the variant produced by the compiler.
func (c *Compiler) Kind() Kind { return c.kind }

// Supports reports whether tag is in the supported type set.
func (c *Compiler) Supports(tag string) bool { return c.supported.has(tag) }

// Allowed lists the accepted keywords, ignored ones included.
func (c *Compiler) Allowed() []string { return c.ignore.union(c.allowed).sorted() }

// Alias returns a copy of c that also supports tags, so one compiler can be
// registered under extra type names.
func (c *Compiler) Alias(tags ...string) *Compiler {
	clone := *c
	clone.supported = c.supported.union(newKeySet(tags...))
	return &clone
}

func (c *Compiler) illegal(available keySet) []string {
	var out []string
	for key := range available {
		if c.ignore.has(key) || c.allowed.has(key) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// scope is what a child inherits from the node compiling it.
type scope struct {
	path        string
	hasParent   bool
	definitions map[string]any
}

type compilation struct {
	registry  *Registry
	config    Config
	validator SchemaValidator
	logger    zerolog.Logger
	expanding []uintptr
}

func (c *compilation) schemaValidator() SchemaValidator {
	if c.validator == nil {
		c.validator = defaultSchemaValidator()
	}
	return c.validator
}

// fromSchema validates the keyword set of params, extracts constraints,
// applies the config entry at the field path and builds the Field.
func (c *compilation) fromSchema(params *schema.Map, name string, required bool, sc scope) (*Field, error) {
	path, err := joinPath(sc.path, sc.hasParent, name)
	if err != nil {
		return nil, err
	}

	params, depth, err := c.resolveRef(params, name, path, sc.definitions)
	defer c.release(depth)
	if err != nil {
		return nil, err
	}

	tag := stringOf(params, "type")
	if tag == "" {
		return nil, &UndefinedTypeError{Property: name}
	}
	compiler, err := c.registry.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if !compiler.Supports(tag) {
		return nil, &UnsupportedTypeError{Type: tag, Compiler: compiler.name}
	}

	available := newKeySet(params.Keys()...)
	if illegal := compiler.illegal(available); len(illegal) > 0 {
		return nil, &UnsupportedAttributeError{Keys: illegal, Compiler: compiler.name, Path: path}
	}

	var (
		validators []node.Validator
		attributes = make(map[string]any)
	)
	if compiler.extract != nil {
		validators, attributes, err = compiler.extract(params, available)
		if err != nil {
			return nil, fmt.Errorf("fields: %s at %q: %w", compiler.name, path, err)
		}
	}
	if compiler.kind == KindObject && len(validators) > 0 {
		return nil, fmt.Errorf("fields: object at %q cannot carry root validators", path)
	}

	// Unnamed subfields share their parent path, so only the parent reads
	// the entry.
	var fieldconf FieldConfig
	if name != "" || !sc.hasParent {
		fieldconf = c.config.Lookup(path)
	}
	validators = append(validators, fieldconf.Validators...)

	label := stringOf(params, "title")
	if label == "" {
		label = name
	}
	f := &Field{
		Kind:        compiler.kind,
		Type:        tag,
		Name:        name,
		Path:        path,
		Label:       label,
		Description: stringOf(params, "description"),
		Required:    required,
		Readonly:    fieldconf.Readonly,
		Validators:  validators,
		Attributes:  attributes,
		config:      c.config,
	}
	if format, ok := attributes["format"].(string); ok {
		f.Format = format
		delete(attributes, "format")
	}
	f.Missing = missingPolicy(required, fieldconf.Readonly, path)

	if compiler.expand != nil {
		child := scope{path: path, hasParent: true, definitions: sc.definitions}
		if err := compiler.expand(c, f, params, child, fieldconf); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().
		Str("path", path).
		Str("type", tag).
		Bool("required", required).
		Bool("readonly", f.Readonly).
		Msg("compiled field")
	return f, nil
}

// resolveRef substitutes the referenced definition body for a $ref wrapper.
// Chains are followed; depth is the number of definitions pushed on the
// expansion stack and must be released by the caller.
func (c *compilation) resolveRef(params *schema.Map, property, path string, definitions map[string]any) (*schema.Map, int, error) {
	depth := 0
	for {
		raw, ok := params.Get("$ref")
		if !ok {
			return params, depth, nil
		}
		ref, _ := raw.(string)
		if len(definitions) == 0 {
			return nil, depth, &MissingDefinitionsError{Ref: ref, Path: path}
		}
		key := ref[strings.LastIndex(ref, "/")+1:]
		target, ok := definitions[key]
		if !ok {
			return nil, depth, &UndefinedTypeError{Property: property, Ref: ref}
		}
		body, ok := schema.AsMap(target)
		if !ok {
			return nil, depth, fmt.Errorf("fields: definition %q is not a schema object", key)
		}
		id := identity(target)
		if slices.Contains(c.expanding, id) {
			return nil, depth, &RefCycleError{Ref: ref, Path: path}
		}
		c.expanding = append(c.expanding, id)
		depth++
		params = body
	}
}

func (c *compilation) release(depth int) {
	c.expanding = c.expanding[:len(c.expanding)-depth]
}

func identity(value any) uintptr {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		return rv.Pointer()
	default:
		return 0
	}
}

// missingPolicy picks what the runtime does with an absent value: required
// fields reject it, readonly ones read the current value from the bound data
// and the rest are dropped.
func missingPolicy(required, readonly bool, path string) node.Missing {
	switch {
	case required:
		return node.Required()
	case readonly:
		return node.Deferred(func(bindings node.Bindings) (any, bool) {
			return ResolvePath(path, bindings[node.BindingData])
		})
	default:
		return node.Drop()
	}
}

func stringOf(params *schema.Map, key string) string {
	value, _ := params.Get(key)
	text, _ := value.(string)
	return text
}

// mergeDefinitions overlays local on inherited. Local entries win.
func mergeDefinitions(inherited map[string]any, local any) (map[string]any, error) {
	if local == nil {
		return inherited, nil
	}
	entries, ok := schema.AsMap(local)
	if !ok {
		return nil, errors.New("fields: definitions must be an object")
	}
	if entries.Len() == 0 {
		return inherited, nil
	}
	out := make(map[string]any, len(inherited)+entries.Len())
	for key, value := range inherited {
		out[key] = value
	}
	for _, key := range entries.Keys() {
		value, _ := entries.Get(key)
		out[key] = value
	}
	return out, nil
}

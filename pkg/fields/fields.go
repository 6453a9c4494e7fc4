// Package fields compiles JSON Schema documents into trees of field
// definitions and materializes them into runtime nodes (package node).
//
// Compilation is a single recursive pass. Each node is dispatched on its
// "type" through a Registry to a Compiler, which rejects keywords it neither
// allows nor ignores, extracts structural validators and metadata, applies the
// caller's per-path Config and recurses into array items and object
// properties. $ref values resolve against the definitions threaded down from
// enclosing arrays and objects. allOf and dependentSchemas, which have no
// per-field representation, compile into Projections: whole-record checks run
// by a SchemaValidator whose error paths are mapped back onto the field they
// address.
package fields

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// Option customises a compilation.
type Option func(*options)

type options struct {
	name      string
	required  bool
	config    Config
	registry  *Registry
	validator SchemaValidator
	logger    zerolog.Logger
}

// WithName names the root field.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRequired marks the root field as required.
func WithRequired(required bool) Option {
	return func(o *options) {
		o.required = required
	}
}

// WithConfig supplies per-path overrides.
func WithConfig(config Config) Option {
	return func(o *options) {
		o.config = config
	}
}

// WithRegistry replaces the built-in type registry.
func WithRegistry(registry *Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithSchemaValidator replaces the validator used by projections.
func WithSchemaValidator(validator SchemaValidator) Option {
	return func(o *options) {
		o.validator = validator
	}
}

// WithLogger sets the logger receiving debug events for each compiled field.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{registry: builtin, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Compile builds the field tree for doc, which may be a *schema.Map or a
// map[string]any. A root-level $ref resolves against the root definitions,
// which stay in scope for the referenced body.
func Compile(doc any, opts ...Option) (*Field, error) {
	params, ok := schema.AsMap(doc)
	if !ok {
		return nil, errors.New("fields: schema must be a JSON object")
	}
	o := newOptions(opts)
	c := &compilation{
		registry:  o.registry,
		config:    o.config,
		validator: o.validator,
		logger:    o.logger,
	}

	root := scope{}
	if params.Has("$ref") {
		local, _ := params.Get("definitions")
		definitions, err := mergeDefinitions(nil, local)
		if err != nil {
			return nil, err
		}
		root.definitions = definitions
	}
	return c.fromSchema(params, o.name, o.required, root)
}

// SchemaFields compiles doc as the root object and returns its children.
// Non-nil include and exclude override the root config entry.
func SchemaFields(doc any, include, exclude []string, opts ...Option) (*OrderedFields, error) {
	o := newOptions(opts)
	rootConf := o.config.Lookup(o.name)
	if include != nil {
		rootConf.Include = include
	}
	if exclude != nil {
		rootConf.Exclude = exclude
	}
	config := o.config.With(o.name, rootConf)

	compileOpts := append(append([]Option(nil), opts...), WithConfig(config))
	root, err := Compile(doc, compileOpts...)
	if err != nil {
		return nil, err
	}
	if root.Kind != KindObject {
		return nil, fmt.Errorf("fields: SchemaFields needs an object schema, got %q", root.Type)
	}
	return root.Fields, nil
}

package fields

import (
	"github.com/goliatone/go-schemafields/pkg/node"
)

// Kind is the closed set of field variants.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Attribute keys stored on fields.
const (
	AttrDefault   = node.OptionDefault
	AttrChoices   = node.OptionChoices
	AttrRenderKW  = node.OptionRenderKW
	AttrWriteOnly = "writeOnly"
)

// Field is one compiled schema node. Variant data lives on the same struct:
// Format for strings, Items for arrays, Fields, Definitions and Projections
// for objects.
type Field struct {
	Kind        Kind
	Type        string
	Name        string
	Path        string
	Label       string
	Description string
	Required    bool
	Readonly    bool
	Format      string
	Validators  []node.Validator
	Attributes  map[string]any
	Missing     node.Missing

	Items       *Field
	Fields      *OrderedFields
	Definitions map[string]any
	Projections []*Projection

	config Config
}

// FieldConfig returns the config entry addressed by the field path.
func (f *Field) FieldConfig() FieldConfig {
	if f == nil {
		return FieldConfig{}
	}
	return f.config.Lookup(f.Path)
}

// Attribute returns a compiled attribute.
func (f *Field) Attribute(key string) (any, bool) {
	if f == nil || f.Attributes == nil {
		return nil, false
	}
	value, ok := f.Attributes[key]
	return value, ok
}

// Choices returns the enum values captured as the choices attribute.
func (f *Field) Choices() []any {
	value, ok := f.Attribute(AttrChoices)
	if !ok {
		return nil
	}
	choices, _ := value.([]any)
	return choices
}

// Walk visits f and every descendant depth first, in declaration order.
func (f *Field) Walk(fn func(*Field) error) error {
	if f == nil {
		return nil
	}
	if err := fn(f); err != nil {
		return err
	}
	if f.Items != nil {
		if err := f.Items.Walk(fn); err != nil {
			return err
		}
	}
	for _, child := range f.Fields.All() {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// OrderedFields keeps object children in declaration order.
type OrderedFields struct {
	names  []string
	byName map[string]*Field
}

func newOrderedFields() *OrderedFields {
	return &OrderedFields{byName: make(map[string]*Field)}
}

func (o *OrderedFields) add(field *Field) {
	if _, exists := o.byName[field.Name]; !exists {
		o.names = append(o.names, field.Name)
	}
	o.byName[field.Name] = field
}

// Get returns the child named name.
func (o *OrderedFields) Get(name string) (*Field, bool) {
	if o == nil {
		return nil, false
	}
	field, ok := o.byName[name]
	return field, ok
}

// Names returns child names in declaration order.
func (o *OrderedFields) Names() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.names...)
}

// All returns the children in declaration order.
func (o *OrderedFields) All() []*Field {
	if o == nil {
		return nil
	}
	out := make([]*Field, 0, len(o.names))
	for _, name := range o.names {
		out = append(out, o.byName[name])
	}
	return out
}

// Len returns the number of children.
func (o *OrderedFields) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

package fields

import (
	"strconv"

	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/schema"
	"github.com/goliatone/go-schemafields/pkg/validation"
)

// SchemaValidator validates a whole value against a JSON Schema fragment. A
// nil *validation.Error means the value is valid.
type SchemaValidator interface {
	Validate(value any, fragment map[string]any) (*validation.Error, error)
}

func defaultSchemaValidator() SchemaValidator {
	return validation.NewJSONSchemaValidator()
}

// Projection is a composite keyword the runtime cannot express per field. It
// re-validates the whole record and attributes failures to the field the
// error path points at.
type Projection struct {
	Keyword  string
	Fragment map[string]any

	validator SchemaValidator
}

// NewProjection wraps keyword and its fragment as
// {"type": "object", keyword: fragment}.
func NewProjection(keyword string, fragment any, validator SchemaValidator) *Projection {
	if validator == nil {
		validator = defaultSchemaValidator()
	}
	return &Projection{
		Keyword: keyword,
		Fragment: map[string]any{
			"type":  "object",
			keyword: schema.Plain(fragment),
		},
		validator: validator,
	}
}

// withDefinitions embeds definitions into the fragment when it holds a $ref,
// so references resolve inside the validator.
func (p *Projection) withDefinitions(definitions map[string]any) *Projection {
	if len(definitions) == 0 || !containsRef(p.Fragment[p.Keyword]) {
		return p
	}
	p.Fragment["definitions"] = schema.Plain(definitions)
	return p
}

func containsRef(value any) bool {
	switch typed := value.(type) {
	case map[string]any:
		if _, ok := typed["$ref"]; ok {
			return true
		}
		for _, child := range typed {
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

// Check validates value against the wrapped fragment.
func (p *Projection) Check(value any) (*validation.Error, error) {
	return p.validator.Validate(value, p.Fragment)
}

// Validator returns a record post-validator that projects failures onto
// root, the object field the projection belongs to.
func (p *Projection) Validator(root *Field) node.Validator {
	return node.ValidatorFunc(func(n *node.Node, value any) error {
		verr, err := p.Check(value)
		if err != nil {
			return err
		}
		if verr == nil {
			return nil
		}
		inv, err := Project(root, n, verr.Path, verr.Message)
		if err != nil {
			return err
		}
		return inv
	})
}

// Project walks path from root and returns an error tree for n with message
// attached to the addressed field. Components select object children by
// name and step into an array's item definition by index; the field kind
// decides, so a digit-named property is still a name. Components that match
// nothing fail with NodeNotFoundError.
func Project(root *Field, n *node.Node, path []any, message string) (*node.Invalid, error) {
	top := node.NewInvalid(n)
	current, field := top, root
	for _, component := range path {
		switch field.Kind {
		case KindObject:
			name, ok := componentName(component)
			child, found := field.Fields.Get(name)
			if !ok || !found {
				return nil, &NodeNotFoundError{Component: component, Path: path}
			}
			entry := &node.Invalid{Node: name, Pos: -1}
			current.Add(entry, -1)
			current, field = entry, child
		case KindArray:
			idx, ok := componentIndex(component)
			if !ok || field.Items == nil {
				return nil, &NodeNotFoundError{Component: component, Path: path}
			}
			entry := &node.Invalid{Node: itemName(field.Items), Pos: idx}
			current.Add(entry, idx)
			current, field = entry, field.Items
		default:
			return nil, &NodeNotFoundError{Component: component, Path: path}
		}
	}
	current.Messages = append(current.Messages, message)
	return top, nil
}

func componentName(component any) (string, bool) {
	switch typed := component.(type) {
	case string:
		return typed, true
	case int:
		return strconv.Itoa(typed), true
	default:
		return "", false
	}
}

func componentIndex(component any) (int, bool) {
	switch typed := component.(type) {
	case int:
		return typed, typed >= 0
	case string:
		idx, err := strconv.Atoi(typed)
		return idx, err == nil && idx >= 0 && strconv.Itoa(idx) == typed
	default:
		return 0, false
	}
}

func itemName(f *Field) string {
	if f.Name == "" {
		return "item"
	}
	return f.Name
}

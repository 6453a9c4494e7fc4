// Package node is the validation and deserialization runtime that compiled
// field trees materialize into. A Node is a leaf (string, number, boolean,
// temporal), a sequence with one child definition, a set of scalar choices,
// or a mapping of named children. Deserialize coerces a decoded JSON value,
// runs validators and aggregates every constraint violation into a single
// *Invalid tree addressable by dotted paths.
package node

// Kind selects how a node coerces values.
type Kind string

const (
	KindString   Kind = "string"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindDateTime Kind = "date-time"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBoolean  Kind = "boolean"
	KindSequence Kind = "sequence"
	KindSet      Kind = "set"
	KindMapping  Kind = "mapping"
)

// Common option keys read by presentation layers.
const (
	OptionReadonly = "readonly"
	OptionChoices  = "choices"
	OptionDefault  = "default"
	OptionFormat   = "format"
	OptionRenderKW = "render_kw"
	OptionWidget   = "widget"
)

// Node is a single runtime schema node.
type Node struct {
	Kind        Kind
	Name        string
	Title       string
	Description string
	Missing     Missing
	Validator   Validator
	// PostValidators run against a mapping once every child deserialized
	// without errors.
	PostValidators []Validator
	Children       []*Node
	Options        map[string]any
}

// Option configures a Node.
type Option func(*Node)

// WithName sets the node name.
func WithName(name string) Option {
	return func(n *Node) {
		n.Name = name
	}
}

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(n *Node) {
		n.Title = title
	}
}

// WithDescription sets the description.
func WithDescription(description string) Option {
	return func(n *Node) {
		n.Description = description
	}
}

// WithMissing sets the policy applied when the value is absent.
func WithMissing(missing Missing) Option {
	return func(n *Node) {
		n.Missing = missing
	}
}

// WithValidator sets the node validator.
func WithValidator(validator Validator) Option {
	return func(n *Node) {
		n.Validator = validator
	}
}

// WithPostValidator appends a validator executed after a mapping is built.
func WithPostValidator(validator Validator) Option {
	return func(n *Node) {
		if validator != nil {
			n.PostValidators = append(n.PostValidators, validator)
		}
	}
}

// WithChildren appends child nodes.
func WithChildren(children ...*Node) Option {
	return func(n *Node) {
		n.Children = append(n.Children, children...)
	}
}

// WithOption stores an auxiliary option (choices, default, render hints).
func WithOption(key string, value any) Option {
	return func(n *Node) {
		if n.Options == nil {
			n.Options = make(map[string]any)
		}
		n.Options[key] = value
	}
}

// New builds a node of the given kind.
func New(kind Kind, options ...Option) *Node {
	n := &Node{Kind: kind}
	for _, opt := range options {
		if opt != nil {
			opt(n)
		}
	}
	if n.Title == "" {
		n.Title = n.Name
	}
	return n
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Option returns an auxiliary option value.
func (n *Node) Option(key string) (any, bool) {
	if n == nil || n.Options == nil {
		return nil, false
	}
	value, ok := n.Options[key]
	return value, ok
}

// Readonly reports the readonly option.
func (n *Node) Readonly() bool {
	value, _ := n.Option(OptionReadonly)
	flag, _ := value.(bool)
	return flag
}

// Choices returns the choices option, if any.
func (n *Node) Choices() []any {
	value, ok := n.Option(OptionChoices)
	if !ok {
		return nil
	}
	choices, _ := value.([]any)
	return choices
}

// Bind returns a copy of the tree with every deferred missing value resolved
// against bindings. The receiver is left untouched.
func (n *Node) Bind(bindings Bindings) *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Missing = n.Missing.bind(bindings)
	if n.Options != nil {
		clone.Options = make(map[string]any, len(n.Options))
		for key, value := range n.Options {
			clone.Options[key] = value
		}
	}
	clone.PostValidators = append([]Validator(nil), n.PostValidators...)
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for idx, child := range n.Children {
			clone.Children[idx] = child.Bind(bindings)
		}
	}
	return &clone
}

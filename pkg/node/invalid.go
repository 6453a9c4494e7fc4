package node

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Invalid is the aggregated validation error for one node and its children.
// A sequence element carries its position in Pos; every other entry uses -1
// and is addressed by its node name.
type Invalid struct {
	Node     string
	Pos      int
	Messages []string
	Children []*Invalid
}

// NewInvalid creates an error for n with optional messages.
func NewInvalid(n *Node, messages ...string) *Invalid {
	name := ""
	if n != nil {
		name = n.Name
	}
	return &Invalid{Node: name, Pos: -1, Messages: messages}
}

// Invalidf creates an error for n with a formatted message.
func Invalidf(n *Node, format string, args ...any) *Invalid {
	return NewInvalid(n, fmt.Sprintf(format, args...))
}

// AsInvalid extracts an *Invalid from err.
func AsInvalid(err error) (*Invalid, bool) {
	var inv *Invalid
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

// Add attaches child. A non-negative pos marks it as a sequence element.
func (e *Invalid) Add(child *Invalid, pos int) {
	if child == nil {
		return
	}
	if pos >= 0 {
		child.Pos = pos
	}
	e.Children = append(e.Children, child)
}

// Merge folds other into e. Children sharing a key are merged recursively.
func (e *Invalid) Merge(other *Invalid) {
	if other == nil || other == e {
		return
	}
	e.Messages = append(e.Messages, other.Messages...)
	for _, child := range other.Children {
		if existing := e.child(child.keyname()); existing != nil {
			existing.Merge(child)
			continue
		}
		e.Children = append(e.Children, child)
	}
}

func (e *Invalid) child(key string) *Invalid {
	for _, child := range e.Children {
		if child.keyname() == key {
			return child
		}
	}
	return nil
}

func (e *Invalid) keyname() string {
	if e.Pos >= 0 {
		return strconv.Itoa(e.Pos)
	}
	return e.Node
}

// Asdict flattens the tree into dotted paths. Messages found along a path are
// joined with "; ".
func (e *Invalid) Asdict() map[string]string {
	out := make(map[string]string)
	e.collect(nil, nil, out)
	return out
}

func (e *Invalid) collect(keys, messages []string, out map[string]string) {
	if name := e.keyname(); name != "" {
		keys = append(keys[:len(keys):len(keys)], name)
	}
	messages = append(messages[:len(messages):len(messages)], e.Messages...)
	if len(e.Children) == 0 {
		key := strings.Join(keys, ".")
		if existing, ok := out[key]; ok && existing != "" {
			messages = append([]string{existing}, messages...)
		}
		out[key] = strings.Join(messages, "; ")
		return
	}
	for _, child := range e.Children {
		child.collect(keys, messages, out)
	}
}

// Error renders the flattened errors in a stable order.
func (e *Invalid) Error() string {
	flat := e.Asdict()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			parts = append(parts, flat[key])
			continue
		}
		parts = append(parts, key+": "+flat[key])
	}
	return "node: invalid: " + strings.Join(parts, "; ")
}

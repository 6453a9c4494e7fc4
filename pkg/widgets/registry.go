// Package widgets picks presentation widgets for materialized nodes. Rules
// read the node kind and the options the compiler attached (readonly,
// choices, format, writeOnly, render_kw).
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-schemafields/pkg/node"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetReadonly   = "readonly"
	WidgetPassword   = "password"
	WidgetFile       = "file"
	WidgetToggle     = "toggle"
	WidgetChips      = "chips"
	WidgetSelect     = "select"
	WidgetDate       = "date"
	WidgetTime       = "time"
	WidgetDateTime   = "datetime"
	WidgetCodeEditor = "code-editor"
	WidgetNumber     = "number"
	WidgetList       = "list"
	WidgetGroup      = "group"
	WidgetText       = "text"
)

// Matcher decides whether a widget should handle the supplied node.
type Matcher func(n *node.Node) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for nodes based on an explicit widget option or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for n. An explicit "widget" option is
// honoured before matcher evaluation.
func (r *Registry) Resolve(n *node.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	if explicit := explicitWidget(n); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(n) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate stores the resolved widget under the "widget" option of every
// node in the tree, keeping values already present.
func (r *Registry) Decorate(root *node.Node) {
	if root == nil {
		return
	}
	if widget, ok := r.Resolve(root); ok {
		if root.Options == nil {
			root.Options = make(map[string]any)
		}
		if _, exists := root.Options[node.OptionWidget]; !exists {
			root.Options[node.OptionWidget] = widget
		}
	}
	for _, child := range root.Children {
		r.Decorate(child)
	}
}

func explicitWidget(n *node.Node) string {
	value, ok := n.Option(node.OptionWidget)
	if !ok {
		return ""
	}
	widget, _ := value.(string)
	return strings.TrimSpace(widget)
}

func flag(n *node.Node, key string) bool {
	value, _ := n.Option(key)
	set, _ := value.(bool)
	return set
}

func format(n *node.Node) string {
	value, _ := n.Option(node.OptionFormat)
	text, _ := value.(string)
	return strings.ToLower(strings.TrimSpace(text))
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetReadonly, 100, func(n *node.Node) bool {
		return n.Readonly() && n.Kind != node.KindMapping && n.Kind != node.KindSequence
	})

	r.Register(WidgetPassword, 95, func(n *node.Node) bool {
		return n.Kind == node.KindString && (flag(n, "writeOnly") || format(n) == "password")
	})

	r.Register(WidgetFile, 92, func(n *node.Node) bool {
		if n.Kind != node.KindString {
			return false
		}
		if format(n) == "binary" {
			return true
		}
		_, ok := n.Option(node.OptionRenderKW)
		return ok
	})

	r.Register(WidgetToggle, 90, func(n *node.Node) bool {
		return n.Kind == node.KindBoolean
	})

	r.Register(WidgetChips, 80, func(n *node.Node) bool {
		return n.Kind == node.KindSet
	})

	r.Register(WidgetSelect, 70, func(n *node.Node) bool {
		if n.Kind == node.KindSequence || n.Kind == node.KindMapping {
			return false
		}
		return len(n.Choices()) > 0
	})

	r.Register(WidgetDate, 65, func(n *node.Node) bool { return n.Kind == node.KindDate })
	r.Register(WidgetTime, 65, func(n *node.Node) bool { return n.Kind == node.KindTime })
	r.Register(WidgetDateTime, 65, func(n *node.Node) bool { return n.Kind == node.KindDateTime })

	r.Register(WidgetCodeEditor, 60, func(n *node.Node) bool {
		if n.Kind != node.KindString {
			return false
		}
		switch format(n) {
		case "json", "yaml", "toml":
			return true
		}
		return false
	})

	r.Register(WidgetNumber, 50, func(n *node.Node) bool {
		return n.Kind == node.KindInteger || n.Kind == node.KindFloat
	})

	r.Register(WidgetList, 40, func(n *node.Node) bool { return n.Kind == node.KindSequence })
	r.Register(WidgetGroup, 40, func(n *node.Node) bool { return n.Kind == node.KindMapping })

	r.Register(WidgetText, 0, func(n *node.Node) bool { return n.Kind == node.KindString })
}

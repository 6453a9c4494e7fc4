package fields

import (
	"sort"
	"sync"
)

// Registry maps schema type tags to compilers. Lookups are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	compilers map[string]*Compiler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{compilers: make(map[string]*Compiler)}
}

// DefaultRegistry returns a new registry holding the built-in compilers:
// string, integer, number, boolean, array and object.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("string", StringCompiler)
	r.Register("integer", NumberCompiler)
	r.Register("number", NumberCompiler)
	r.Register("boolean", BooleanCompiler)
	r.Register("array", ArrayCompiler)
	r.Register("object", ObjectCompiler)
	return r
}

// builtin backs compilations that do not supply their own registry. It is
// never written after initialization.
var builtin = DefaultRegistry()

// Register binds tag to compiler. The last registration for a tag wins.
func (r *Registry) Register(tag string, compiler *Compiler) {
	if r == nil || compiler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compilers == nil {
		r.compilers = make(map[string]*Compiler)
	}
	r.compilers[tag] = compiler
}

// Lookup returns the compiler bound to tag.
func (r *Registry) Lookup(tag string) (*Compiler, error) {
	if r == nil {
		return nil, &UnsupportedTypeError{Type: tag}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	compiler, ok := r.compilers[tag]
	if !ok {
		return nil, &UnsupportedTypeError{Type: tag}
	}
	return compiler, nil
}

// Tags lists the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.compilers))
	for tag := range r.compilers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

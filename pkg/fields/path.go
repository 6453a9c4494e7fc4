package fields

import (
	"strings"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// ComputePath returns the dotted address of a field called name under parent.
// A nil parent yields name itself; an empty name inherits the parent path and
// fails with ErrNaming when that path is empty too.
func ComputePath(parent *Field, name string) (string, error) {
	if parent == nil {
		return name, nil
	}
	return joinPath(parent.Path, true, name)
}

func joinPath(parentPath string, hasParent bool, name string) (string, error) {
	switch {
	case !hasParent:
		return name, nil
	case name != "" && parentPath != "":
		return parentPath + "." + name, nil
	case name != "":
		return name, nil
	case parentPath != "":
		return parentPath, nil
	default:
		return "", ErrNaming
	}
}

// Fragments splits a path on dots.
func Fragments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// ResolvePath walks data one fragment at a time through nested mappings. The
// boolean is false as soon as a fragment is absent.
func ResolvePath(path string, data any) (any, bool) {
	current := data
	for _, fragment := range Fragments(path) {
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[fragment]
			if !ok {
				return nil, false
			}
			current = value
		case *schema.Map:
			value, ok := typed.Get(fragment)
			if !ok {
				return nil, false
			}
			current = value
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

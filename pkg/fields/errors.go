package fields

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrUnsupportedType       = errors.New("fields: unsupported type")
	ErrUnsupportedAttribute  = errors.New("fields: unsupported attribute")
	ErrMissingDefinitions    = errors.New("fields: missing definitions")
	ErrUndefinedType         = errors.New("fields: undefined type")
	ErrUnsupportedArrayShape = errors.New("fields: unsupported array shape")
	ErrNodeNotFound          = errors.New("fields: node not found")
	ErrNaming                = errors.New("fields: unnamed field with no parent path")
	ErrRefCycle              = errors.New("fields: ref cycle")
	ErrUnknownConfigPath     = errors.New("fields: unknown config path")
)

// UnsupportedTypeError reports a type tag that is not registered, or that the
// compiler bound to it does not support.
type UnsupportedTypeError struct {
	Type     string
	Compiler string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Compiler != "" {
		return fmt.Sprintf("fields: compiler %s does not support the %q type", e.Compiler, e.Type)
	}
	return fmt.Sprintf("fields: unsupported type %q", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// UnsupportedAttributeError names the schema keys a compiler neither allows
// nor ignores. Keys are sorted.
type UnsupportedAttributeError struct {
	Keys     []string
	Compiler string
	Path     string
}

func (e *UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("fields: unsupported attributes %s for %s at %q", strings.Join(e.Keys, ", "), e.Compiler, e.Path)
}

func (e *UnsupportedAttributeError) Is(target error) bool { return target == ErrUnsupportedAttribute }

// MissingDefinitionsError reports a $ref met while no definitions are in
// scope.
type MissingDefinitionsError struct {
	Ref  string
	Path string
}

func (e *MissingDefinitionsError) Error() string {
	return fmt.Sprintf("fields: $ref %q at %q with no definitions in scope", e.Ref, e.Path)
}

func (e *MissingDefinitionsError) Is(target error) bool { return target == ErrMissingDefinitions }

// UndefinedTypeError reports a property with neither a type nor a resolvable
// $ref.
type UndefinedTypeError struct {
	Property string
	Ref      string
}

func (e *UndefinedTypeError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("fields: undefined type for property %q (unresolved $ref %q)", e.Property, e.Ref)
	}
	return fmt.Sprintf("fields: undefined type for property %q", e.Property)
}

func (e *UndefinedTypeError) Is(target error) bool { return target == ErrUndefinedType }

// UnsupportedArrayShapeError is raised when an array with neither items nor
// enum is materialized.
type UnsupportedArrayShapeError struct {
	Path string
}

func (e *UnsupportedArrayShapeError) Error() string {
	return fmt.Sprintf("fields: unsupported array at %q: 'items' or 'enum' required", e.Path)
}

func (e *UnsupportedArrayShapeError) Is(target error) bool { return target == ErrUnsupportedArrayShape }

// NodeNotFoundError reports a validator error path that does not match the
// compiled tree.
type NodeNotFoundError struct {
	Component any
	Path      []any
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("fields: no node for component %v of error path %v", e.Component, e.Path)
}

func (e *NodeNotFoundError) Is(target error) bool { return target == ErrNodeNotFound }

// RefCycleError reports a $ref that re-enters a definition being expanded.
type RefCycleError struct {
	Ref  string
	Path string
}

func (e *RefCycleError) Error() string {
	return fmt.Sprintf("fields: ref cycle detected at %q (%s)", e.Path, e.Ref)
}

func (e *RefCycleError) Is(target error) bool { return target == ErrRefCycle }

// UnknownConfigPathError lists config keys that match no compiled field.
type UnknownConfigPathError struct {
	Paths []string
}

func (e *UnknownConfigPathError) Error() string {
	return fmt.Sprintf("fields: config paths match no field: %s", strings.Join(e.Paths, ", "))
}

func (e *UnknownConfigPathError) Is(target error) bool { return target == ErrUnknownConfigPath }

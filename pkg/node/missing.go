package node

// Bindings carries values supplied when a tree is bound, typically the current
// record under "data".
type Bindings map[string]any

// BindingData is the bindings key holding the externally supplied record.
const BindingData = "data"

// DeferredFunc resolves a missing value from bindings. Returning false means
// "no value", which behaves like Drop.
type DeferredFunc func(Bindings) (any, bool)

type missingKind int

const (
	missingRequired missingKind = iota
	missingDrop
	missingValue
	missingDeferred
)

// Missing is the policy a node applies when its value is absent. The zero
// value is Required.
type Missing struct {
	kind     missingKind
	value    any
	deferred DeferredFunc
}

// Required makes an absent value a validation error.
func Required() Missing {
	return Missing{kind: missingRequired}
}

// Drop omits absent values from the deserialized result.
func Drop() Missing {
	return Missing{kind: missingDrop}
}

// Value substitutes a fixed value for an absent one.
func Value(value any) Missing {
	return Missing{kind: missingValue, value: value}
}

// Deferred postpones the decision until Bind is called.
func Deferred(fn DeferredFunc) Missing {
	if fn == nil {
		return Drop()
	}
	return Missing{kind: missingDeferred, deferred: fn}
}

// IsRequired reports the Required policy.
func (m Missing) IsRequired() bool { return m.kind == missingRequired }

// IsDrop reports the Drop policy.
func (m Missing) IsDrop() bool { return m.kind == missingDrop }

// IsDeferred reports an unbound deferred policy.
func (m Missing) IsDeferred() bool { return m.kind == missingDeferred }

// Value returns the substitute value for the Value policy.
func (m Missing) Value() (any, bool) {
	if m.kind != missingValue {
		return nil, false
	}
	return m.value, true
}

func (m Missing) bind(bindings Bindings) Missing {
	if m.kind != missingDeferred {
		return m
	}
	value, ok := m.deferred(bindings)
	if !ok {
		return Drop()
	}
	return Value(value)
}

func (m Missing) String() string {
	switch m.kind {
	case missingRequired:
		return "required"
	case missingDrop:
		return "drop"
	case missingValue:
		return "value"
	default:
		return "deferred"
	}
}

package schema

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Map is a JSON object that remembers the order in which keys were declared.
// Compilers walk properties in that order; plain map[string]any inputs fall
// back to lexical order.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key, appending key on first insertion.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining keys.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for idx, existing := range m.keys {
		if existing == key {
			m.keys = append(m.keys[:idx:idx], m.keys[idx+1:]...)
			break
		}
	}
}

// Keys returns the keys in declaration order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a shallow copy.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		out.Set(key, m.values[key])
	}
	return out
}

// MarshalJSON writes the entries in declaration order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range m.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsMap views value as an ordered map. Plain maps are accepted and ordered
// lexically.
func AsMap(value any) (*Map, bool) {
	switch typed := value.(type) {
	case *Map:
		if typed == nil {
			return nil, false
		}
		return typed, true
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := &Map{keys: keys, values: make(map[string]any, len(typed))}
		for key, val := range typed {
			out.values[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Plain converts ordered maps (recursively) into map[string]any so values can
// be handed to libraries that expect the encoding/json shapes.
func Plain(value any) any {
	switch typed := value.(type) {
	case *Map:
		if typed == nil {
			return nil
		}
		out := make(map[string]any, len(typed.keys))
		for _, key := range typed.keys {
			out[key] = Plain(typed.values[key])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = Plain(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = Plain(val)
		}
		return out
	default:
		return typed
	}
}

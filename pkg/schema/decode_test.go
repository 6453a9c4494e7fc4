package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeJSON_PreservesKeyOrder(t *testing.T) {
	raw := []byte(`{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"number"},"mid":{"type":"boolean"}}}`)

	value, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	root, ok := value.(*Map)
	if !ok {
		t.Fatalf("expected *Map, got %T", value)
	}
	propsValue, _ := root.Get("properties")
	props := propsValue.(*Map)

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, props.Keys()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAML_PreservesKeyOrder(t *testing.T) {
	raw := []byte(`
type: object
properties:
  second:
    type: integer
    maximum: 20
  first:
    type: string
required: [second]
`)

	value, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	root := value.(*Map)
	if diff := cmp.Diff([]string{"type", "properties", "required"}, root.Keys()); diff != "" {
		t.Fatalf("root key order mismatch (-want +got):\n%s", diff)
	}
	propsValue, _ := root.Get("properties")
	props := propsValue.(*Map)
	if diff := cmp.Diff([]string{"second", "first"}, props.Keys()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"second": map[string]any{"type": "integer", "maximum": 20},
			"first":  map[string]any{"type": "string"},
		},
		"required": []any{"second"},
	}
	if diff := cmp.Diff(want, Plain(root)); diff != "" {
		t.Fatalf("plain value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{"type":"string"} {}`)); err == nil {
		t.Fatalf("expected trailing data error")
	}
}

func TestMap_MarshalJSONKeepsOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", 1)
	m.Set("a", []any{"x"})
	m.Set("b", 2)

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"b":2,"a":["x"]}`; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAsMap_SortsPlainMaps(t *testing.T) {
	m, ok := AsMap(map[string]any{"b": 1, "a": 2, "c": 3})
	if !ok {
		t.Fatalf("expected plain map to convert")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := AsMap("nope"); ok {
		t.Fatalf("expected non-map to be rejected")
	}
}

func TestFormatInference(t *testing.T) {
	paths := map[string]Format{
		"person.json":            FormatJSON,
		"dir/person.YML":         FormatYAML,
		"/api/schema.yaml?rev=2": FormatYAML,
		"/api/schema":            FormatAuto,
		"notes.txt#section":      FormatAuto,
	}
	for name, want := range paths {
		if got := FormatFromPath(name); got != want {
			t.Fatalf("path %q: expected %q, got %q", name, want, got)
		}
	}

	mediaTypes := map[string]Format{
		"application/json":                       FormatJSON,
		"application/schema+json; charset=utf-8": FormatJSON,
		"application/yaml":                       FormatYAML,
		"text/x-yaml":                            FormatYAML,
		"text/plain":                             FormatAuto,
		"":                                       FormatAuto,
	}
	for value, want := range mediaTypes {
		if got := FormatFromMediaType(value); got != want {
			t.Fatalf("media type %q: expected %q, got %q", value, want, got)
		}
	}

	value, err := FormatYAML.Decode([]byte(`{b: 1, a: 2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj, _ := value.(*Map)
	if diff := cmp.Diff([]string{"b", "a"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

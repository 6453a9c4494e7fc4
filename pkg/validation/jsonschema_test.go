package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONSchemaValidator_Valid(t *testing.T) {
	v := NewJSONSchemaValidator()
	fragment := map[string]any{
		"type":     "object",
		"required": []any{"name"},
	}
	verr, err := v.Validate(map[string]any{"name": "x", "age": int64(3)}, fragment)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verr != nil {
		t.Fatalf("expected value to be valid, got %v", verr)
	}
}

func TestJSONSchemaValidator_RequiredPointsAtProperty(t *testing.T) {
	v := NewJSONSchemaValidator()
	fragment := map[string]any{
		"type": "object",
		"dependentSchemas": map[string]any{
			"a": map[string]any{"required": []any{"b"}},
		},
	}
	verr, err := v.Validate(map[string]any{"a": "set"}, fragment)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verr == nil {
		t.Fatalf("expected a validation error")
	}
	if verr.Message != "Required" {
		t.Fatalf("expected Required message, got %q", verr.Message)
	}
	if diff := cmp.Diff([]any{"b"}, verr.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONSchemaValidator_IndexedPath(t *testing.T) {
	v := NewJSONSchemaValidator()
	fragment := map[string]any{
		"type": "object",
		"allOf": []any{
			map[string]any{
				"properties": map[string]any{
					"devices": map[string]any{
						"items": map[string]any{
							"properties": map[string]any{
								"kind": map[string]any{"enum": []any{"PC", "Laptop"}},
							},
						},
					},
				},
			},
		},
	}
	value := map[string]any{
		"devices": []any{
			map[string]any{"kind": "PC"},
			map[string]any{"kind": "Phone"},
		},
	}
	verr, err := v.Validate(value, fragment)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verr == nil {
		t.Fatalf("expected a validation error")
	}
	if diff := cmp.Diff([]any{"devices", 1, "kind"}, verr.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if verr.Message == "" {
		t.Fatalf("expected a message")
	}
}

func TestJSONSchemaValidator_CompileError(t *testing.T) {
	v := NewJSONSchemaValidator()
	if _, err := v.Validate("x", map[string]any{"type": 12}); err == nil {
		t.Fatalf("expected compile error for malformed fragment")
	}
}

func TestJSONSchemaValidator_CachesCompiledFragments(t *testing.T) {
	v := NewJSONSchemaValidator()
	fragment := map[string]any{"type": "string"}
	for i := 0; i < 2; i++ {
		if verr, err := v.Validate("ok", fragment); err != nil || verr != nil {
			t.Fatalf("validate: %v %v", verr, err)
		}
	}
	count := 0
	v.cache.Range(func(any, any) bool {
		count++
		return true
	})
	if count != 1 {
		t.Fatalf("expected one cached schema, got %d", count)
	}
}

func TestPointerComponents(t *testing.T) {
	cases := map[string][]any{
		"":           nil,
		"/":          nil,
		"/a/0/b":     {"a", 0, "b"},
		"/a~1b/c~0d": {"a/b", "c~d"},
		"#/items/12": {"items", 12},
	}
	for pointer, want := range cases {
		if diff := cmp.Diff(want, pointerComponents(pointer)); diff != "" {
			t.Fatalf("pointer %q mismatch (-want +got):\n%s", pointer, diff)
		}
	}
}

func TestMissingProperties(t *testing.T) {
	got := missingProperties(`missing properties: 'b', 'it\'s'`)
	if diff := cmp.Diff([]string{"b", "it's"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

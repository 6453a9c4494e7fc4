package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemafields/pkg/schema"
)

// LoadSchema reads a JSON or YAML schema fixture keeping key order.
func LoadSchema(t *testing.T, path string) *schema.Map {
	t.Helper()

	doc, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return doc
}

// LoadSchemaFromPath returns the decoded schema without requiring testing.T,
// so fixtures can be loaded from setup functions.
func LoadSchemaFromPath(path string) (*schema.Map, error) {
	if path == "" {
		return nil, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read schema: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc.ParseObject()
}

// MustReadFile returns the contents of a fixture file.
func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// DecodeSchema decodes an inline JSON or YAML schema.
func DecodeSchema(t *testing.T, text string) *schema.Map {
	t.Helper()

	value, err := schema.Decode([]byte(text))
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	doc, ok := schema.AsMap(value)
	if !ok {
		t.Fatalf("decode schema: %T is not an object", value)
	}
	return doc
}

// DecodeValue decodes an inline JSON value into encoding/json shapes.
func DecodeValue(t *testing.T, text string) any {
	t.Helper()

	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return out
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true if the golden was written.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareJSONGolden marshals got and compares it with the golden at path in
// their decoded form, returning a diff when they differ.
func CompareJSONGolden(t *testing.T, path string, got any) string {
	t.Helper()

	if WriteGolden(t, path, got) {
		return ""
	}
	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var normalized any
	if err := json.Unmarshal(payload, &normalized); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	return cmp.Diff(want, normalized)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

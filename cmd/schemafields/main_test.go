package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const accountSchema = `{
	"type": "object",
	"properties": {
		"email": {"type": "string", "format": "email"},
		"age": {"type": "integer", "minimum": 18},
		"nick": {"type": "string"}
	},
	"required": ["email"]
}`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, nil)
	return code, stdout.String(), stderr.String()
}

func TestRun_PrintsOutline(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFixture(t, dir, "account.json", accountSchema)

	code, stdout, stderr := runCLI(t, "-schema", schemaPath, "-name", "account")
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	var outline struct {
		Name   string `json:"name"`
		Fields []struct {
			Path string `json:"path"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(stdout), &outline); err != nil {
		t.Fatalf("decode outline: %v", err)
	}
	var paths []string
	for _, field := range outline.Fields {
		paths = append(paths, field.Path)
	}
	if diff := cmp.Diff([]string{"account.email", "account.age", "account.nick"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ValidatesData(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFixture(t, dir, "account.json", accountSchema)
	configPath := writeFixture(t, dir, "config.yaml", "nick:\n  readonly: true\n")

	valid := writeFixture(t, dir, "valid.json", `{"email": "jane@example.com", "age": 30, "nick": "jd"}`)
	code, stdout, stderr := runCLI(t, "-schema", schemaPath, "-config", configPath, "-data", valid)
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(stdout), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	want := map[string]any{"email": "jane@example.com", "age": float64(30), "nick": "jd"}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	invalid := writeFixture(t, dir, "invalid.yaml", "age: 12\n")
	code, stdout, _ = runCLI(t, "-schema", schemaPath, "-data", invalid)
	if code != exitInvalid {
		t.Fatalf("expected exit %d, got %d", exitInvalid, code)
	}
	var errs map[string]string
	if err := json.Unmarshal([]byte(stdout), &errs); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if errs["email"] != "Required" || !strings.Contains(errs["age"], "minimum") {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestRun_OpenAPIComponent(t *testing.T) {
	dir := t.TempDir()
	spec := writeFixture(t, dir, "api.yaml", `openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths: {}
components:
  schemas:
    Account:
      type: object
      required: [email]
      properties:
        email:
          type: string
          example: jane@example.com
`)
	code, stdout, stderr := runCLI(t, "-schema", spec, "-openapi-component", "Account")
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"path": "email"`) {
		t.Fatalf("expected the email field in the outline, got %s", stdout)
	}

	code, _, stderr = runCLI(t, "-schema", spec)
	if code != exitError || !strings.Contains(stderr, "Account") {
		t.Fatalf("expected a hint listing components, got %d: %s", code, stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFixture(t, dir, "account.json", accountSchema)
	badConfig := writeFixture(t, dir, "config.yaml", "ghost:\n  readonly: true\n")

	cases := map[string][]string{
		"missing schema":  {},
		"unknown flag":    {"-nope"},
		"missing file":    {"-schema", filepath.Join(dir, "none.json")},
		"unknown config":  {"-schema", schemaPath, "-config", badConfig},
		"unsupported key": {"-schema", writeFixture(t, dir, "bad.json", `{"type": "string", "oneOf": []}`)},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if code, _, _ := runCLI(t, args...); code != exitError {
				t.Fatalf("expected exit %d, got %d", exitError, code)
			}
		})
	}
}

package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemafields/pkg/fields"
	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/openapi"
	"github.com/goliatone/go-schemafields/pkg/schema"
	"github.com/goliatone/go-schemafields/pkg/testsupport"
)

func loadPetstore(t *testing.T) *openapi.Spec {
	t.Helper()
	raw := testsupport.MustReadFile(t, "testdata/petstore.yaml")
	doc := schema.MustNewDocument(schema.SourceFromFile("testdata/petstore.yaml"), raw)
	spec, err := openapi.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return spec
}

func invalidMap(t *testing.T, err error) map[string]string {
	t.Helper()
	inv, ok := node.AsInvalid(err)
	if !ok {
		t.Fatalf("expected *node.Invalid, got %v", err)
	}
	return inv.Asdict()
}

func TestDetect(t *testing.T) {
	if !openapi.Detect(testsupport.MustReadFile(t, "testdata/petstore.yaml")) {
		t.Fatalf("expected the petstore to be detected")
	}
	if openapi.Detect([]byte(`{"type": "object"}`)) {
		t.Fatalf("expected a plain schema not to be detected")
	}
}

func TestSpec_Listings(t *testing.T) {
	spec := loadPetstore(t)
	if diff := cmp.Diff([]string{"Pet", "Kind"}, spec.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	want := []openapi.Operation{
		{ID: "createOwner", Method: "POST", Path: "/owners"},
		{ID: "createPet", Method: "POST", Path: "/pets"},
		{ID: "listOwners", Method: "GET", Path: "/owners"},
		{ID: "put:/pets/{petId}/tags", Method: "PUT", Path: "/pets/{petId}/tags"},
	}
	if diff := cmp.Diff(want, spec.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestSpec_ComponentSchema(t *testing.T) {
	spec := loadPetstore(t)
	doc, err := spec.ComponentSchema("Pet")
	if err != nil {
		t.Fatalf("component: %v", err)
	}

	got := schema.Plain(doc).(map[string]any)
	properties := got["properties"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"$ref": "#/definitions/Kind"}, properties["kind"]); diff != "" {
		t.Fatalf("expected the reference rewritten (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"type": "string", "format": "date"}, properties["born"]); diff != "" {
		t.Fatalf("expected nullable dropped (-want +got):\n%s", diff)
	}
	definitions := got["definitions"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"type": "string", "enum": []any{"cat", "dog"}}, definitions["Kind"]); diff != "" {
		t.Fatalf("expected extensions dropped (-want +got):\n%s", diff)
	}

	root, err := fields.Compile(doc, fields.WithName("pet"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "kind", "born", "id"}, root.Fields.Names()); diff != "" {
		t.Fatalf("expected declaration order (-want +got):\n%s", diff)
	}
	kind, _ := root.Fields.Get("kind")
	if diff := cmp.Diff([]any{"cat", "dog"}, kind.Choices()); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}

	kindDoc, err := spec.ComponentSchema("Kind")
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if kindDoc.Has("definitions") {
		t.Fatalf("expected no definitions without references")
	}

	if _, err := spec.ComponentSchema("Ghost"); !errors.Is(err, openapi.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSpec_RequestSchema(t *testing.T) {
	spec := loadPetstore(t)

	pet, err := spec.RequestSchema("createPet")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if diff := cmp.Diff([]string{"$ref", "definitions"}, pet.Keys()); diff != "" {
		t.Fatalf("expected a bare reference with definitions (-want +got):\n%s", diff)
	}
	root, err := fields.Compile(pet)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	n, err := root.Materialize()
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	_, err = n.Deserialize(map[string]any{"name": "Rex"})
	if diff := cmp.Diff(map[string]string{"kind": "Required"}, invalidMap(t, err)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	owner, err := spec.RequestSchema("createOwner")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if owner.Has("x-internal") {
		t.Fatalf("expected extensions stripped")
	}
	root, err = fields.Compile(owner)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pets, _ := root.Fields.Get("pets")
	if pets.Items == nil || pets.Items.Fields.Len() != 4 {
		t.Fatalf("expected pet items resolved through definitions")
	}

	tags, err := spec.RequestSchema("put:/pets/{petId}/tags")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	root, err = fields.Compile(tags, fields.WithName("tags"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if kind, err := root.Factory(); err != nil || kind != "sequence" {
		t.Fatalf("expected a sequence, got %s (%v)", kind, err)
	}

	if _, err := spec.RequestSchema("listOwners"); err == nil {
		t.Fatalf("expected an error for an operation without a body")
	}
	if _, err := spec.RequestSchema("deletePet"); !errors.Is(err, openapi.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	ctx := context.Background()
	broken := schema.MustNewDocument(schema.SourceFromFile("broken.yaml"), []byte("openapi: 3.0.3\ninfo: {}\npaths: {}\n"))
	if _, err := openapi.Parse(ctx, broken); err == nil {
		t.Fatalf("expected validation to reject a document without a title")
	}
	if _, err := openapi.Parse(ctx, broken, openapi.WithValidation(false)); err != nil {
		t.Fatalf("expected the document to load without validation, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := openapi.Parse(cancelled, broken); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

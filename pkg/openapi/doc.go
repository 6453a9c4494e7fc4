// Package openapi extracts JSON Schema documents from OpenAPI 3 definitions.
// kin-openapi loads and validates the document and locates operations; the
// schema bodies themselves are copied from the order-preserving tree so
// properties keep their declaration order. Component schemas travel along as
// "definitions" and component references are rewritten to point there.
package openapi

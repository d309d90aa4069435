package spec

import (
	"errors"
	"testing"
)

func TestResolveRefsFillsParameterSchema(t *testing.T) {
	s := loadFixture(t)

	op, ok := s.Lookup("/users/{userId}/albums", "GET")
	if !ok {
		t.Fatal("Operation not found")
	}
	params := op.Parameters()
	if params[0].Name != "userId" {
		t.Fatalf("Expected userId first, got %s", params[0].Name)
	}
	// userId's schema is a $ref to components/schemas/UserId.
	if params[0].Type != "integer" {
		t.Errorf("Expected resolved type integer, got %q", params[0].Type)
	}
	if params[0].Minimum == nil || *params[0].Minimum != 1 {
		t.Errorf("Expected resolved minimum 1, got %v", params[0].Minimum)
	}
}

func TestResolveRefsResponseSchema(t *testing.T) {
	s := loadFixture(t)

	op, ok := s.Lookup("/posts/{postId}", "GET")
	if !ok {
		t.Fatal("Operation not found")
	}
	schema, ok := op.ResponseSchema("200")
	if !ok {
		t.Fatal("Expected a response schema for status 200")
	}
	if schema["type"] != "object" {
		t.Errorf("Expected object schema, got %v", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("Expected properties map, got %T", schema["properties"])
	}
	if _, ok := props["title"]; !ok {
		t.Error("Expected property title in resolved Post schema")
	}
}

func TestResolveRefsCircular(t *testing.T) {
	doc := []byte(`
openapi: 3.0.3
info:
  title: Circular
  version: 1.0.0
paths:
  /items/{itemId}:
    get:
      parameters:
        - name: itemId
          in: path
          required: true
          schema:
            $ref: '#/components/schemas/A'
      responses:
        '200':
          description: ok
components:
  schemas:
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/A'
`)
	s, err := Load(doc, FormatYAML)
	if err != nil {
		t.Fatalf("Load should tolerate circular chains, got %v", err)
	}

	var refErr *RefError
	if err := s.ResolveRefs(); !errors.As(err, &refErr) {
		t.Fatalf("Expected RefError for circular chain, got %v", err)
	}
}

func TestResolveRefsMissingTarget(t *testing.T) {
	doc := []byte(`
openapi: 3.0.3
info:
  title: Dangling
  version: 1.0.0
paths:
  /items:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
components:
  schemas:
    Present:
      type: object
`)
	s, err := Load(doc, FormatYAML)
	if err != nil {
		// Some builds already flag the dangling ref; either way the load
		// path must not hand back a usable catalog silently.
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Expected ParseError or RefError, got %v", err)
		}
		return
	}

	var refErr *RefError
	if err := s.ResolveRefs(); !errors.As(err, &refErr) {
		t.Fatalf("Expected RefError for missing target, got %v", err)
	}
}

func TestResolvedFlag(t *testing.T) {
	raw := []byte(`
openapi: 3.0.3
info:
  title: Flag
  version: 1.0.0
paths:
  /ping:
    get:
      responses:
        '200':
          description: ok
`)
	s, err := Load(raw, FormatYAML)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Resolved() {
		t.Error("Specification should not report resolved before ResolveRefs")
	}
	if err := s.ResolveRefs(); err != nil {
		t.Fatalf("ResolveRefs failed: %v", err)
	}
	if !s.Resolved() {
		t.Error("Specification should report resolved after ResolveRefs")
	}
}

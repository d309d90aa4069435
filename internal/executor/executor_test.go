package executor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
)

func fixtureOperation(t *testing.T, path, method string) spec.Operation {
	t.Helper()
	raw, err := os.ReadFile("../../tests/blog-api.json")
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	s, err := spec.Load(raw, spec.FormatJSON)
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	if err := s.ResolveRefs(); err != nil {
		t.Fatalf("Failed to resolve refs: %v", err)
	}
	op, ok := s.Lookup(path, method)
	if !ok {
		t.Fatalf("Operation %s %s not found", method, path)
	}
	return op
}

func TestBuildRequestDefaults(t *testing.T) {
	e := New(5 * time.Second)
	op := fixtureOperation(t, "/posts/{postId}", "GET")

	req, err := e.BuildRequest(context.Background(), op, "http://example.com", map[string]string{"postId": "3"}, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Method != http.MethodGet {
		t.Errorf("Expected GET, got %s", req.Method)
	}
	if req.URL.String() != "http://example.com/posts/3" {
		t.Errorf("Unexpected URL: %s", req.URL)
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Error("Expected Accept: application/json default header")
	}
	if req.Header.Get("User-Agent") == "" {
		t.Error("Expected a User-Agent header")
	}
}

func TestBuildRequestHeaderParameter(t *testing.T) {
	e := New(5 * time.Second)
	op := fixtureOperation(t, "/posts/{postId}", "GET")

	values := map[string]string{"postId": "3", "X-Request-Id": "req-99"}
	req, err := e.BuildRequest(context.Background(), op, "http://example.com", values, map[string]string{"Authorization": "Bearer abc"})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Header.Get("X-Request-Id") != "req-99" {
		t.Errorf("Expected header parameter set, got %q", req.Header.Get("X-Request-Id"))
	}
	if req.Header.Get("Authorization") != "Bearer abc" {
		t.Error("Expected extra header to be applied")
	}
}

func TestBuildRequestParameterErrorPassesThrough(t *testing.T) {
	e := New(5 * time.Second)
	op := fixtureOperation(t, "/posts/{postId}", "GET")

	var paramErr *spec.ParameterError
	_, err := e.BuildRequest(context.Background(), op, "http://example.com", map[string]string{"postId": "abc"}, nil)
	if !errors.As(err, &paramErr) {
		t.Fatalf("Expected ParameterError, got %v", err)
	}
}

func TestCallCapturesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/3" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":3,"title":"hello"}`))
	}))
	defer srv.Close()

	e := New(5 * time.Second)
	op := fixtureOperation(t, "/posts/{postId}", "GET")

	result, err := e.Call(context.Background(), op, srv.URL, map[string]string{"postId": "3"}, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", result.StatusCode)
	}
	decoded, ok := result.BodyJSON.(map[string]any)
	if !ok {
		t.Fatalf("Expected decoded JSON object, got %T", result.BodyJSON)
	}
	if decoded["title"] != "hello" {
		t.Errorf("Unexpected body: %v", decoded)
	}
	if result.Headers["Content-Type"] != "application/json" {
		t.Errorf("Expected captured content type, got %v", result.Headers)
	}
	if result.Duration <= 0 {
		t.Error("Expected a positive duration")
	}
}

func TestCallNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	e := New(5 * time.Second)
	op := fixtureOperation(t, "/posts", "GET")

	result, err := e.Call(context.Background(), op, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.BodyJSON != nil {
		t.Errorf("Expected nil BodyJSON for non-JSON body, got %v", result.BodyJSON)
	}
	if string(result.Body) != "plain text" {
		t.Errorf("Expected raw body preserved, got %q", result.Body)
	}
}

package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseMappingFencedJSON(t *testing.T) {
	reply := "Here is the mapping:\n```json\n{\"columns\": {\"id\": \"id\", \"title\": \"title\"}}\n```\nDone."
	m, err := ParseMapping(reply)
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if m.Columns["title"] != "title" {
		t.Errorf("Unexpected mapping: %+v", m.Columns)
	}
}

func TestParseMappingBareObject(t *testing.T) {
	reply := `{"columns": {"city": "address.city"}}`
	m, err := ParseMapping(reply)
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if m.Columns["city"] != "address.city" {
		t.Errorf("Unexpected mapping: %+v", m.Columns)
	}
}

func TestParseMappingNoMapping(t *testing.T) {
	if _, err := ParseMapping("sorry, I don't know"); err == nil {
		t.Error("Expected error for reply without a mapping")
	}
}

func TestMappingApply(t *testing.T) {
	m := &Mapping{Columns: map[string]string{
		"id":    "id",
		"city":  "address.city",
		"gone":  "missing.field",
		"title": "title",
	}}
	row := m.Apply(map[string]any{
		"id":      float64(3),
		"title":   "hello",
		"address": map[string]any{"city": "Berlin"},
	})
	if row["city"] != "Berlin" || row["title"] != "hello" {
		t.Errorf("Unexpected row: %v", row)
	}
	if _, ok := row["gone"]; ok {
		t.Error("Missing fields must be skipped, not included")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient(""); err == nil {
		t.Error("Expected error when no API key is configured")
	}
}

func TestGenerateTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Missing API key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Missing anthropic-version header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "{\"columns\": {\"id\": \"id\"}}"}]}`))
	}))
	defer srv.Close()
	t.Setenv("ANTHROPIC_API_ENDPOINT", srv.URL)

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	schema := map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "integer"}}}
	m, err := c.GenerateTemplate(context.Background(), "blog-api", schema, "CREATE TABLE posts (id INTEGER)", "posts")
	if err != nil {
		t.Fatalf("GenerateTemplate failed: %v", err)
	}
	if m.Table != "posts" || m.Columns["id"] != "id" {
		t.Errorf("Unexpected mapping: %+v", m)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad model"}}`))
	}))
	defer srv.Close()
	t.Setenv("ANTHROPIC_API_ENDPOINT", srv.URL)

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := c.complete(context.Background(), "hi"); err == nil {
		t.Error("Expected API error to surface")
	}
}

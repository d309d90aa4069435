// Package executor performs the live HTTP GET for a resolved call and
// captures the response for display and persistence.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
)

const userAgent = "interop-template-generator/1.0"

// Result captures one executed call.
type Result struct {
	URL        string
	StatusCode int
	Headers    map[string]string
	Body       []byte
	// BodyJSON is the decoded body when the response parses as JSON, nil
	// otherwise. Callers render Body directly in that case.
	BodyJSON any
	Duration time.Duration
}

// Executor builds and runs GET requests against a live server.
type Executor struct {
	client *http.Client
}

// New creates an executor with the given per-request timeout.
func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		client: &http.Client{Timeout: timeout},
	}
}

// BuildRequest builds the HTTP request for an operation: the URL comes
// from spec.BuildURL, header parameters with supplied values are set on
// the request (validated through the same coercion as path and query),
// and extra caller headers are applied last so they win.
func (e *Executor) BuildRequest(ctx context.Context, op spec.Operation, baseURL string, values map[string]string, extraHeaders map[string]string) (*http.Request, error) {
	fullURL, err := spec.BuildURL(op, baseURL, values)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	for _, p := range op.Parameters() {
		if p.In != "header" {
			continue
		}
		raw, ok := values[p.Name]
		if !ok || raw == "" {
			continue
		}
		coerced, err := spec.Coerce(p, raw)
		if err != nil {
			return nil, err
		}
		req.Header.Set(p.Name, coerced)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Execute runs a built request and captures status, headers and body.
// Network failures surface as-is; they are not part of the resolver's
// error taxonomy.
func (e *Executor) Execute(req *http.Request) (*Result, error) {
	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &Result{
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
		Duration:   elapsed,
	}
	var decoded any
	if json.Unmarshal(body, &decoded) == nil {
		result.BodyJSON = decoded
	}
	return result, nil
}

// Call is the one-shot path: build the request and execute it.
func (e *Executor) Call(ctx context.Context, op spec.Operation, baseURL string, values map[string]string, extraHeaders map[string]string) (*Result, error) {
	req, err := e.BuildRequest(ctx, op, baseURL, values, extraHeaders)
	if err != nil {
		return nil, err
	}
	return e.Execute(req)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

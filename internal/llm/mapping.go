package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// Mapping is a declarative conversion template: table column to response
// field path. Paths use dots for nesting ("address.city").
type Mapping struct {
	Table   string            `json:"table,omitempty"`
	Columns map[string]string `json:"columns"`
}

// ParseMapping extracts the JSON mapping from a model reply. Fenced code
// blocks are preferred; a bare JSON object is the fallback.
func ParseMapping(reply string) (*Mapping, error) {
	candidates := []string{
		fencedBlock(reply, "```json"),
		fencedBlock(reply, "```"),
		braceSpan(reply),
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var m Mapping
		if err := json.Unmarshal([]byte(candidate), &m); err != nil {
			continue
		}
		if len(m.Columns) > 0 {
			return &m, nil
		}
	}
	return nil, errors.New("no mapping object found in reply")
}

// Apply converts one decoded API response object into a row using the
// mapping. Missing fields are skipped rather than erroring; the caller
// decides whether a sparse row is acceptable.
func (m *Mapping) Apply(response map[string]any) map[string]any {
	row := map[string]any{}
	for column, path := range m.Columns {
		if v, ok := lookupPath(response, path); ok {
			row[column] = v
		}
	}
	return row
}

func lookupPath(obj map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = obj
	for _, part := range parts {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func fencedBlock(text, fence string) string {
	start := strings.Index(text, fence)
	if start < 0 {
		return ""
	}
	start += len(fence)
	end := strings.Index(text[start:], "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}

func braceSpan(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

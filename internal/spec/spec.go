// Package spec turns an OpenAPI 3.x document into an immutable catalog of
// callable operations. The catalog is an explicit value: callers hold it,
// replace it wholesale on reload, and pass it into every resolver call.
package spec

import (
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Specification is the parsed catalog of a single OpenAPI document.
// It is read-only after Load and ResolveRefs.
type Specification struct {
	Title       string
	Version     string
	Description string

	servers  []string
	ops      []Operation
	model    *v3.Document
	resolved bool
}

// Operation is one HTTP-method entry under one path.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Description string

	// params is ordered: path parameters in template left-to-right order,
	// then query parameters in declaration order, then header parameters.
	params    []Parameter
	responses []ResponseRef
}

// Parameter describes a single operation parameter and the subset of its
// schema the tool validates against.
type Parameter struct {
	Name        string
	In          string // "path", "query" or "header"
	Required    bool
	Description string

	// Primitive type from the parameter schema. Empty or unrecognized
	// values fall back to opaque string handling in coercion.
	Type   string
	Format string

	Minimum   *float64
	Maximum   *float64
	MinLength *int64
	MaxLength *int64

	proxy *base.SchemaProxy
}

// ResponseRef points at the response schema declared for one status code.
type ResponseRef struct {
	Status string
	Ref    string // "#/components/schemas/<Name>" when the schema is a pointer

	proxy  *base.SchemaProxy
	schema *base.Schema // filled by ResolveRefs (or at load for inline schemas)
}

// ResolvedCall is one concrete invocation: an operation plus the raw
// string values supplied for its parameters and the URL built from them.
type ResolvedCall struct {
	Operation Operation
	Values    map[string]string
	URL       string
}

// Servers returns the server URLs declared in the document.
func (s *Specification) Servers() []string {
	out := make([]string, len(s.servers))
	copy(out, s.servers)
	return out
}

// BaseURL returns the first server URL, the base for built calls.
// Empty when the document declares no servers.
func (s *Specification) BaseURL() string {
	if len(s.servers) == 0 {
		return ""
	}
	return s.servers[0]
}

// Operations returns the catalog in document order. Repeated calls return
// an identical sequence. When methods are given, only operations of those
// methods are included.
func (s *Specification) Operations(methods ...string) []Operation {
	if len(methods) == 0 {
		out := make([]Operation, len(s.ops))
		copy(out, s.ops)
		return out
	}
	want := make(map[string]bool, len(methods))
	for _, m := range methods {
		want[normalizeMethod(m)] = true
	}
	var out []Operation
	for _, op := range s.ops {
		if want[op.Method] {
			out = append(out, op)
		}
	}
	return out
}

// Lookup finds the operation registered for a path template and method.
func (s *Specification) Lookup(path, method string) (Operation, bool) {
	method = normalizeMethod(method)
	for _, op := range s.ops {
		if op.Path == path && op.Method == method {
			return op, true
		}
	}
	return Operation{}, false
}

// Parameters returns the ordered parameter list: path parameters first in
// template left-to-right order, then query parameters in declaration
// order, then header parameters.
func (op Operation) Parameters() []Parameter {
	out := make([]Parameter, len(op.params))
	copy(out, op.params)
	return out
}

// Responses returns the declared response schema references per status code.
func (op Operation) Responses() []ResponseRef {
	out := make([]ResponseRef, len(op.responses))
	copy(out, op.responses)
	return out
}

// ResponseSchema returns a plain map rendering of the response schema for
// the given status code (one level of properties), suitable for display
// and for template-generation prompts. Falls back from the exact status
// to 200 then 201 when status is empty.
func (op Operation) ResponseSchema(status string) (map[string]any, bool) {
	candidates := []string{status}
	if status == "" {
		candidates = []string{"200", "201"}
	}
	for _, want := range candidates {
		for _, r := range op.responses {
			if r.Status == want && r.schema != nil {
				return schemaToMap(r.schema, 0), true
			}
		}
	}
	return nil, false
}

// schemaToMap flattens a libopenapi schema into plain maps. Depth is
// bounded so self-referencing property graphs cannot recurse forever.
func schemaToMap(sch *base.Schema, depth int) map[string]any {
	if sch == nil || depth > 3 {
		return nil
	}
	out := map[string]any{}
	if len(sch.Type) > 0 {
		out["type"] = sch.Type[0]
	}
	if sch.Format != "" {
		out["format"] = sch.Format
	}
	if len(sch.Required) > 0 {
		out["required"] = append([]string(nil), sch.Required...)
	}
	if sch.Properties != nil && sch.Properties.Len() > 0 {
		props := map[string]any{}
		for pair := sch.Properties.First(); pair != nil; pair = pair.Next() {
			if child := pair.Value().Schema(); child != nil {
				props[pair.Key()] = schemaToMap(child, depth+1)
			}
		}
		out["properties"] = props
	}
	if sch.Items != nil && sch.Items.IsA() && sch.Items.A != nil {
		if item := sch.Items.A.Schema(); item != nil {
			out["items"] = schemaToMap(item, depth+1)
		}
	}
	return out
}

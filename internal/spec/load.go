package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Format hints at the serialization of the raw document. libopenapi
// detects the format itself; the hint only allows failing early with a
// precise message when the caller already knows what they pasted.
type Format string

const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// methodOrder fixes the per-path ordering of operations so the catalog is
// stable across loads of the same document.
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Load parses an OpenAPI 3.x document (YAML or JSON) into a Specification.
// Paths keep their document order; within one path, operations follow the
// fixed methodOrder rather than the order of the method keys, which keeps
// the catalog identical across loads of the same document.
// It fails with *ParseError when the text is not parseable, when the
// document lacks the required info or paths keys, or when a path template
// and its declared path parameters disagree. It does not expand $ref
// pointers; call ResolveRefs on the result before building URLs.
func Load(raw []byte, hint Format) (*Specification, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &ParseError{Message: "document is empty"}
	}
	if hint == FormatJSON && !json.Valid(raw) {
		return nil, &ParseError{Message: "document is not valid JSON"}
	}

	document, err := libopenapi.NewDocument(raw)
	if err != nil {
		return nil, &ParseError{Message: "failed to parse OpenAPI document", Cause: err}
	}

	model, buildErrs := document.BuildV3Model()
	err = errors.Join(buildErrs...)
	// Circular references surface as build errors but the catalog is still
	// enumerable; ResolveRefs reports them with the exact failing chain.
	if err != nil && !onlyCircular(err) {
		return nil, &ParseError{Message: "failed to build OpenAPI v3 model", Cause: err}
	}
	if model == nil {
		return nil, &ParseError{Message: "failed to build OpenAPI v3 model"}
	}

	doc := &model.Model
	if doc.Info == nil {
		return nil, &ParseError{Message: "document is missing required key: info"}
	}
	if doc.Paths == nil || doc.Paths.PathItems == nil {
		return nil, &ParseError{Message: "document is missing required key: paths"}
	}

	s := &Specification{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		Description: doc.Info.Description,
		model:       doc,
	}
	for _, server := range doc.Servers {
		if server != nil && server.URL != "" {
			s.servers = append(s.servers, server.URL)
		}
	}

	// Iterate over the ordered path map so the catalog keeps document order.
	for pair := doc.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		if item == nil {
			continue
		}
		byMethod := map[string]*v3.Operation{
			"GET":     item.Get,
			"POST":    item.Post,
			"PUT":     item.Put,
			"PATCH":   item.Patch,
			"DELETE":  item.Delete,
			"HEAD":    item.Head,
			"OPTIONS": item.Options,
		}
		for _, method := range methodOrder {
			entry := byMethod[method]
			if entry == nil {
				continue
			}
			op, err := buildOperation(path, method, entry)
			if err != nil {
				return nil, err
			}
			s.ops = append(s.ops, op)
		}
	}

	return s, nil
}

func buildOperation(path, method string, raw *v3.Operation) (Operation, error) {
	op := Operation{
		Path:        path,
		Method:      method,
		OperationID: raw.OperationId,
		Summary:     raw.Summary,
		Description: raw.Description,
	}

	declared := map[string]Parameter{}
	var query, header []Parameter
	for _, p := range raw.Parameters {
		if p == nil {
			continue
		}
		param := Parameter{
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required != nil && *p.Required,
			Description: p.Description,
			proxy:       p.Schema,
		}
		if p.Schema != nil && !p.Schema.IsReference() {
			param.fillSchema(p.Schema.Schema())
		}
		switch p.In {
		case "path":
			param.Required = true
			if _, dup := declared[p.Name]; dup {
				return Operation{}, &ParseError{Message: fmt.Sprintf(
					"path %s: path parameter %q declared more than once", path, p.Name)}
			}
			declared[p.Name] = param
		case "query":
			query = append(query, param)
		case "header":
			header = append(header, param)
		}
	}

	// The path-template placeholders and the declared path parameters must
	// match exactly, both ways.
	placeholders := templateParams(path)
	seen := map[string]bool{}
	for _, name := range placeholders {
		if seen[name] {
			return Operation{}, &ParseError{Message: fmt.Sprintf(
				"path %s: placeholder {%s} appears more than once", path, name)}
		}
		seen[name] = true
		param, ok := declared[name]
		if !ok {
			return Operation{}, &ParseError{Message: fmt.Sprintf(
				"path %s: placeholder {%s} has no declared path parameter", path, name)}
		}
		op.params = append(op.params, param)
	}
	for name := range declared {
		if !seen[name] {
			return Operation{}, &ParseError{Message: fmt.Sprintf(
				"path %s: path parameter %q has no placeholder in the template", path, name)}
		}
	}

	op.params = append(op.params, query...)
	op.params = append(op.params, header...)
	op.responses = buildResponses(raw.Responses)
	return op, nil
}

// buildResponses records the JSON response schema reference per status code.
func buildResponses(responses *v3.Responses) []ResponseRef {
	if responses == nil || responses.Codes == nil {
		return nil
	}
	var out []ResponseRef
	for pair := responses.Codes.First(); pair != nil; pair = pair.Next() {
		status := pair.Key()
		response := pair.Value()
		if response == nil || response.Content == nil {
			continue
		}
		for media := response.Content.First(); media != nil; media = media.Next() {
			if !strings.Contains(media.Key(), "json") {
				continue
			}
			mt := media.Value()
			if mt == nil || mt.Schema == nil {
				continue
			}
			ref := ResponseRef{Status: status, proxy: mt.Schema}
			if mt.Schema.IsReference() {
				ref.Ref = mt.Schema.GetReference()
			} else {
				ref.schema = mt.Schema.Schema()
			}
			out = append(out, ref)
			break
		}
	}
	return out
}

func (p *Parameter) fillSchema(sch *base.Schema) {
	if sch == nil {
		return
	}
	if len(sch.Type) > 0 {
		p.Type = sch.Type[0]
	}
	p.Format = sch.Format
	p.Minimum = sch.Minimum
	p.Maximum = sch.Maximum
	p.MinLength = sch.MinLength
	p.MaxLength = sch.MaxLength
}

// templateParams extracts {name} placeholders in left-to-right order.
func templateParams(path string) []string {
	var out []string
	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			continue
		}
		j := strings.IndexByte(path[i:], '}')
		if j <= 1 {
			continue
		}
		out = append(out, path[i+1:i+j])
		i += j
	}
	return out
}

func normalizeMethod(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

// onlyCircular reports whether a build error (possibly joining several)
// consists entirely of circular-reference reports.
func onlyCircular(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if e != nil && !onlyCircular(e) {
				return false
			}
		}
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "circular")
}

package spec

import (
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
)

const schemaRefPrefix = "#/components/schemas/"

// ResolveRefs expands every $ref pointer found in parameter and response
// schema positions, following one level of indirection at a time through
// components/schemas. It fails with *RefError on a pointer to a missing
// schema or a circular chain; the Specification must not be used for URL
// building after a failure.
func (s *Specification) ResolveRefs() error {
	for i := range s.ops {
		op := &s.ops[i]
		for j := range op.params {
			p := &op.params[j]
			if p.proxy == nil || !p.proxy.IsReference() {
				continue
			}
			sch, err := s.deref(p.proxy)
			if err != nil {
				return err
			}
			p.fillSchema(sch)
		}
		for j := range op.responses {
			r := &op.responses[j]
			if r.proxy == nil || !r.proxy.IsReference() {
				continue
			}
			sch, err := s.deref(r.proxy)
			if err != nil {
				return err
			}
			r.schema = sch
		}
	}
	s.resolved = true
	return nil
}

// Resolved reports whether ResolveRefs has completed on this Specification.
func (s *Specification) Resolved() bool { return s.resolved }

// deref follows a reference proxy through components/schemas until it
// reaches a concrete schema, tracking visited names so a circular chain
// (A -> B -> A) fails instead of looping.
func (s *Specification) deref(proxy *base.SchemaProxy) (*base.Schema, error) {
	seen := map[string]bool{}
	var chain []string
	cur := proxy
	for cur.IsReference() {
		ref := cur.GetReference()
		name := strings.TrimPrefix(ref, schemaRefPrefix)
		if name == ref || name == "" || strings.Contains(name, "/") {
			return nil, &RefError{Ref: ref, Chain: chain, Message: "unsupported reference target, expected " + schemaRefPrefix + "<Name>"}
		}
		if seen[name] {
			return nil, &RefError{Ref: ref, Chain: chain, Message: "circular schema reference"}
		}
		seen[name] = true
		chain = append(chain, name)

		next, ok := s.componentSchema(name)
		if !ok {
			return nil, &RefError{Ref: ref, Chain: chain, Message: "reference target not found in components/schemas"}
		}
		cur = next
	}
	sch := cur.Schema()
	if sch == nil {
		return nil, &RefError{Ref: proxy.GetReference(), Chain: chain, Message: "reference target could not be built"}
	}
	return sch, nil
}

func (s *Specification) componentSchema(name string) (*base.SchemaProxy, bool) {
	if s.model == nil || s.model.Components == nil || s.model.Components.Schemas == nil {
		return nil, false
	}
	for pair := s.model.Components.Schemas.First(); pair != nil; pair = pair.Next() {
		if pair.Key() == name {
			return pair.Value(), pair.Value() != nil
		}
	}
	return nil, false
}

package spec

import (
	"fmt"
	"strings"
)

// ParseError reports a document that could not be loaded: malformed
// YAML/JSON, an unbuildable model, or missing required top-level keys.
// A ParseError is fatal; no catalog is produced.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spec: %s: %v", e.Message, e.Cause)
	}
	return "spec: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// RefError reports an unresolvable or circular schema reference found
// while expanding $ref pointers. A RefError is fatal; the caller must
// not use a partially resolved Specification.
type RefError struct {
	Ref     string   // the pointer that failed, e.g. "#/components/schemas/User"
	Chain   []string // schema names visited before the failure
	Message string
}

func (e *RefError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("spec: %s (ref %s, chain %s)", e.Message, e.Ref, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("spec: %s (ref %s)", e.Message, e.Ref)
}

// ParameterError reports a single invalid call input: a missing required
// value, a value that fails type coercion, or a bound violation. It is
// scoped to one call attempt; the Specification stays usable.
type ParameterError struct {
	Name       string // parameter name
	Constraint string // "required", "type", "minimum", "maximum", "minLength" or "maxLength"
	Value      string // the supplied raw value, empty when missing
	Message    string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Message)
}

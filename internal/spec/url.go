package spec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// BuildURL substitutes the supplied values into the operation's path
// template and appends supplied query parameters in declaration order.
// Values are raw strings; each is validated against its parameter's
// declared type and bounds before use. Missing required values, coercion
// failures and bound violations fail with *ParameterError. Absent optional
// query parameters are omitted entirely, never emitted as empty.
func BuildURL(op Operation, baseURL string, values map[string]string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("empty base url")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	path := op.Path
	var query strings.Builder
	for _, p := range op.params {
		raw, supplied := values[p.Name]
		switch p.In {
		case "path":
			if !supplied || raw == "" {
				return "", missingErr(p)
			}
			coerced, err := Coerce(p, raw)
			if err != nil {
				return "", err
			}
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(coerced))
		case "query":
			if !supplied || raw == "" {
				if p.Required {
					return "", missingErr(p)
				}
				continue
			}
			coerced, err := Coerce(p, raw)
			if err != nil {
				return "", err
			}
			if query.Len() > 0 {
				query.WriteByte('&')
			}
			query.WriteString(url.QueryEscape(p.Name))
			query.WriteByte('=')
			query.WriteString(url.QueryEscape(coerced))
		}
	}

	full := strings.TrimRight(base.String(), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	full += path
	if query.Len() > 0 {
		full += "?" + query.String()
	}
	return full, nil
}

// Coerce validates a raw string value against the parameter's declared
// type and bounds. Values are never clamped: an out-of-bound number is an
// error, not an adjustment. Unknown or missing types pass through as
// opaque strings.
func Coerce(p Parameter, raw string) (string, error) {
	switch p.Type {
	case "integer":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", &ParameterError{Name: p.Name, Constraint: "type", Value: raw,
				Message: fmt.Sprintf("value %q is not an integer", raw)}
		}
		return raw, checkNumericBounds(p, float64(n), raw)
	case "number":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", &ParameterError{Name: p.Name, Constraint: "type", Value: raw,
				Message: fmt.Sprintf("value %q is not a number", raw)}
		}
		return raw, checkNumericBounds(p, f, raw)
	case "boolean":
		lower := strings.ToLower(raw)
		if lower != "true" && lower != "false" {
			return "", &ParameterError{Name: p.Name, Constraint: "type", Value: raw,
				Message: fmt.Sprintf("value %q is not a boolean, expected true or false", raw)}
		}
		return lower, nil
	case "string":
		length := int64(utf8.RuneCountInString(raw))
		if p.MinLength != nil && length < *p.MinLength {
			return "", &ParameterError{Name: p.Name, Constraint: "minLength", Value: raw,
				Message: fmt.Sprintf("value is %d characters, minimum length is %d", length, *p.MinLength)}
		}
		if p.MaxLength != nil && length > *p.MaxLength {
			return "", &ParameterError{Name: p.Name, Constraint: "maxLength", Value: raw,
				Message: fmt.Sprintf("value is %d characters, maximum length is %d", length, *p.MaxLength)}
		}
		return raw, nil
	default:
		// Unknown types are opaque strings. Usability over strictness: a
		// spec with an unsupported type still produces a callable form.
		return raw, nil
	}
}

func checkNumericBounds(p Parameter, v float64, raw string) error {
	if p.Minimum != nil && v < *p.Minimum {
		return &ParameterError{Name: p.Name, Constraint: "minimum", Value: raw,
			Message: fmt.Sprintf("value %s is below the minimum of %v", raw, *p.Minimum)}
	}
	if p.Maximum != nil && v > *p.Maximum {
		return &ParameterError{Name: p.Name, Constraint: "maximum", Value: raw,
			Message: fmt.Sprintf("value %s is above the maximum of %v", raw, *p.Maximum)}
	}
	return nil
}

func missingErr(p Parameter) error {
	return &ParameterError{Name: p.Name, Constraint: "required",
		Message: fmt.Sprintf("required %s parameter has no value", p.In)}
}

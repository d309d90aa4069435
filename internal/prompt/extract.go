// Package prompt extracts candidate parameter values from a free-text
// request description. The output is untrusted raw strings: the resolver
// validates them exactly like hand-entered values.
package prompt

import (
	"strings"
	"unicode"

	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
)

// Extract scans the prompt for tokens matching a declared parameter name
// (case-insensitive) and takes the following token as the candidate value.
// "get posts for userId 7" yields {"userId": "7"}. Parameters not named in
// the prompt are absent from the result.
func Extract(text string, params []spec.Parameter) map[string]string {
	out := map[string]string{}
	if text == "" || len(params) == 0 {
		return out
	}

	words := tokenize(text)
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}

	for _, p := range params {
		name := strings.ToLower(p.Name)
		for i, w := range lower {
			if w != name {
				continue
			}
			if i+1 < len(words) {
				out[p.Name] = words[i+1]
			}
			break
		}
	}
	return out
}

// tokenize splits on whitespace and strips surrounding punctuation so
// "userId: 7." matches the same as "userId 7".
func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '-' && r != '_'
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

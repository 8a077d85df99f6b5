// Package template implements the prompt placeholder substitution used
// by agent and decision nodes. Placeholders are dotted paths wrapped in
// braces ("{user.profile.name}") resolved against a lookup source.
package template

import (
	"fmt"
	"strings"
)

// Source resolves a dotted path to a value. *domain.ExecutionContext
// satisfies this via its Lookup method.
type Source interface {
	Lookup(path string) (any, bool)
}

// MissingKeyError identifies the exact placeholder that could not be
// resolved, so node-level error messages stay actionable.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("template placeholder %q has no value in context", e.Key)
}

// Format substitutes every {dotted.path} placeholder in tmpl with the
// value resolved from src. Unresolvable placeholders return a
// *MissingKeyError rather than a raw lookup failure. Literal braces
// can be escaped by doubling ("{{", "}}").
func Format(tmpl string, src Source) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			key := tmpl[i+1 : i+end]
			if key == "" {
				return "", fmt.Errorf("empty placeholder at offset %d", i)
			}
			value, ok := src.Lookup(key)
			if !ok {
				return "", &MissingKeyError{Key: key}
			}
			fmt.Fprintf(&b, "%v", value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			b.WriteByte('}')
			i++
		default:
			b.WriteByte(tmpl[i])
			i++
		}
	}
	return b.String(), nil
}

// MapSource adapts a flat or nested map to the Source interface.
type MapSource map[string]any

// Lookup walks the dotted path through nested maps.
func (m MapSource) Lookup(path string) (any, bool) {
	var current any = map[string]any(m)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

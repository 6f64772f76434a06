// Package input adapts request input to the lookup contract formstate uses.
package input

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// DefaultMaxMemory bounds multipart parsing in FromRequest.
const DefaultMaxMemory = 32 << 20

// Input is the request input bag.
type Input interface {
	All() map[string]any
	Get(name string) (any, bool)
	Has(name string) bool
}

// Map is an Input backed by a plain map.
type Map map[string]any

// All returns a shallow copy of m.
func (m Map) All() map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Get returns the value for name.
func (m Map) Get(name string) (any, bool) {
	value, ok := m[name]
	return value, ok
}

// Has reports whether name was submitted.
func (m Map) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Keys returns the submitted names, sorted.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FromValues converts url.Values. Single values become strings; repeated
// values, and names ending in "[]", become []string under the bare name.
// When both "name" and "name[]" are submitted their values are merged, bare
// values first.
func FromValues(values url.Values) Map {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make(map[string][]string, len(values))
	lists := make(map[string]bool, len(values))
	for _, key := range keys {
		name, isList := strings.CutSuffix(key, "[]")
		if _, seen := merged[name]; seen {
			isList = true
		}
		merged[name] = append(merged[name], values[key]...)
		lists[name] = lists[name] || isList
	}

	out := make(Map, len(merged))
	for name, list := range merged {
		switch {
		case lists[name] || len(list) > 1:
			out[name] = append([]string{}, list...)
		case len(list) == 1:
			out[name] = list[0]
		default:
			out[name] = ""
		}
	}
	return out
}

// FromRequest parses r's query and form body.
func FromRequest(r *http.Request) (Map, error) {
	if r == nil {
		return Map{}, nil
	}
	err := r.ParseMultipartForm(DefaultMaxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("input: parse form: %w", err)
	}
	return FromValues(r.Form), nil
}

// Empty is an Input without values.
func Empty() Input {
	return Map{}
}

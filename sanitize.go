package formstate

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user supplied strings before they are stored.
// *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(string) string
}

// SanitizerFunc adapts a function to Sanitizer.
type SanitizerFunc func(string) string

// Sanitize implements Sanitizer.
func (fn SanitizerFunc) Sanitize(value string) string {
	return fn(value)
}

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StrictSanitizer strips every HTML tag, keeping text content.
func StrictSanitizer() Sanitizer {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

func (f *FormState) sanitize(value any) any {
	if f.cfg.sanitizer == nil {
		return value
	}
	switch v := value.(type) {
	case string:
		return f.cfg.sanitizer.Sanitize(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = f.cfg.sanitizer.Sanitize(item)
		}
		return out
	default:
		return value
	}
}

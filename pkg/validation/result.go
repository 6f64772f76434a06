package validation

import "encoding/json"

// Result is the outcome of one validation run. The zero value passes.
type Result struct {
	order  []string
	errors map[string][]string
}

// NewResult returns an empty, passing Result.
func NewResult() *Result {
	return &Result{errors: map[string][]string{}}
}

// Add records message against field.
func (r *Result) Add(field, message string) {
	if r.errors == nil {
		r.errors = map[string][]string{}
	}
	if _, seen := r.errors[field]; !seen {
		r.order = append(r.order, field)
	}
	r.errors[field] = append(r.errors[field], message)
}

// Passes reports whether no messages were recorded.
func (r *Result) Passes() bool {
	return r == nil || len(r.order) == 0
}

// Fails is the negation of Passes.
func (r *Result) Fails() bool {
	return !r.Passes()
}

// Has reports whether field failed at least one rule.
func (r *Result) Has(field string) bool {
	if r == nil {
		return false
	}
	return len(r.errors[field]) > 0
}

// First returns the first message for field, or "".
func (r *Result) First(field string) string {
	if !r.Has(field) {
		return ""
	}
	return r.errors[field][0]
}

// Get returns every message recorded for field.
func (r *Result) Get(field string) []string {
	if !r.Has(field) {
		return nil
	}
	return append([]string(nil), r.errors[field]...)
}

// Fields returns failing fields in the order they were first recorded.
func (r *Result) Fields() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Errors returns a copy of the field to messages map.
func (r *Result) Errors() map[string][]string {
	out := make(map[string][]string, len(r.Fields()))
	for _, field := range r.Fields() {
		out[field] = r.Get(field)
	}
	return out
}

// All flattens every message, field by field.
func (r *Result) All() []string {
	var out []string
	for _, field := range r.Fields() {
		out = append(out, r.errors[field]...)
	}
	return out
}

// MarshalJSON encodes the result as {"field": ["message", ...]}.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Errors())
}

package formstate

import "fmt"

func (f *FormState) buildLayers() ([]Layer, error) {
	layers := []Layer{
		{Scope: ScopeFlash, Lookup: f.lookupFlashed},
		{Scope: ScopePersisted, Lookup: f.lookupPersisted},
		{Scope: ScopeDefault},
	}
	layers = append(layers, f.cfg.layers...)
	stack, err := newLayerStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.layers, nil
}

func (f *FormState) lookupFlashed(field string) (any, bool) {
	if !f.hasFlash {
		return nil, false
	}
	value, ok := f.flashed[field]
	return value, ok
}

func (f *FormState) lookupPersisted(field string) (any, bool) {
	return f.fields.Lookup(field)
}

func (f *FormState) chain(def any) *layerStack {
	layers := make([]Layer, len(f.layers))
	copy(layers, f.layers)
	for i := range layers {
		if layers[i].Scope.Name == ScopeDefault.Name {
			layers[i].Lookup = func(string) (any, bool) { return def, true }
		}
	}
	return &layerStack{layers: layers}
}

// Old resolves field through flashed input, then persisted fields, then def.
func (f *FormState) Old(field string, def any) any {
	value, _, _ := f.chain(def).resolve(field, nil)
	return cloneValue(value)
}

// OldWithTrace is Old plus the provenance of every layer consulted.
func (f *FormState) OldWithTrace(field string, def any) (any, Trace) {
	trace := Trace{Field: field}
	value, scope, found := f.chain(def).resolve(field, &trace)
	if found {
		trace.Resolved = scope.Name
	}
	return cloneValue(value), trace
}

// OldMany resolves every field independently. Each requested field is
// present in the result, falling back to def.
func (f *FormState) OldMany(fields []string, def any) map[string]any {
	stack := f.chain(def)
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		value, _, _ := stack.resolve(field, nil)
		out[field] = cloneValue(value)
	}
	return out
}

// OldChecked reports whether a checkbox or radio with value should render
// checked. List values match when they contain value; scalars match on
// string equality. Anything else returns def.
func (f *FormState) OldChecked(field string, value any, def bool) bool {
	resolved := f.Old(field, nil)
	if isBlank(resolved) {
		return def
	}
	want := fmt.Sprint(value)
	switch current := resolved.(type) {
	case []string:
		for _, item := range current {
			if item == want {
				return true
			}
		}
	case []any:
		for _, item := range current {
			if fmt.Sprint(item) == want {
				return true
			}
		}
	default:
		if fmt.Sprint(current) == want {
			return true
		}
	}
	return def
}

// OldInput returns the input flashed by the previous request, or the
// persisted fields when nothing was flashed.
func (f *FormState) OldInput() map[string]any {
	if f.hasFlash {
		out := make(map[string]any, len(f.flashed))
		for key, value := range f.flashed {
			out[key] = cloneValue(value)
		}
		return out
	}
	return f.fields.Map()
}

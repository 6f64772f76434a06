package formstate

import (
	"errors"
	"fmt"
	"sort"
)

// Scope names a layer of the old-input resolution chain. Higher priority
// layers win.
type Scope struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Priority int    `json:"priority"`
}

// Built-in layers of the resolution chain.
var (
	ScopeFlash     = Scope{Name: "flash", Label: "Flashed input", Priority: 300}
	ScopePersisted = Scope{Name: "persisted", Label: "Persisted fields", Priority: 200}
	ScopeDefault   = Scope{Name: "default", Label: "Caller default", Priority: 0}
)

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("formstate: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("formstate: scope names must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("formstate: scope priorities must be strictly ordered")
)

// Lookup returns the value a layer holds for field.
type Lookup func(field string) (any, bool)

// Layer pairs a scope with the lookup that backs it.
type Layer struct {
	Scope  Scope
	Lookup Lookup
}

// MapLayer returns a Layer backed by a fixed map.
func MapLayer(scope Scope, values map[string]any) Layer {
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = cloneValue(value)
	}
	return Layer{Scope: scope, Lookup: func(field string) (any, bool) {
		value, ok := copied[field]
		return value, ok
	}}
}

type layerStack struct {
	layers []Layer
}

// newLayerStack validates layers and sorts them strongest first.
func newLayerStack(layers ...Layer) (*layerStack, error) {
	seen := make(map[string]struct{}, len(layers))
	sorted := make([]Layer, 0, len(layers))
	for _, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		sorted = append(sorted, layer)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Scope.Priority > sorted[j].Scope.Priority
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Scope.Priority == sorted[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, sorted[i].Scope.Priority)
		}
	}
	return &layerStack{layers: sorted}, nil
}

// resolve returns the first non-nil value for field. A layer holding the key
// with a nil value does not supply it.
func (s *layerStack) resolve(field string, trace *Trace) (any, Scope, bool) {
	var (
		resolved any
		winner   Scope
		found    bool
	)
	for _, layer := range s.layers {
		var value any
		var ok bool
		if layer.Lookup != nil {
			value, ok = layer.Lookup(field)
		}
		ok = ok && value != nil
		if trace != nil {
			entry := Provenance{Scope: layer.Scope, Found: ok}
			if ok {
				entry.Value = cloneValue(value)
			}
			trace.Layers = append(trace.Layers, entry)
		}
		if ok && !found {
			resolved, winner, found = value, layer.Scope, true
			if trace == nil {
				break
			}
		}
	}
	return resolved, winner, found
}

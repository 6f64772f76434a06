package formstate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldStore is an ordered mapping of field name to value. Values are
// normally string, []string or nil. The zero value is an empty store.
type FieldStore struct {
	keys   []string
	values map[string]any
}

// NewFieldStore builds a store from values in keys order. Keys missing
// from values are skipped.
func NewFieldStore(keys []string, values map[string]any) FieldStore {
	var store FieldStore
	for _, key := range keys {
		if value, ok := values[key]; ok {
			store.Set(key, value)
		}
	}
	return store
}

// Lookup returns the value stored under key and whether the key exists.
func (s FieldStore) Lookup(key string) (any, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Value returns the value stored under key when it exists and is not nil.
func (s FieldStore) Value(key string) (any, bool) {
	value, ok := s.values[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// Set stores value under key. New keys are appended to the order.
func (s *FieldStore) Set(key string, value any) {
	if s.values == nil {
		s.values = map[string]any{}
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Delete removes key.
func (s *FieldStore) Delete(key string) {
	if _, exists := s.values[key]; !exists {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order.
func (s FieldStore) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of fields.
func (s FieldStore) Len() int {
	return len(s.keys)
}

// Empty reports whether the store holds no fields.
func (s FieldStore) Empty() bool {
	return len(s.keys) == 0
}

// Map returns a copy of the fields as a plain map.
func (s FieldStore) Map() map[string]any {
	out := make(map[string]any, len(s.keys))
	for _, key := range s.keys {
		out[key] = cloneValue(s.values[key])
	}
	return out
}

// Clone returns a deep copy of s.
func (s FieldStore) Clone() FieldStore {
	var out FieldStore
	for _, key := range s.keys {
		out.Set(key, cloneValue(s.values[key]))
	}
	return out
}

// Merge sets every field of other on s, in other's order.
func (s *FieldStore) Merge(other FieldStore) {
	for _, key := range other.keys {
		s.Set(key, cloneValue(other.values[key]))
	}
}

// MarshalJSON encodes the store as a JSON object in insertion order.
func (s FieldStore) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, fmt.Errorf("formstate: encode field %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Arrays of strings
// decode to []string.
func (s *FieldStore) UnmarshalJSON(data []byte) error {
	*s = FieldStore{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("formstate: field store must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("formstate: decode field %q: %w", key, err)
		}
		s.Set(key, normalizeDecoded(value))
	}
	_, err = dec.Token()
	return err
}

func normalizeDecoded(value any) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		text, ok := item.(string)
		if !ok {
			return value
		}
		out = append(out, text)
	}
	return out
}

func cloneValue(value any) any {
	if list, ok := value.([]string); ok {
		return append([]string(nil), list...)
	}
	return value
}

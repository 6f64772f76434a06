package hydrate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrCoerce is returned when a stored value cannot be converted to the kind
// of its target field.
var ErrCoerce = errors.New("hydrate: cannot coerce value")

var (
	truthy = map[string]bool{"1": true, "true": true, "on": true, "yes": true}
	falsy  = map[string]bool{"": true, "0": true, "false": true, "off": true, "no": true}
)

// coerceFields converts each value in fields that maps onto a struct field
// of target. Fields with no matching struct field are left alone.
func coerceFields(fields map[string]any, target reflect.Type) (map[string]any, error) {
	types := fieldTypes(target)
	if len(types) == 0 {
		return fields, nil
	}
	for name, value := range fields {
		typ, ok := types[strings.ToLower(name)]
		if !ok {
			continue
		}
		next, err := coerceValue(value, typ)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = next
	}
	return fields, nil
}

// fieldTypes indexes the exported fields of a struct by lowercased JSON
// name, following embedded structs the way encoding/json does.
func fieldTypes(t reflect.Type) map[string]reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	out := map[string]reflect.Type{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" {
			for key, typ := range fieldTypes(sf.Type) {
				if _, ok := out[key]; !ok {
					out[key] = typ
				}
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out[strings.ToLower(name)] = sf.Type
	}
	return out
}

func coerceValue(value any, target reflect.Type) (any, error) {
	if value == nil {
		return nil, nil
	}
	for target.Kind() == reflect.Pointer {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		target = target.Elem()
	}

	switch target.Kind() {
	case reflect.Slice:
		if target.Elem().Kind() == reflect.Uint8 {
			return value, nil
		}
		return coerceList(value, target.Elem())
	case reflect.Struct:
		if nested, ok := value.(map[string]any); ok {
			return coerceFields(nested, target)
		}
		return value, nil
	case reflect.String:
		switch v := value.(type) {
		case []any:
			if len(v) == 0 {
				return "", nil
			}
			return coerceValue(v[0], target)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
		return value, nil
	case reflect.Bool:
		s, ok := scalarString(value)
		if !ok {
			return value, nil
		}
		s = strings.ToLower(strings.TrimSpace(s))
		switch {
		case truthy[s]:
			return true, nil
		case falsy[s]:
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrCoerce, s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s, ok := numericString(value)
		if !ok {
			return value, nil
		}
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, target.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrCoerce, s)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s, ok := numericString(value)
		if !ok {
			return value, nil
		}
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseUint(s, 10, target.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an unsigned integer", ErrCoerce, s)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		s, ok := numericString(value)
		if !ok {
			return value, nil
		}
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(s, target.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrCoerce, s)
		}
		return n, nil
	}
	return value, nil
}

func coerceList(value any, elem reflect.Type) (any, error) {
	var list []any
	switch v := value.(type) {
	case []any:
		list = v
	case string:
		if v == "" {
			return []any{}, nil
		}
		list = []any{v}
	default:
		list = []any{v}
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		next, err := coerceValue(item, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}

// scalarString reads a submitted scalar. A list yields its first entry.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []any:
		if len(v) == 0 {
			return "", true
		}
		s, ok := v[0].(string)
		return s, ok
	}
	return "", false
}

func numericString(value any) (string, bool) {
	s, ok := scalarString(value)
	return strings.TrimSpace(s), ok
}

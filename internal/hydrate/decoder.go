package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Context identifies the form whose stored fields are being decoded.
type Context struct {
	Form string
	Key  string
}

// PreHook rewrites the stored fields before they are bound.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or checks the bound value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces JSON binding entirely.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder binds stored form fields into T through its JSON tags. Submitted
// form values are strings or string lists, so by default each field is
// coerced to the kind of its target before binding: "on" becomes true,
// "42" becomes 42, "" leaves numbers and pointers unset, a single string
// fills a slice and a list fills a scalar with its first entry.
type Decoder[T any] struct {
	before   []PreHook
	after    []PostHook[T]
	custom   CustomDecoder[T]
	strict   bool
	noCoerce bool
}

// WithPreHook runs hook on the fields before coercion.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.before = append(d.before, hook)
		}
	}
}

// WithPostHook runs hook on the bound value.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.after = append(d.after, hook)
		}
	}
}

// WithStrict rejects stored fields that T has no field for.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// WithoutCoercion binds stored values exactly as they were saved.
func WithoutCoercion[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.noCoerce = true
	}
}

// WithCustomDecoder replaces JSON binding. Coercion is skipped.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// NewDecoder builds a Decoder from opts.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode binds fields into a new T. fields is never modified.
func (d *Decoder[T]) Decode(ctx Context, fields map[string]any) (T, error) {
	var zero T
	if fields == nil {
		return zero, fmt.Errorf("hydrate: no fields for form %q", ctx.Form)
	}

	current, err := cloneFields(fields)
	if err != nil {
		return zero, fmt.Errorf("hydrate: copy fields of form %q: %w", ctx.Form, err)
	}
	for _, hook := range d.before {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for form %q failed: %w", ctx.Form, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		if result, err = d.custom(ctx, current); err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for form %q failed: %w", ctx.Form, err)
		}
	} else {
		if !d.noCoerce {
			if current, err = coerceFields(current, reflect.TypeFor[T]()); err != nil {
				return zero, fmt.Errorf("hydrate: form %q: %w", ctx.Form, err)
			}
		}
		if err := d.bind(current, &result); err != nil {
			return zero, fmt.Errorf("hydrate: bind form %q: %w", ctx.Form, err)
		}
	}

	for _, hook := range d.after {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for form %q failed: %w", ctx.Form, err)
		}
	}
	return result, nil
}

func (d *Decoder[T]) bind(fields map[string]any, out *T) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(out)
}

// cloneFields deep copies fields into plain JSON values, so []string
// becomes []any and numbers become float64.
func cloneFields(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

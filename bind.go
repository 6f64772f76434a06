package formstate

import (
	"fmt"

	"github.com/goliatone/go-formstate/internal/hydrate"
)

// BindOption configures Bind.
type BindOption[T any] func(*bindConfig[T])

type bindConfig[T any] struct {
	decoder []hydrate.DecoderOption[T]
}

// BindStrict fails when a stored field has no matching field in T.
func BindStrict[T any]() BindOption[T] {
	return func(c *bindConfig[T]) {
		c.decoder = append(c.decoder, hydrate.WithStrict[T]())
	}
}

// BindRaw binds stored values as saved, without converting submitted
// strings to the kinds of T's fields.
func BindRaw[T any]() BindOption[T] {
	return func(c *bindConfig[T]) {
		c.decoder = append(c.decoder, hydrate.WithoutCoercion[T]())
	}
}

// BindBefore rewrites a copy of the stored fields before binding.
func BindBefore[T any](fn func(identity string, fields map[string]any) (map[string]any, error)) BindOption[T] {
	return func(c *bindConfig[T]) {
		if fn == nil {
			return
		}
		c.decoder = append(c.decoder, hydrate.WithPreHook[T](func(ctx hydrate.Context, fields map[string]any) (map[string]any, error) {
			return fn(ctx.Form, fields)
		}))
	}
}

// BindAfter checks or completes the bound value.
func BindAfter[T any](fn func(identity string, out *T) error) BindOption[T] {
	return func(c *bindConfig[T]) {
		if fn == nil {
			return
		}
		c.decoder = append(c.decoder, hydrate.WithPostHook[T](func(ctx hydrate.Context, out *T) error {
			return fn(ctx.Form, out)
		}))
	}
}

// Bind decodes the stored fields into T through its JSON tags, e.g. to build
// a command from a completed multi-page form. Submitted strings are
// converted to T's field kinds: "on" to true, "3" to 3, "" to the zero value.
func Bind[T any](f *FormState, opts ...BindOption[T]) (T, error) {
	var zero T
	if f == nil {
		return zero, fmt.Errorf("formstate: bind on nil form state")
	}
	var cfg bindConfig[T]
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	decoder := hydrate.NewDecoder[T](cfg.decoder...)
	return decoder.Decode(hydrate.Context{Form: f.identity, Key: f.key}, f.fields.Map())
}

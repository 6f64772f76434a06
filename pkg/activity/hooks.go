package activity

import (
	"context"
	"errors"
)

// Hook receives normalized form events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to every hook.
type Hooks []Hook

// Notify normalizes event and delivers it to each hook, joining their
// errors. Events without a verb or form are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || !event.Deliverable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Normalize()

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

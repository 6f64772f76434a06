package activity

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Config controls emission. It is usually derived from the formstate
// Config (FORMSTATE_ACTIVITY_ENABLED, FORMSTATE_ACTIVITY_CHANNEL).
type Config struct {
	Enabled bool
	Channel string
	// Now stamps events that carry no OccurredAt. Defaults to time.Now.
	Now func() time.Time
}

// Emitter delivers form events to hooks, stamping channel and time.
type Emitter struct {
	hooks   Hooks
	channel string
	now     func() time.Time
}

// NewEmitter returns an Emitter for hooks. A disabled config, or no non-nil
// hooks, yields an Emitter that drops every event.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		channel: strings.TrimSpace(cfg.Channel),
		now:     cfg.Now,
	}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	if e.now == nil {
		e.now = time.Now
	}
	if cfg.Enabled {
		e.hooks = slices.DeleteFunc(slices.Clone(hooks), func(h Hook) bool { return h == nil })
	}
	return e
}

// Enabled reports whether events will be delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit delivers event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.hooks.Notify(ctx, event)
}

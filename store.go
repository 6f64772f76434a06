package formstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/session"
)

// Load hydrates the store from the session and returns a copy of it. Only
// the first call reads the session; later calls return the in-memory store.
//
// When the session carries no flashed input for this request, the persisted
// fields stand in for it so Old resolves uniformly on first display.
func (f *FormState) Load(ctx context.Context) (FieldStore, error) {
	if err := f.ready(); err != nil {
		return FieldStore{}, err
	}
	if !f.hydrated {
		if err := f.hydrate(ctx); err != nil {
			return FieldStore{}, err
		}
	}
	return f.fields.Clone(), nil
}

func (f *FormState) hydrate(ctx context.Context) error {
	persisted, err := f.readSession(ctx)
	if err != nil {
		return err
	}
	// Values set before hydration win over persisted ones.
	persisted.Merge(f.fields)
	f.fields = persisted

	if err := f.loadFlash(ctx); err != nil {
		return err
	}
	f.hydrated = true

	f.logger().Debug("form state hydrated",
		slog.String("form", f.identity),
		slog.Int("fields", f.fields.Len()),
		slog.Bool("flashed", f.hasFlash),
	)
	return nil
}

func (f *FormState) loadFlash(ctx context.Context) error {
	old, ok, err := f.cfg.session.OldInput(ctx)
	if err != nil {
		return fmt.Errorf("formstate: read old input: %w", err)
	}
	f.flashed, f.hasFlash = old, ok
	return nil
}

func (f *FormState) readSession(ctx context.Context) (FieldStore, error) {
	raw, ok, err := f.cfg.session.Get(ctx, f.key)
	if err != nil {
		return FieldStore{}, fmt.Errorf("formstate: read %s: %w", f.key, err)
	}
	if !ok || raw == nil {
		return FieldStore{}, nil
	}

	var store FieldStore
	switch v := raw.(type) {
	case string:
		err = json.Unmarshal([]byte(v), &store)
	case []byte:
		err = json.Unmarshal(v, &store)
	case FieldStore:
		store = v.Clone()
	case map[string]any:
		store = NewFieldStore(sortedKeys(v), v)
	default:
		return FieldStore{}, fmt.Errorf("%w: %s holds %T", ErrCorruptState, f.key, raw)
	}
	if err != nil {
		return FieldStore{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, f.key, err)
	}
	return store, nil
}

// Persist writes the whole store to the session as a JSON object.
func (f *FormState) Persist(ctx context.Context) error {
	if err := f.ready(); err != nil {
		return err
	}
	payload, err := json.Marshal(f.fields)
	if err != nil {
		return fmt.Errorf("formstate: encode %s: %w", f.key, err)
	}
	if err := f.cfg.session.Put(ctx, f.key, string(payload)); err != nil {
		return fmt.Errorf("formstate: write %s: %w", f.key, err)
	}
	f.logger().Debug("form state persisted",
		slog.String("form", f.identity),
		slog.String("key", f.key),
		slog.Int("fields", f.fields.Len()),
	)
	return nil
}

// Save copies fields from input into the store and persists it. A nil
// fields slice saves every input key; a nil input reads the request input.
// Fields missing from input are stored as the configured empty value.
func (f *FormState) Save(ctx context.Context, fields []string, in map[string]any) error {
	if err := f.ready(); err != nil {
		return err
	}
	if !f.hydrated {
		if err := f.hydrate(ctx); err != nil {
			return err
		}
	}
	if in == nil {
		in = f.cfg.input.All()
	}
	if fields == nil {
		fields = sortedKeys(in)
	}

	for _, field := range fields {
		value, ok := in[field]
		if !ok || value == nil {
			value = f.cfg.settings.EmptyValue
		}
		f.fields.Set(field, f.sanitize(value))
	}

	if err := f.Persist(ctx); err != nil {
		return err
	}
	f.emit(ctx, activity.VerbSaved, fields, nil)
	return nil
}

// Forget removes the persisted entry and clears the in-memory store.
func (f *FormState) Forget(ctx context.Context) error {
	if err := f.ready(); err != nil {
		return err
	}
	if err := f.cfg.session.Forget(ctx, f.key); err != nil {
		return fmt.Errorf("formstate: forget %s: %w", f.key, err)
	}
	f.fields = FieldStore{}
	f.hydrated = true
	f.logger().Debug("form state forgotten", slog.String("form", f.identity))
	f.emit(ctx, activity.VerbForgotten, nil, nil)
	return nil
}

// FlashInput asks the session to flash in for the next request, so a
// redirect after failed validation can redisplay the submitted values. A nil
// in flashes the request input.
func (f *FormState) FlashInput(ctx context.Context, in map[string]any) error {
	if err := f.ready(); err != nil {
		return err
	}
	flasher, ok := f.cfg.session.(session.Flasher)
	if !ok {
		return ErrFlashUnsupported
	}
	if in == nil {
		in = f.cfg.input.All()
	}
	if err := flasher.FlashInput(ctx, in); err != nil {
		return fmt.Errorf("formstate: flash input: %w", err)
	}
	return nil
}

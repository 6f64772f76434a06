package formstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/input"
)

// Attributer is implemented by records that expose their attributes
// directly, such as active-record style models.
type Attributer interface {
	Attributes() map[string]any
}

// LoadRecord replaces the in-memory store with the attributes of record,
// typically to edit an existing entity. Supported shapes are Attributer,
// map[string]any, map[string]string, url.Values, input.Map and structs (or
// pointers to structs), whose JSON encoding supplies field names and order.
// The session is not written; call Persist to keep the values. Persisted
// fields are not merged back in by a later Load or Save, while flashed
// input is still read so it keeps priority over the record.
func (f *FormState) LoadRecord(record any) error {
	store, err := recordFields(record)
	if err != nil {
		return err
	}
	if !f.hydrated && f.ready() == nil {
		if err := f.loadFlash(context.Background()); err != nil {
			return err
		}
	}
	f.fields = store
	f.hydrated = true
	f.record = record
	f.recordLoaded = true
	f.emit(context.Background(), activity.VerbRecordLoaded, store.Keys(), map[string]any{
		"record_type": fmt.Sprintf("%T", record),
	})
	return nil
}

// RecordLoaded reports whether LoadRecord has succeeded since construction
// or the last Reset.
func (f *FormState) RecordLoaded() bool {
	return f.recordLoaded
}

// Record returns the value passed to the last successful LoadRecord.
func (f *FormState) Record() any {
	return f.record
}

func recordFields(record any) (FieldStore, error) {
	switch v := record.(type) {
	case nil:
		return FieldStore{}, fmt.Errorf("%w: <nil>", ErrUnsupportedRecord)
	case Attributer:
		attrs := v.Attributes()
		return NewFieldStore(sortedKeys(attrs), attrs), nil
	case map[string]any:
		return NewFieldStore(sortedKeys(v), v), nil
	case input.Map:
		return NewFieldStore(v.Keys(), v), nil
	case map[string]string:
		values := make(map[string]any, len(v))
		for key, value := range v {
			values[key] = value
		}
		return NewFieldStore(sortedKeys(values), values), nil
	case url.Values:
		values := input.FromValues(v)
		return NewFieldStore(values.Keys(), values), nil
	}

	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return FieldStore{}, fmt.Errorf("%w: nil %T", ErrUnsupportedRecord, record)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return FieldStore{}, fmt.Errorf("%w: %T", ErrUnsupportedRecord, record)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return FieldStore{}, fmt.Errorf("formstate: encode record %T: %w", record, err)
	}
	var store FieldStore
	if err := json.Unmarshal(payload, &store); err != nil {
		return FieldStore{}, fmt.Errorf("formstate: decode record %T: %w", record, err)
	}
	return store, nil
}

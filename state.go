package formstate

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/goliatone/go-formstate/pkg/session"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// FormState holds the field values of one form identity for the lifetime of
// a request. It is not safe for concurrent use.
type FormState struct {
	identity string
	key      string
	cfg      options
	layers   []Layer
	initErr  error

	fields   FieldStore
	hydrated bool
	flashed  map[string]any
	hasFlash bool

	record       any
	recordLoaded bool

	result        *validation.Result
	validationErr error
}

// New returns an unhydrated FormState for identity. Configuration errors are
// reported by the first operation that needs the session.
func New(identity string, opts ...Option) *FormState {
	cfg := applyOptions(opts)
	if cfg.rules == nil && cfg.catalog != nil {
		if def, ok := cfg.catalog.Lookup(identity); ok {
			cfg.rules = def.Rules
			if cfg.messages == nil {
				cfg.messages = def.Messages
			}
		}
	}

	f := &FormState{identity: identity, cfg: cfg}
	f.key, f.initErr = session.Key(cfg.settings.KeyPrefix, identity)
	if f.initErr == nil {
		f.layers, f.initErr = f.buildLayers()
	}
	return f
}

// Open returns a FormState hydrated from the session.
func Open(ctx context.Context, identity string, opts ...Option) (*FormState, error) {
	f := New(identity, opts...)
	if _, err := f.Load(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// Identity returns the form identity.
func (f *FormState) Identity() string {
	return f.identity
}

// Key returns the session key the fields persist under.
func (f *FormState) Key() string {
	return f.key
}

// Loaded reports whether the store is settled: hydrated from the session,
// replaced by LoadRecord or cleared by Forget.
func (f *FormState) Loaded() bool {
	return f.hydrated
}

// Rules returns a copy of the declared rule set.
func (f *FormState) Rules() validation.RuleSet {
	return f.cfg.rules.Clone()
}

// SetRules replaces the declared rule set, typically from a
// BeforeValidationFunc.
func (f *FormState) SetRules(rules validation.RuleSet) {
	f.cfg.rules = rules.Clone()
}

// Get returns the stored value of field, or def when it is absent or nil.
func (f *FormState) Get(field string, def any) any {
	if value, ok := f.fields.Value(field); ok {
		return cloneValue(value)
	}
	return def
}

// GetMany returns the stored values of fields. Absent fields are omitted.
func (f *FormState) GetMany(fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := f.fields.Value(field); ok {
			out[field] = cloneValue(value)
		}
	}
	return out
}

// Set stores value under key in memory. Call Persist or Save to write it to
// the session.
func (f *FormState) Set(key string, value any) {
	f.fields.Set(key, value)
}

// Has reports whether key holds a non-blank value.
func (f *FormState) Has(key string) bool {
	value, ok := f.fields.Value(key)
	return ok && !isBlank(value)
}

// All returns a copy of every stored field.
func (f *FormState) All() FieldStore {
	return f.fields.Clone()
}

// Reset returns f to its freshly constructed state. The session is left
// untouched.
func (f *FormState) Reset() {
	f.fields = FieldStore{}
	f.hydrated = false
	f.flashed = nil
	f.hasFlash = false
	f.record = nil
	f.recordLoaded = false
	f.result = nil
	f.validationErr = nil
	f.logger().Debug("form state reset", slog.String("form", f.identity))
}

func (f *FormState) logger() *slog.Logger {
	return f.cfg.logger.With(slog.String("component", "formstate"))
}

func (f *FormState) ready() error {
	if f.initErr != nil {
		return f.initErr
	}
	if f.cfg.session == nil {
		return ErrNoSession
	}
	return nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return !slices.ContainsFunc(v, func(s string) bool { return s != "" })
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

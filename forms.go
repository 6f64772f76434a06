package formstate

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/session"
)

// Forms is a request-scoped registry of FormState instances sharing one
// session and one request input.
type Forms struct {
	opts  []Option
	forms map[string]*FormState
}

// NewForms returns a registry whose forms are built with opts.
func NewForms(opts ...Option) *Forms {
	return &Forms{
		opts:  append([]Option(nil), opts...),
		forms: map[string]*FormState{},
	}
}

// Open returns the hydrated FormState for identity, creating it on first
// use. opts are applied after the registry options and only on creation.
func (r *Forms) Open(ctx context.Context, identity string, opts ...Option) (*FormState, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, fmt.Errorf("formstate: open form: %w", session.ErrIdentityRequired)
	}
	if f, ok := r.forms[identity]; ok {
		return f, nil
	}
	all := make([]Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)
	f, err := Open(ctx, identity, all...)
	if err != nil {
		return nil, err
	}
	r.forms[identity] = f
	return f, nil
}

// Get returns an already opened FormState.
func (r *Forms) Get(identity string) (*FormState, bool) {
	f, ok := r.forms[strings.TrimSpace(identity)]
	return f, ok
}

// Identities lists the forms opened so far.
func (r *Forms) Identities() []string {
	return sortedKeys(r.forms)
}

type formsContextKey struct{}

// NewContext returns a copy of ctx carrying forms.
func NewContext(ctx context.Context, forms *Forms) context.Context {
	return context.WithValue(ctx, formsContextKey{}, forms)
}

// FromContext returns the Forms stored in ctx.
func FromContext(ctx context.Context) (*Forms, bool) {
	if ctx == nil {
		return nil, false
	}
	forms, ok := ctx.Value(formsContextKey{}).(*Forms)
	return forms, ok && forms != nil
}

// FormFromContext opens identity through the Forms stored in ctx.
func FormFromContext(ctx context.Context, identity string, opts ...Option) (*FormState, error) {
	forms, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoForms
	}
	return forms.Open(ctx, identity, opts...)
}

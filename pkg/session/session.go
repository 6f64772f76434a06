package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultKeyPrefix namespaces persisted form fields.
const DefaultKeyPrefix = "serialized_field_data"

var (
	// ErrKeyRequired indicates an empty session key.
	ErrKeyRequired = errors.New("session: key must be provided")
	// ErrIdentityRequired indicates Key was called without a form identity.
	ErrIdentityRequired = errors.New("session: form identity must be provided")
)

// Session is the subset of a session store formstate depends on.
type Session interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Put(ctx context.Context, key string, value any) error
	Has(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
	// OldInput returns the input flashed by the previous request, if any.
	OldInput(ctx context.Context) (map[string]any, bool, error)
}

// Flasher is implemented by sessions that can flash input for the next
// request.
type Flasher interface {
	FlashInput(ctx context.Context, input map[string]any) error
}

// Key returns the session key for identity, e.g.
// "serialized_field_data[signup]".
func Key(prefix, identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", ErrIdentityRequired
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return fmt.Sprintf("%s[%s]", prefix, identity), nil
}

package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/session"
)

func TestKey(t *testing.T) {
	cases := []struct {
		prefix, identity, want string
		err                    error
	}{
		{prefix: "", identity: "signup", want: "serialized_field_data[signup]"},
		{prefix: "forms", identity: " wizard ", want: "forms[wizard]"},
		{prefix: "forms", identity: "", err: session.ErrIdentityRequired},
	}
	for _, tc := range cases {
		got, err := session.Key(tc.prefix, tc.identity)
		if !errors.Is(err, tc.err) {
			t.Fatalf("Key(%q, %q): expected error %v, got %v", tc.prefix, tc.identity, tc.err, err)
		}
		if got != tc.want {
			t.Fatalf("Key(%q, %q): expected %q, got %q", tc.prefix, tc.identity, tc.want, got)
		}
	}
}

func TestMemorySessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemorySession()

	if _, ok, err := s.Get(ctx, "a"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, "a", "1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, ok, err := s.Get(ctx, "a")
	if err != nil || !ok || value != "1" {
		t.Fatalf("expected stored value, got %v %v %v", value, ok, err)
	}
	if has, _ := s.Has(ctx, "a"); !has {
		t.Fatalf("expected key to exist")
	}
	if err := s.Forget(ctx, "a"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if has, _ := s.Has(ctx, "a"); has {
		t.Fatalf("expected key to be forgotten")
	}
	if err := s.Put(ctx, " ", "x"); !errors.Is(err, session.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestMemorySessionFlashLifecycle(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemorySession()

	if _, ok, _ := s.OldInput(ctx); ok {
		t.Fatalf("expected no old input on first request")
	}

	submitted := map[string]any{"email": "bad", "topics": []string{"go"}}
	if err := s.FlashInput(ctx, submitted); err != nil {
		t.Fatalf("flash: %v", err)
	}
	if _, ok, _ := s.OldInput(ctx); ok {
		t.Fatalf("flashed input must not be visible in the same request")
	}

	s.Advance()
	old, ok, err := s.OldInput(ctx)
	if err != nil || !ok {
		t.Fatalf("expected old input after advance, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(submitted, old); diff != "" {
		t.Fatalf("old input mismatch (-want +got):\n%s", diff)
	}
	submitted["topics"].([]string)[0] = "mutated"
	if old["topics"].([]string)[0] != "go" {
		t.Fatalf("expected flashed input to be copied")
	}

	s.Advance()
	if _, ok, _ := s.OldInput(ctx); ok {
		t.Fatalf("expected old input to expire after one request")
	}
}

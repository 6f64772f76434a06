package formstate

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldStoreKeepsInsertionOrder(t *testing.T) {
	var store FieldStore
	store.Set("status", "active")
	store.Set("first_name", "Ada")
	store.Set("tags", []string{"a", "b"})
	store.Set("status", "inactive")

	payload, err := json.Marshal(store)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"status":"inactive","first_name":"Ada","tags":["a","b"]}`
	if string(payload) != want {
		t.Fatalf("expected %s, got %s", want, payload)
	}

	var decoded FieldStore
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"status", "first_name", "tags"}, decoded.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if tags, _ := decoded.Value("tags"); !cmp.Equal(tags, []string{"a", "b"}) {
		t.Fatalf("expected []string tags, got %#v", tags)
	}
}

func TestFieldStoreDeleteAndClone(t *testing.T) {
	store := NewFieldStore([]string{"a", "b", "missing"}, map[string]any{"a": "1", "b": []string{"x"}})
	if store.Len() != 2 {
		t.Fatalf("expected keys without values to be skipped, got %v", store.Keys())
	}

	clone := store.Clone()
	store.Delete("a")
	if _, ok := store.Lookup("a"); ok {
		t.Fatalf("expected a to be deleted")
	}
	if _, ok := clone.Lookup("a"); !ok {
		t.Fatalf("expected clone to be independent")
	}

	list, _ := clone.Value("b")
	list.([]string)[0] = "changed"
	if got, _ := store.Value("b"); got.([]string)[0] != "x" {
		t.Fatalf("expected clone to copy list values, got %v", got)
	}
}

func TestFieldStoreRejectsNonObject(t *testing.T) {
	var store FieldStore
	if err := json.Unmarshal([]byte(`"text"`), &store); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
	if err := json.Unmarshal([]byte(`null`), &store); err != nil || !store.Empty() {
		t.Fatalf("expected null to decode to empty store, got %v", err)
	}
}

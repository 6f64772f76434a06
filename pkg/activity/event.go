package activity

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Form lifecycle verbs.
const (
	VerbSaved        = "formstate.saved"
	VerbForgotten    = "formstate.forgotten"
	VerbRecordLoaded = "formstate.record_loaded"
	VerbValidated    = "formstate.validated"
)

// ObjectTypeForm is the object type sinks record form events under.
const ObjectTypeForm = "formstate"

// DefaultChannel is applied by the Emitter when an event carries none.
const DefaultChannel = "formstate"

// Actor identifies who triggered a form event.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// IsZero reports whether no identifier is set.
func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.ActorID) == "" &&
		strings.TrimSpace(a.UserID) == "" &&
		strings.TrimSpace(a.TenantID) == ""
}

// Event is a form lifecycle occurrence: a save, a forget, a record load or a
// validation run.
type Event struct {
	Verb  string
	Form  string
	Key   string
	Actor Actor
	// Channel is filled by the Emitter when empty.
	Channel string
	// Fields lists the fields the operation touched.
	Fields     []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ObjectID is the form identity, falling back to the session key.
func (e Event) ObjectID() string {
	if form := strings.TrimSpace(e.Form); form != "" {
		return form
	}
	return strings.TrimSpace(e.Key)
}

// Deliverable reports whether e names a verb and a form.
func (e Event) Deliverable() bool {
	return strings.TrimSpace(e.Verb) != "" && e.ObjectID() != ""
}

// Normalize returns a trimmed copy of e that shares no slices or maps with
// it. A zero OccurredAt is set to the current time.
func (e Event) Normalize() Event {
	out := e
	out.Verb = strings.TrimSpace(e.Verb)
	out.Form = strings.TrimSpace(e.Form)
	out.Key = strings.TrimSpace(e.Key)
	out.Channel = strings.TrimSpace(e.Channel)
	out.Actor = Actor{
		ActorID:  strings.TrimSpace(e.Actor.ActorID),
		UserID:   strings.TrimSpace(e.Actor.UserID),
		TenantID: strings.TrimSpace(e.Actor.TenantID),
	}
	out.Fields = nil
	if len(e.Fields) > 0 {
		out.Fields = slices.Clone(e.Fields)
	}
	out.Metadata = nil
	if len(e.Metadata) > 0 {
		out.Metadata = maps.Clone(e.Metadata)
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

package activity

import (
	"context"
	"sync"
)

// Recorder is a Hook that keeps every event it receives, e.g. for asserting
// on form activity in tests.
type Recorder struct {
	// Err is returned from every Notify.
	Err error

	mu     sync.Mutex
	events []Event
}

// Notify records event.
func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.Normalize())
	return r.Err
}

// Events returns the recorded events in delivery order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Verbs returns the verb of each recorded event.
func (r *Recorder) Verbs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	verbs := make([]string, 0, len(r.events))
	for _, event := range r.events {
		verbs = append(verbs, event.Verb)
	}
	return verbs
}

// ForForm returns the events recorded for form.
func (r *Recorder) ForForm(form string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, event := range r.events {
		if event.ObjectID() == form {
			out = append(out, event)
		}
	}
	return out
}

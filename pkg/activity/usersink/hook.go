package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-formstate/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards form activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Channel overrides the event channel when set.
	Channel string
}

// Notify records event in the sink. Events without a verb or form are
// dropped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	if channel := strings.TrimSpace(h.Channel); channel != "" {
		record.Channel = channel
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record converts a form event into a go-users ActivityRecord. The session
// key and touched fields are carried in Data. Identifiers that are not UUIDs
// map to uuid.Nil.
func Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	if !event.Deliverable() {
		return usertypes.ActivityRecord{}, false
	}
	event = event.Normalize()

	data := map[string]any{}
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.Key != "" {
		data["session_key"] = event.Key
	}
	if len(event.Fields) > 0 {
		data["fields"] = event.Fields
	}
	if len(data) == 0 {
		data = nil
	}

	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.Actor.ActorID),
		UserID:     parseUUID(event.Actor.UserID),
		TenantID:   parseUUID(event.Actor.TenantID),
		Verb:       event.Verb,
		ObjectType: activity.ObjectTypeForm,
		ObjectID:   event.ObjectID(),
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}, true
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}

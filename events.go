package formstate

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/activity"
)

func (f *FormState) emit(ctx context.Context, verb string, fields []string, metadata map[string]any) {
	if !f.cfg.emitter.Enabled() {
		return
	}
	event := activity.Event{
		Verb:     verb,
		Form:     f.identity,
		Key:      f.key,
		Actor:    f.cfg.actor,
		Fields:   fields,
		Metadata: metadata,
	}
	if err := f.cfg.emitter.Emit(ctx, event); err != nil {
		f.logger().Warn("form activity hook failed",
			slog.String("form", f.identity),
			slog.String("verb", verb),
			slog.Any("error", err),
		)
	}
}

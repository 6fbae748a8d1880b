package activity

import (
	"context"

	"github.com/rs/zerolog"
)

// LogHook writes every event to logger at debug level.
func LogHook(logger zerolog.Logger) ActivityHook {
	return HookFunc(func(_ context.Context, event Event) error {
		logger.Debug().
			Str("verb", event.Verb).
			Str("object", event.ObjectType).
			Str("id", event.ObjectID).
			Str("channel", event.Channel).
			Fields(event.Metadata).
			Time("occurred_at", event.OccurredAt).
			Msg("activity")
		return nil
	})
}

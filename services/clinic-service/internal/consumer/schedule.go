package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

// Invalidator drops cached schedule state.
type Invalidator interface {
	Invalidate()
}

// ScheduleChanged refreshes the weekly cache when another instance edits the
// weekly schedule. Overrides are read per request and need no action.
func ScheduleChanged(inv Invalidator, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt outbox.ScheduleChanged
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Topic, err)
		}
		if evt.Kind != "weekly" {
			logger.Debug("schedule override changed", "kind", evt.Kind, "action", evt.Action, "date", evt.Date)
			return nil
		}
		inv.Invalidate()
		logger.Info("weekly schedule cache invalidated", "action", evt.Action)
		return nil
	}
}

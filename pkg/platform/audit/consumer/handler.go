package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tracker/internal/platform/kafka/consumer"
	audit "tracker/pkg/platform/audit"
)

// Store persists an event under the ID carried in the message key.
type Store interface {
	AppendWithID(ctx context.Context, id uuid.UUID, event audit.Event) error
}

// EventHandler decodes audit messages and stores them. Malformed messages
// are logged and committed. Store failures are returned for durable topics
// and dropped for best-effort ones.
type EventHandler struct {
	store   Store
	logger  *slog.Logger
	durable bool
}

// NewSecurityHandler handles the security topic. Every event must be stored.
func NewSecurityHandler(store Store, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: store, logger: logger, durable: true}
}

// NewOpsHandler handles the operations topic on a best-effort basis.
func NewOpsHandler(store Store, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: store, logger: logger}
}

func (h *EventHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	eventID, err := uuid.Parse(string(msg.Key))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse audit event ID",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	event, err := audit.Decode(msg.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode audit event",
			"topic", msg.Topic,
			"event_id", eventID,
			"error", err,
		)
		return nil
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		if !h.durable {
			h.logger.DebugContext(ctx, "dropped operations audit event",
				"event_id", eventID,
				"action", event.Action,
				"error", err,
			)
			return nil
		}
		h.logger.ErrorContext(ctx, "failed to store audit event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store audit event: %w", err)
	}

	h.logger.DebugContext(ctx, "stored audit event",
		"event_id", eventID,
		"action", event.Action,
		"request_id", event.RequestID,
	)
	return nil
}

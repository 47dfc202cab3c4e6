package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/interfaces"
)

// EventHandler consumes attendance events at the notification boundary.
// Actual delivery (push, email) is owned by downstream systems.
type EventHandler struct {
	logger logger.Logger
}

func NewEventHandler(logger logger.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleEvent(ctx context.Context, body []byte) error {
	var msg interfaces.AttendanceEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse attendance event", "", nil, err)
		return err
	}

	h.logger.Info("attendance_event_received", fmt.Sprintf("Received %s for user %s", msg.EventType, msg.UserID),
		msg.EventID, map[string]interface{}{
			"restaurant_id":   msg.RestaurantID,
			"user_id":         msg.UserID,
			"event_type":      msg.EventType,
			"source":          msg.Source,
			"work_session_id": msg.WorkSessionID,
		})

	return nil
}

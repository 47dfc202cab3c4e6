package interfaces

import (
	"context"
	"time"

	"github.com/staffclock/attendance/internal/domain"
)

// AttendanceEventMessage fans accepted clock events out to downstream
// consumers (notifications, reporting).
type AttendanceEventMessage struct {
	EventID       string                    `json:"event_id"`
	RestaurantID  string                    `json:"restaurant_id"`
	UserID        string                    `json:"user_id"`
	EventType     domain.EventType          `json:"event_type"`
	Source        domain.EventSource        `json:"source"`
	Method        domain.VerificationMethod `json:"verification_method"`
	EventTime     time.Time                 `json:"event_time"`
	WorkSessionID string                    `json:"work_session_id"`
}

type MessagePublisher interface {
	PublishAttendanceEvent(ctx context.Context, msg AttendanceEventMessage) error
}

type MessageConsumer interface {
	ConsumeAttendanceEvents(ctx context.Context, handler AttendanceEventHandler) error
}

type AttendanceEventHandler func(ctx context.Context, body []byte) error

package postgres

import (
	"context"
	"fmt"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

type eventRepository struct {
	db DB
}

func NewEventRepository(db DB) interfaces.EventRepository {
	return &eventRepository{db: db}
}

// insertEvent appends a ledger row, inside the session transaction that
// produced it. There is no update or delete path on this table.
func insertEvent(ctx context.Context, ex executor, e *domain.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (id, restaurant_id, user_id, event_type, source,
		                               verification_method, event_time, ip_address,
		                               latitude, longitude, work_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := ex.Exec(ctx, query,
		e.ID, e.RestaurantID, e.UserID, e.EventType, e.Source,
		e.VerificationMethod, e.EventTime, e.IPAddress,
		e.Latitude, e.Longitude, e.WorkSessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attendance event: %w", err)
	}
	return nil
}

func (r *eventRepository) ListHistory(ctx context.Context, restaurantID, userID string, limit int) ([]*domain.AttendanceEvent, error) {
	query := `
		SELECT id, restaurant_id, user_id, event_type, source, verification_method,
		       event_time, ip_address, latitude, longitude, work_session_id
		FROM attendance_events
		WHERE restaurant_id = $1 AND user_id = $2
		ORDER BY event_time DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, restaurantID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AttendanceEvent
	for rows.Next() {
		var e domain.AttendanceEvent
		if err := rows.Scan(
			&e.ID, &e.RestaurantID, &e.UserID, &e.EventType, &e.Source, &e.VerificationMethod,
			&e.EventTime, &e.IPAddress, &e.Latitude, &e.Longitude, &e.WorkSessionID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, &e)
	}
	return events, nil
}

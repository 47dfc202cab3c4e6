package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

type scheduleRepository struct {
	db DB
}

func NewScheduleRepository(db DB) interfaces.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) FindPublished(ctx context.Context, restaurantID, userID string, date time.Time) (*domain.StaffSchedule, error) {
	query := `
		SELECT id, restaurant_id, user_id, date, start_time, end_time, status
		FROM staff_schedules
		WHERE restaurant_id = $1 AND user_id = $2 AND date = $3::date AND status = 'published'
		LIMIT 1
	`

	// The business date goes over the wire as a plain date string; sending
	// the restaurant-local midnight as a timestamp would let the session
	// timezone shift it onto the wrong day.
	var s domain.StaffSchedule
	err := r.db.QueryRow(ctx, query, restaurantID, userID, date.Format("2006-01-02")).Scan(
		&s.ID, &s.RestaurantID, &s.UserID, &s.Date, &s.StartTime, &s.EndTime, &s.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to query staff schedule: %w", err)
	}
	return &s, nil
}

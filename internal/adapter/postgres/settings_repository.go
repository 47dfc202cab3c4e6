package postgres

import (
	"context"
	"fmt"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

type settingsRepository struct {
	db DB
}

func NewSettingsRepository(db DB) interfaces.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByRestaurant(ctx context.Context, restaurantID string) (*domain.AttendanceSettings, error) {
	query := `
		SELECT id, attendance_mode, attendance_early_minutes, attendance_late_minutes,
		       latitude, longitude, timezone, day_boundary_hour
		FROM restaurants
		WHERE id = $1
	`

	var s domain.AttendanceSettings
	err := r.db.QueryRow(ctx, query, restaurantID).Scan(
		&s.RestaurantID, &s.Mode, &s.EarlyMinutes, &s.LateMinutes,
		&s.Latitude, &s.Longitude, &s.Timezone, &s.DayBoundaryHour,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance settings: %w", err)
	}
	return &s, nil
}

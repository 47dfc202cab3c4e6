package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

// Policy resolves attendance-mode and schedule-derived time-window rules.
type Policy struct {
	schedules interfaces.ScheduleRepository
}

func NewPolicy(schedules interfaces.ScheduleRepository) *Policy {
	return &Policy{schedules: schedules}
}

// CheckSource gates a request's source by the restaurant's attendance mode.
// Disabled mode permits everything.
func CheckSource(mode domain.AttendanceMode, source domain.EventSource) error {
	switch mode {
	case domain.ModeDisabled:
		return nil
	case domain.ModeDeviceOnly:
		if source != domain.SourceDevice {
			return domain.ErrModeNotAllowed
		}
	case domain.ModeQROnly:
		if source != domain.SourceQRCode {
			return domain.ErrModeNotAllowed
		}
	case domain.ModeDeviceOrQR:
		if source != domain.SourceDevice && source != domain.SourceQRCode {
			return domain.ErrModeNotAllowed
		}
	default:
		return domain.ErrModeNotAllowed
	}
	return nil
}

// BusinessDate maps an instant onto the restaurant-local business day. Hours
// before the boundary belong to the previous calendar day, so a shift ending
// at 02:00 still counts toward the evening it started.
func BusinessDate(now time.Time, settings *domain.AttendanceSettings) time.Time {
	local := now.In(settings.Location())
	if local.Hour() < settings.DayBoundaryHour {
		local = local.AddDate(0, 0, -1)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// ResolveTodaySchedule finds the published schedule for the business day.
// A missing schedule blocks clock-in with no_schedule.
func (p *Policy) ResolveTodaySchedule(ctx context.Context, restaurantID, userID string, businessDate time.Time) (*domain.StaffSchedule, error) {
	schedule, err := p.schedules.FindPublished(ctx, restaurantID, userID, businessDate)
	if err != nil {
		if errors.Is(err, domain.ErrScheduleNotFound) {
			return nil, domain.ErrNoSchedule
		}
		return nil, fmt.Errorf("failed to resolve schedule: %w", err)
	}
	return schedule, nil
}

// CheckTimeWindow admits now against [start - early, start + late]. The
// window is anchored to the scheduled start only; the scheduled end never
// matters here.
func CheckTimeWindow(now, start time.Time, earlyMinutes, lateMinutes int) error {
	earliest := start.Add(-time.Duration(earlyMinutes) * time.Minute)
	latest := start.Add(time.Duration(lateMinutes) * time.Minute)

	if now.Before(earliest) {
		return domain.ErrTooEarly
	}
	if now.After(latest) {
		return domain.ErrTooLate
	}
	return nil
}

// AdmitClockIn runs the schedule-derived checks for a clock-in attempt.
// Disabled mode skips both the schedule lookup and the time window.
func (p *Policy) AdmitClockIn(ctx context.Context, settings *domain.AttendanceSettings, userID string, now time.Time) (*domain.StaffSchedule, error) {
	if settings.Mode == domain.ModeDisabled {
		return nil, nil
	}

	schedule, err := p.ResolveTodaySchedule(ctx, settings.RestaurantID, userID, BusinessDate(now, settings))
	if err != nil {
		return nil, err
	}

	if err := CheckTimeWindow(now, schedule.StartTime, settings.EarlyMinutes, settings.LateMinutes); err != nil {
		return nil, err
	}

	return schedule, nil
}

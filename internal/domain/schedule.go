package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

// StaffSchedule is a planned shift for one staff member on one business day.
// Only published schedules are visible to admission checks.
type StaffSchedule struct {
	ID           string
	RestaurantID string
	UserID       string
	Date         time.Time
	StartTime    time.Time
	EndTime      time.Time
	Status       ScheduleStatus
}

// IsPublished reports whether the schedule is visible to admission checks.
func (s *StaffSchedule) IsPublished() bool {
	return s.Status == ScheduleStatusPublished
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAutoClosed SessionStatus = "auto_closed"
)

// WorkSession represents one stretch of tracked work for a staff member.
// At most one active non-manual session exists per (restaurant, user).
type WorkSession struct {
	ID           string
	RestaurantID string
	UserID       string
	ClockIn      time.Time
	ClockOut     *time.Time
	Status       SessionStatus
	BreakMinutes int
	HoursWorked  float64
	IsManual     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewWorkSession creates an active session starting at now.
func NewWorkSession(restaurantID, userID string, now time.Time, breakMinutes int) *WorkSession {
	return &WorkSession{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		UserID:       userID,
		ClockIn:      now,
		Status:       SessionStatusActive,
		BreakMinutes: breakMinutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Complete closes the session at now and computes worked hours as the elapsed
// time minus breaks, floored at zero, in decimal hours.
func (s *WorkSession) Complete(now time.Time) error {
	if s.Status != SessionStatusActive {
		return ErrNotClockedIn
	}

	s.ClockOut = &now
	s.Status = SessionStatusCompleted

	worked := now.Sub(s.ClockIn) - time.Duration(s.BreakMinutes)*time.Minute
	if worked < 0 {
		worked = 0
	}
	s.HoursWorked = worked.Hours()
	s.UpdatedAt = now

	return nil
}

// AutoClose repairs an abandoned session: clock-out equals clock-in so no
// worked time is credited.
func (s *WorkSession) AutoClose(now time.Time) {
	out := s.ClockIn
	s.ClockOut = &out
	s.Status = SessionStatusAutoClosed
	s.HoursWorked = 0
	s.UpdatedAt = now
}

// IsActive reports whether the session is still open.
func (s *WorkSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

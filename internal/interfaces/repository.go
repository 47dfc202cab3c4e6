package interfaces

import (
	"context"
	"time"

	"github.com/staffclock/attendance/internal/domain"
)

type QRCodeRepository interface {
	Create(ctx context.Context, qr *domain.AttendanceQRCode) error
	Update(ctx context.Context, qr *domain.AttendanceQRCode) error
	FindActiveByRestaurant(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error)
	FindActiveByCode(ctx context.Context, code string) (*domain.AttendanceQRCode, error)
}

type SessionRepository interface {
	// CreateWithEvent inserts the session and appends its clock-in ledger
	// entry in one transaction. A non-nil stale session is persisted in the
	// same transaction, so the auto-close repair cannot outlive a failed
	// insert.
	CreateWithEvent(ctx context.Context, session *domain.WorkSession, event *domain.AttendanceEvent, stale *domain.WorkSession) error
	// CompleteWithEvent persists the closed session together with its
	// clock-out ledger entry.
	CompleteWithEvent(ctx context.Context, session *domain.WorkSession, event *domain.AttendanceEvent) error
	// FindActiveAutomatic returns the single active non-manual session for
	// the user, regardless of date. domain.ErrSessionNotFound when absent.
	FindActiveAutomatic(ctx context.Context, restaurantID, userID string) (*domain.WorkSession, error)
	// FindActive returns every active session, manual ones included.
	FindActive(ctx context.Context, restaurantID, userID string) ([]*domain.WorkSession, error)
	ListBetween(ctx context.Context, restaurantID, userID string, from, to time.Time) ([]*domain.WorkSession, error)
}

// EventRepository is the read side of the ledger; writes happen inside the
// session repository's transactions.
type EventRepository interface {
	ListHistory(ctx context.Context, restaurantID, userID string, limit int) ([]*domain.AttendanceEvent, error)
}

type ScheduleRepository interface {
	// FindPublished looks up the published schedule for the given business
	// date. Returns domain.ErrScheduleNotFound when none exists.
	FindPublished(ctx context.Context, restaurantID, userID string, date time.Time) (*domain.StaffSchedule, error)
}

type SettingsRepository interface {
	FindByRestaurant(ctx context.Context, restaurantID string) (*domain.AttendanceSettings, error)
}

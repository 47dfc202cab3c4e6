package interfaces

import (
	"context"

	"github.com/staffclock/attendance/internal/domain"
)

// Commands for services (Business Logic)
type ClockCommand struct {
	RestaurantID string
	UserID       string
	Token        string // signed QR token, required when Source is qr_code
	Verification domain.Verification
}

type AttendanceService interface {
	ClockIn(ctx context.Context, cmd ClockCommand) (*domain.WorkSession, error)
	ClockOut(ctx context.Context, cmd ClockCommand) (*domain.WorkSession, error)
	Status(ctx context.Context, restaurantID, userID string) (*StatusResponse, error)
}

type TokenService interface {
	// CurrentToken lazily creates the restaurant's QR code if none exists
	// and returns a freshly signed token for it.
	CurrentToken(ctx context.Context, restaurantID string) (string, *domain.AttendanceQRCode, error)
	ValidateToken(ctx context.Context, token, restaurantID string) (*domain.AttendanceQRCode, error)
	Rotate(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error)
}

type EventHistory interface {
	History(ctx context.Context, restaurantID, userID string, limit int) ([]*domain.AttendanceEvent, error)
}

// StatusResponse answers "where does this user stand right now".
type StatusResponse struct {
	IsClockedIn    bool
	CanClockIn     bool
	CanClockOut    bool
	AttendanceMode domain.AttendanceMode
	QREnabled      bool
	DeviceEnabled  bool
	TodaySchedule  *domain.StaffSchedule
	TodaySessions  []*domain.WorkSession
}

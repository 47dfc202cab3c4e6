package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeClockIn  EventType = "clock_in"
	EventTypeClockOut EventType = "clock_out"
)

type EventSource string

const (
	SourceQRCode EventSource = "qr_code"
	SourceDevice EventSource = "device"
	SourceManual EventSource = "manual"
)

type VerificationMethod string

const (
	MethodQR        VerificationMethod = "qr"
	MethodBiometric VerificationMethod = "biometric"
	MethodPIN       VerificationMethod = "pin"
	MethodManual    VerificationMethod = "manual"
)

// Verification carries the provenance of a clock request: how presence was
// proven and from where.
type Verification struct {
	Source    EventSource
	Method    VerificationMethod
	IPAddress string
	Latitude  *float64
	Longitude *float64
}

// AttendanceEvent is one row of the append-only attendance ledger.
// Events are never mutated or deleted.
type AttendanceEvent struct {
	ID                 string
	RestaurantID       string
	UserID             string
	EventType          EventType
	Source             EventSource
	VerificationMethod VerificationMethod
	EventTime          time.Time
	IPAddress          string
	Latitude           *float64
	Longitude          *float64
	WorkSessionID      string
}

// NewAttendanceEvent builds a ledger entry for a session transition.
func NewAttendanceEvent(restaurantID, userID string, eventType EventType, sessionID string, v Verification, now time.Time) *AttendanceEvent {
	return &AttendanceEvent{
		ID:                 uuid.NewString(),
		RestaurantID:       restaurantID,
		UserID:             userID,
		EventType:          eventType,
		Source:             v.Source,
		VerificationMethod: v.Method,
		EventTime:          now,
		IPAddress:          v.IPAddress,
		Latitude:           v.Latitude,
		Longitude:          v.Longitude,
		WorkSessionID:      sessionID,
	}
}

// Coordinate returns the event's location, or nil when it carries none.
func (v Verification) Coordinate() *Coordinate {
	if v.Latitude == nil || v.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *v.Latitude, Longitude: *v.Longitude}
}

package domain

import "errors"

// Admission and lifecycle failures. The message is the stable error code
// reported to API consumers.
var (
	ErrInvalidQR           = errors.New("invalid_qr")
	ErrExpiredQR           = errors.New("expired_qr")
	ErrGeolocationRequired = errors.New("geolocation_required")
	ErrTooFar              = errors.New("too_far")
	ErrNoSchedule          = errors.New("no_schedule")
	ErrTooEarly            = errors.New("too_early")
	ErrTooLate             = errors.New("too_late")
	ErrModeNotAllowed      = errors.New("mode_not_allowed")
	ErrNotClockedIn        = errors.New("not_clocked_in")
	ErrAlreadyClockedIn    = errors.New("already_clocked_in")
)

// Repository lookup misses. These never reach API consumers directly.
var (
	ErrQRCodeNotFound   = errors.New("qr code not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSessionNotFound  = errors.New("work session not found")
)

var admissionErrors = []error{
	ErrInvalidQR, ErrExpiredQR, ErrGeolocationRequired, ErrTooFar,
	ErrNoSchedule, ErrTooEarly, ErrTooLate, ErrModeNotAllowed,
	ErrNotClockedIn, ErrAlreadyClockedIn,
}

// IsAdmissionError reports whether err carries one of the stable error codes.
func IsAdmissionError(err error) bool {
	for _, e := range admissionErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

package domain

import "time"

type AttendanceMode string

const (
	ModeDisabled   AttendanceMode = "disabled"
	ModeDeviceOnly AttendanceMode = "device_only"
	ModeQROnly     AttendanceMode = "qr_only"
	ModeDeviceOrQR AttendanceMode = "device_or_qr"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// AttendanceSettings is the per-restaurant attendance configuration, passed
// explicitly into every time-dependent computation.
type AttendanceSettings struct {
	RestaurantID    string
	Mode            AttendanceMode
	EarlyMinutes    int
	LateMinutes     int
	Latitude        float64
	Longitude       float64
	Timezone        string
	DayBoundaryHour int
}

// QREnabled reports whether QR-sourced events are admissible under the mode.
func (s *AttendanceSettings) QREnabled() bool {
	return s.Mode == ModeQROnly || s.Mode == ModeDeviceOrQR
}

// DeviceEnabled reports whether device-sourced events are admissible.
func (s *AttendanceSettings) DeviceEnabled() bool {
	return s.Mode == ModeDeviceOnly || s.Mode == ModeDeviceOrQR
}

// Coordinate returns the restaurant's registered location.
func (s *AttendanceSettings) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Location resolves the restaurant timezone, falling back to UTC when the
// configured name does not load.
func (s *AttendanceSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package geofence

import (
	"errors"
	"math"
	"testing"

	"github.com/staffclock/attendance/internal/domain"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	t.Parallel()

	p := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	t.Parallel()

	a := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	b := domain.Coordinate{Latitude: 55.8558, Longitude: 37.6173}

	d1 := DistanceMeters(a, b)
	d2 := DistanceMeters(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}

	// One degree of latitude is roughly 111 km; a tenth of that is ~11 km.
	if d1 < 10000 || d1 > 13000 {
		t.Errorf("expected ~11km, got %f", d1)
	}
}

func TestValidateRequiresGeolocation(t *testing.T) {
	t.Parallel()

	qr := &domain.AttendanceQRCode{RequireGeolocation: true, MaxDistanceMeters: 100}
	restaurant := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}

	if err := Validate(qr, restaurant, nil); !errors.Is(err, domain.ErrGeolocationRequired) {
		t.Errorf("expected geolocation_required, got %v", err)
	}
}

func TestValidateOptionalGeolocation(t *testing.T) {
	t.Parallel()

	qr := &domain.AttendanceQRCode{RequireGeolocation: false, MaxDistanceMeters: 100}
	restaurant := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}

	if err := Validate(qr, restaurant, nil); err != nil {
		t.Errorf("expected nil error without coordinates, got %v", err)
	}
}

func TestValidateTooFar(t *testing.T) {
	t.Parallel()

	qr := &domain.AttendanceQRCode{RequireGeolocation: true, MaxDistanceMeters: 100}
	restaurant := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	user := domain.Coordinate{Latitude: 55.8558, Longitude: 37.6173}

	if err := Validate(qr, restaurant, &user); !errors.Is(err, domain.ErrTooFar) {
		t.Errorf("expected too_far, got %v", err)
	}
}

func TestValidateWithinBound(t *testing.T) {
	t.Parallel()

	qr := &domain.AttendanceQRCode{RequireGeolocation: true, MaxDistanceMeters: 100}
	restaurant := domain.Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	user := domain.Coordinate{Latitude: 55.75585, Longitude: 37.61735}

	if err := Validate(qr, restaurant, &user); err != nil {
		t.Errorf("expected nil error inside the geofence, got %v", err)
	}
}

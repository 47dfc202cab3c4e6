package geofence

import (
	"math"

	"github.com/staffclock/attendance/internal/domain"
)

const earthRadiusMeters = 6371000

// DistanceMeters computes the haversine great-circle distance between two
// points.
func DistanceMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Validate applies the QR code's proximity policy against the restaurant's
// registered location. user may be nil when the client sent no coordinates.
func Validate(qr *domain.AttendanceQRCode, restaurant domain.Coordinate, user *domain.Coordinate) error {
	if user == nil {
		if qr.RequireGeolocation {
			return domain.ErrGeolocationRequired
		}
		return nil
	}

	if DistanceMeters(restaurant, *user) > qr.MaxDistanceMeters {
		return domain.ErrTooFar
	}

	return nil
}

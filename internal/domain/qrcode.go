package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QRType string

const (
	QRTypeStatic  QRType = "static"
	QRTypeDynamic QRType = "dynamic"
)

// AttendanceQRCode is a signed-token credential bound to one restaurant.
// The secret never leaves this entity and the repositories that persist it.
type AttendanceQRCode struct {
	ID                     string
	RestaurantID           string
	Code                   string
	Secret                 string
	Type                   QRType
	RequireGeolocation     bool
	MaxDistanceMeters      float64
	RefreshIntervalMinutes int
	ExpiresAt              *time.Time
	IsActive               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewAttendanceQRCode creates an active code with a fresh identity and secret.
func NewAttendanceQRCode(restaurantID string, qrType QRType) (*AttendanceQRCode, error) {
	if qrType != QRTypeStatic && qrType != QRTypeDynamic {
		return nil, fmt.Errorf("invalid qr type: %s", qrType)
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &AttendanceQRCode{
		ID:                     uuid.NewString(),
		RestaurantID:           restaurantID,
		Code:                   uuid.NewString(),
		Secret:                 secret,
		Type:                   qrType,
		RequireGeolocation:     true,
		MaxDistanceMeters:      100,
		RefreshIntervalMinutes: 5,
		IsActive:               true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

// Rotate replaces the public code and signing secret in one step, which
// invalidates every previously issued token.
func (q *AttendanceQRCode) Rotate() error {
	secret, err := newSecret()
	if err != nil {
		return err
	}

	q.Code = uuid.NewString()
	q.Secret = secret
	q.UpdatedAt = time.Now()
	return nil
}

// IsExpired reports whether an explicit expiry is set and has passed.
func (q *AttendanceQRCode) IsExpired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// Deactivate marks the code unusable for all future scans.
func (q *AttendanceQRCode) Deactivate() {
	q.IsActive = false
	q.UpdatedAt = time.Now()
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

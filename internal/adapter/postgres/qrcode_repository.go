package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

type qrCodeRepository struct {
	db DB
}

func NewQRCodeRepository(db DB) interfaces.QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, qr *domain.AttendanceQRCode) error {
	query := `
		INSERT INTO attendance_qr_codes (id, restaurant_id, code, secret, type, require_geolocation,
		                                 max_distance_meters, refresh_interval_minutes, expires_at,
		                                 is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		qr.ID, qr.RestaurantID, qr.Code, qr.Secret, qr.Type, qr.RequireGeolocation,
		qr.MaxDistanceMeters, qr.RefreshIntervalMinutes, qr.ExpiresAt,
		qr.IsActive, qr.CreatedAt, qr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert qr code: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields. Rotation lands here as a single
// statement, so a new (code, secret) pair is visible atomically.
func (r *qrCodeRepository) Update(ctx context.Context, qr *domain.AttendanceQRCode) error {
	query := `
		UPDATE attendance_qr_codes
		SET code = $1, secret = $2, expires_at = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		qr.Code, qr.Secret, qr.ExpiresAt, qr.IsActive, qr.UpdatedAt, qr.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update qr code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQRCodeNotFound
	}
	return nil
}

func (r *qrCodeRepository) FindActiveByRestaurant(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error) {
	return r.findActive(ctx, "restaurant_id", restaurantID)
}

func (r *qrCodeRepository) FindActiveByCode(ctx context.Context, code string) (*domain.AttendanceQRCode, error) {
	return r.findActive(ctx, "code", code)
}

func (r *qrCodeRepository) findActive(ctx context.Context, column, value string) (*domain.AttendanceQRCode, error) {
	query := fmt.Sprintf(`
		SELECT id, restaurant_id, code, secret, type, require_geolocation,
		       max_distance_meters, refresh_interval_minutes, expires_at,
		       is_active, created_at, updated_at
		FROM attendance_qr_codes
		WHERE %s = $1 AND is_active = true
	`, column)

	var qr domain.AttendanceQRCode
	err := r.db.QueryRow(ctx, query, value).Scan(
		&qr.ID, &qr.RestaurantID, &qr.Code, &qr.Secret, &qr.Type, &qr.RequireGeolocation,
		&qr.MaxDistanceMeters, &qr.RefreshIntervalMinutes, &qr.ExpiresAt,
		&qr.IsActive, &qr.CreatedAt, &qr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQRCodeNotFound
		}
		return nil, fmt.Errorf("failed to query qr code: %w", err)
	}
	return &qr, nil
}

package qrtoken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

// Service issues and verifies signed attendance tokens. Token wire format:
// base64(code + ":" + issuedAtUnixSeconds + ":" + hex(HMAC-SHA256(payload, secret))).
type Service struct {
	repo   interfaces.QRCodeRepository
	logger logger.Logger
	locks  *codeLocks
	now    func() time.Time
}

func NewService(repo interfaces.QRCodeRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		locks:  newCodeLocks(),
		now:    time.Now,
	}
}

// GenerateToken signs the code's public identifier together with the issue
// timestamp. No side effects beyond reading the secret.
func (s *Service) GenerateToken(qr *domain.AttendanceQRCode) string {
	payload := fmt.Sprintf("%s:%d", qr.Code, s.now().Unix())
	return base64.StdEncoding.EncodeToString([]byte(payload + ":" + sign(payload, qr.Secret)))
}

func (s *Service) CurrentToken(ctx context.Context, restaurantID string) (string, *domain.AttendanceQRCode, error) {
	release := s.locks.Acquire(restaurantID)
	defer release()

	qr, err := s.ensureCode(ctx, restaurantID)
	if err != nil {
		return "", nil, err
	}
	return s.GenerateToken(qr), qr, nil
}

// ValidateToken resolves a scanned token back to its QR code, enforcing
// signature, restaurant scope, explicit expiry and dynamic freshness, in
// that order.
func (s *Service) ValidateToken(ctx context.Context, token, restaurantID string) (*domain.AttendanceQRCode, error) {
	code, issuedAt, signature, err := decodeToken(token)
	if err != nil {
		return nil, domain.ErrInvalidQR
	}

	qr, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrQRCodeNotFound) {
			return nil, domain.ErrInvalidQR
		}
		return nil, fmt.Errorf("failed to look up qr code: %w", err)
	}

	payload := fmt.Sprintf("%s:%d", code, issuedAt)
	if !hmac.Equal([]byte(signature), []byte(sign(payload, qr.Secret))) {
		return nil, domain.ErrInvalidQR
	}

	if qr.RestaurantID != restaurantID {
		// Cross-restaurant tokens are never honored.
		return nil, domain.ErrInvalidQR
	}

	now := s.now()
	if qr.IsExpired(now) {
		qr.Deactivate()
		if err := s.repo.Update(ctx, qr); err != nil {
			s.logger.Error("qr_deactivate_failed", "Failed to deactivate expired QR code", "", map[string]interface{}{
				"restaurant_id": qr.RestaurantID,
			}, err)
		}
		return nil, domain.ErrExpiredQR
	}

	if qr.Type == domain.QRTypeDynamic {
		age := now.Unix() - issuedAt
		if age > int64(qr.RefreshIntervalMinutes)*60 {
			return nil, domain.ErrExpiredQR
		}
	}

	return qr, nil
}

// Rotate atomically replaces the restaurant's (code, secret) pair. Every
// outstanding token becomes invalid.
func (s *Service) Rotate(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error) {
	release := s.locks.Acquire(restaurantID)
	defer release()

	qr, err := s.ensureCode(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if err := qr.Rotate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, qr); err != nil {
		return nil, fmt.Errorf("failed to rotate qr code: %w", err)
	}

	s.logger.Info("qr_rotated", "QR code rotated", "", map[string]interface{}{
		"restaurant_id": restaurantID,
	})

	return qr, nil
}

// ensureCode lazily creates the restaurant's QR code on first use. Callers
// hold the restaurant's code lock.
func (s *Service) ensureCode(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error) {
	qr, err := s.repo.FindActiveByRestaurant(ctx, restaurantID)
	if err == nil {
		return qr, nil
	}
	if !errors.Is(err, domain.ErrQRCodeNotFound) {
		return nil, fmt.Errorf("failed to look up qr code: %w", err)
	}

	qr, err = domain.NewAttendanceQRCode(restaurantID, domain.QRTypeDynamic)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, qr); err != nil {
		return nil, fmt.Errorf("failed to create qr code: %w", err)
	}

	s.logger.Info("qr_created", "Attendance QR code created", "", map[string]interface{}{
		"restaurant_id": restaurantID,
	})

	return qr, nil
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func decodeToken(token string) (code string, issuedAt int64, signature string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", 0, "", err
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf("malformed token")
	}

	issuedAt, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, "", err
	}

	return parts[0], issuedAt, parts[2], nil
}

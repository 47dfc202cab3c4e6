package history

import (
	"context"
	"fmt"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

// Service is the read side of the attendance ledger. Events are written once,
// inside the session repository's transactions, and read back strictly scoped
// to the requesting user and restaurant.
type Service struct {
	events   interfaces.EventRepository
	logger   logger.Logger
	pageSize int
}

func NewService(events interfaces.EventRepository, logger logger.Logger, pageSize int) *Service {
	return &Service{
		events:   events,
		logger:   logger,
		pageSize: pageSize,
	}
}

// History returns the user's events for the restaurant, newest first. limit
// values outside (0, pageSize] are clamped to the configured page size.
func (s *Service) History(ctx context.Context, restaurantID, userID string, limit int) ([]*domain.AttendanceEvent, error) {
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}

	events, err := s.events.ListHistory(ctx, restaurantID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return events, nil
}

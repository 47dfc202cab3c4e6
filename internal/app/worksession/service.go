package worksession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/app/admission"
	"github.com/staffclock/attendance/internal/app/geofence"
	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

// Service is the work-session state machine. Every clock-in/out runs as a
// read-check-write critical section keyed by (restaurant, user), so at most
// one active non-manual session can exist per worker.
type Service struct {
	sessions     interfaces.SessionRepository
	settings     interfaces.SettingsRepository
	tokens       interfaces.TokenService
	policy       *admission.Policy
	publisher    interfaces.MessagePublisher
	logger       logger.Logger
	locks        *sessionLocks
	breakMinutes int
	now          func() time.Time
}

func NewService(
	sessions interfaces.SessionRepository,
	settings interfaces.SettingsRepository,
	tokens interfaces.TokenService,
	policy *admission.Policy,
	publisher interfaces.MessagePublisher,
	logger logger.Logger,
	breakMinutes int,
) *Service {
	return &Service{
		sessions:     sessions,
		settings:     settings,
		tokens:       tokens,
		policy:       policy,
		publisher:    publisher,
		logger:       logger,
		locks:        newSessionLocks(),
		breakMinutes: breakMinutes,
		now:          time.Now,
	}
}

func (s *Service) ClockIn(ctx context.Context, cmd interfaces.ClockCommand) (*domain.WorkSession, error) {
	settings, err := s.settings.FindByRestaurant(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance settings: %w", err)
	}

	now := s.now()

	// 1. Token, mode, geofence, then schedule and window, in the fixed
	// check order.
	if _, err := s.admit(ctx, cmd, settings); err != nil {
		return nil, err
	}
	if _, err := s.policy.AdmitClockIn(ctx, settings, cmd.UserID, now); err != nil {
		return nil, err
	}

	// 2. Session mutation under the per-worker lock.
	release := s.locks.Acquire(cmd.RestaurantID, cmd.UserID)
	defer release()

	existing, err := s.sessions.FindActiveAutomatic(ctx, cmd.RestaurantID, cmd.UserID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}

	var stale *domain.WorkSession
	if existing != nil {
		sameDay := admission.BusinessDate(existing.ClockIn, settings).
			Equal(admission.BusinessDate(now, settings))
		if sameDay {
			return nil, domain.ErrAlreadyClockedIn
		}

		// Abandoned session from an earlier business day: repair it with
		// zero credited time. Not reported to the caller.
		existing.AutoClose(now)
		stale = existing
	}

	session := domain.NewWorkSession(cmd.RestaurantID, cmd.UserID, now, s.breakMinutes)
	event := domain.NewAttendanceEvent(cmd.RestaurantID, cmd.UserID, domain.EventTypeClockIn, session.ID, cmd.Verification, now)

	// The session row, its ledger entry and the stale repair commit or fail
	// as one write.
	if err := s.sessions.CreateWithEvent(ctx, session, event, stale); err != nil {
		return nil, fmt.Errorf("failed to create work session: %w", err)
	}

	if stale != nil {
		s.logger.Info("session_auto_closed", "Stale work session auto-closed", "", map[string]interface{}{
			"session_id": stale.ID,
			"user_id":    cmd.UserID,
		})
	}

	s.publish(ctx, event)

	s.logger.Debug("clock_in", "Worker clocked in", "", map[string]interface{}{
		"session_id": session.ID,
		"user_id":    cmd.UserID,
	})

	return session, nil
}

func (s *Service) ClockOut(ctx context.Context, cmd interfaces.ClockCommand) (*domain.WorkSession, error) {
	settings, err := s.settings.FindByRestaurant(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance settings: %w", err)
	}

	now := s.now()

	// Clock-out is never blocked by schedule or time window, only by token,
	// mode and geofence checks.
	if _, err := s.admit(ctx, cmd, settings); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(cmd.RestaurantID, cmd.UserID)
	defer release()

	session, err := s.sessions.FindActiveAutomatic(ctx, cmd.RestaurantID, cmd.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotClockedIn
		}
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}

	if err := session.Complete(now); err != nil {
		return nil, err
	}

	event := domain.NewAttendanceEvent(cmd.RestaurantID, cmd.UserID, domain.EventTypeClockOut, session.ID, cmd.Verification, now)
	if err := s.sessions.CompleteWithEvent(ctx, session, event); err != nil {
		return nil, fmt.Errorf("failed to complete work session: %w", err)
	}

	s.publish(ctx, event)

	s.logger.Debug("clock_out", "Worker clocked out", "", map[string]interface{}{
		"session_id":   session.ID,
		"user_id":      cmd.UserID,
		"hours_worked": session.HoursWorked,
	})

	return session, nil
}

func (s *Service) Status(ctx context.Context, restaurantID, userID string) (*interfaces.StatusResponse, error) {
	settings, err := s.settings.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance settings: %w", err)
	}

	now := s.now()

	// Manual sessions count toward clocked-in status even though the
	// automated lifecycle never touches them.
	active, err := s.sessions.FindActive(ctx, restaurantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	var schedule *domain.StaffSchedule
	schedule, err = s.policy.ResolveTodaySchedule(ctx, restaurantID, userID, admission.BusinessDate(now, settings))
	if err != nil {
		if !errors.Is(err, domain.ErrNoSchedule) {
			return nil, err
		}
		schedule = nil
	}

	from, to := businessDayBounds(now, settings)
	today, err := s.sessions.ListBetween(ctx, restaurantID, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's sessions: %w", err)
	}

	clockedIn := len(active) > 0
	return &interfaces.StatusResponse{
		IsClockedIn:    clockedIn,
		CanClockIn:     !clockedIn,
		CanClockOut:    clockedIn,
		AttendanceMode: settings.Mode,
		QREnabled:      settings.QREnabled(),
		DeviceEnabled:  settings.DeviceEnabled(),
		TodaySchedule:  schedule,
		TodaySessions:  today,
	}, nil
}

// admit runs the checks shared by clock-in and clock-out: QR token when the
// request is QR-sourced, then mode gating, then the geofence.
func (s *Service) admit(ctx context.Context, cmd interfaces.ClockCommand, settings *domain.AttendanceSettings) (*domain.AttendanceQRCode, error) {
	var qr *domain.AttendanceQRCode

	if cmd.Verification.Source == domain.SourceQRCode {
		var err error
		qr, err = s.tokens.ValidateToken(ctx, cmd.Token, cmd.RestaurantID)
		if err != nil {
			return nil, err
		}
	}

	if err := admission.CheckSource(settings.Mode, cmd.Verification.Source); err != nil {
		return nil, err
	}

	if qr != nil {
		if err := geofence.Validate(qr, settings.Coordinate(), cmd.Verification.Coordinate()); err != nil {
			return nil, err
		}
	}

	return qr, nil
}

func (s *Service) publish(ctx context.Context, event *domain.AttendanceEvent) {
	msg := interfaces.AttendanceEventMessage{
		EventID:       event.ID,
		RestaurantID:  event.RestaurantID,
		UserID:        event.UserID,
		EventType:     event.EventType,
		Source:        event.Source,
		Method:        event.VerificationMethod,
		EventTime:     event.EventTime,
		WorkSessionID: event.WorkSessionID,
	}
	if err := s.publisher.PublishAttendanceEvent(ctx, msg); err != nil {
		// Downstream fanout must not block the clock operation.
		s.logger.Error("event_publish_failed", "Failed to publish attendance event", "", map[string]interface{}{
			"event_id": event.ID,
		}, err)
	}
}

// businessDayBounds returns the half-open interval covering the current
// business day in restaurant-local time.
func businessDayBounds(now time.Time, settings *domain.AttendanceSettings) (time.Time, time.Time) {
	date := admission.BusinessDate(now, settings)
	from := date.Add(time.Duration(settings.DayBoundaryHour) * time.Hour)
	return from, from.AddDate(0, 0, 1)
}

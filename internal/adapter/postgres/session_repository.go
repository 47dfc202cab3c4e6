package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

const sessionColumns = `id, restaurant_id, user_id, clock_in, clock_out, status,
       break_minutes, hours_worked, is_manual, created_at, updated_at`

type sessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) interfaces.SessionRepository {
	return &sessionRepository{db: db}
}

// CreateWithEvent inserts the session and appends its clock-in ledger entry
// in one transaction. A non-nil stale session joins the same transaction, so
// the auto-close repair cannot outlive a failed insert.
func (r *sessionRepository) CreateWithEvent(ctx context.Context, s *domain.WorkSession, e *domain.AttendanceEvent, stale *domain.WorkSession) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if stale != nil {
		if err := updateSession(ctx, tx, stale); err != nil {
			return err
		}
	}
	if err := insertSession(ctx, tx, s); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, e); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CompleteWithEvent persists the closed session together with its clock-out
// ledger entry.
func (r *sessionRepository) CompleteWithEvent(ctx context.Context, s *domain.WorkSession, e *domain.AttendanceEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := updateSession(ctx, tx, s); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, e); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertSession(ctx context.Context, ex executor, s *domain.WorkSession) error {
	query := `
		INSERT INTO work_sessions (id, restaurant_id, user_id, clock_in, clock_out, status,
		                           break_minutes, hours_worked, is_manual, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := ex.Exec(ctx, query,
		s.ID, s.RestaurantID, s.UserID, s.ClockIn, s.ClockOut, s.Status,
		s.BreakMinutes, s.HoursWorked, s.IsManual, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work session: %w", err)
	}
	return nil
}

func updateSession(ctx context.Context, ex executor, s *domain.WorkSession) error {
	query := `
		UPDATE work_sessions
		SET clock_out = $1, status = $2, break_minutes = $3, hours_worked = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := ex.Exec(ctx, query,
		s.ClockOut, s.Status, s.BreakMinutes, s.HoursWorked, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update work session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) FindActiveAutomatic(ctx context.Context, restaurantID, userID string) (*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE restaurant_id = $1 AND user_id = $2 AND status = 'active' AND is_manual = false
		ORDER BY clock_in DESC
		LIMIT 1
	`

	var s domain.WorkSession
	err := r.db.QueryRow(ctx, query, restaurantID, userID).Scan(
		&s.ID, &s.RestaurantID, &s.UserID, &s.ClockIn, &s.ClockOut, &s.Status,
		&s.BreakMinutes, &s.HoursWorked, &s.IsManual, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepository) FindActive(ctx context.Context, restaurantID, userID string) ([]*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE restaurant_id = $1 AND user_id = $2 AND status = 'active'
		ORDER BY clock_in DESC
	`
	return r.list(ctx, query, restaurantID, userID)
}

func (r *sessionRepository) ListBetween(ctx context.Context, restaurantID, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE restaurant_id = $1 AND user_id = $2 AND clock_in >= $3 AND clock_in < $4
		ORDER BY clock_in DESC
	`
	return r.list(ctx, query, restaurantID, userID, from, to)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.WorkSession, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.WorkSession
	for rows.Next() {
		var s domain.WorkSession
		if err := rows.Scan(
			&s.ID, &s.RestaurantID, &s.UserID, &s.ClockIn, &s.ClockOut, &s.Status,
			&s.BreakMinutes, &s.HoursWorked, &s.IsManual, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

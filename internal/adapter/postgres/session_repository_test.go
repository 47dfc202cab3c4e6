package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/staffclock/attendance/internal/domain"
)

type stubRow struct{ err error }

func (r stubRow) Scan(dest ...any) error { return r.err }

type stubTag int64

func (t stubTag) RowsAffected() int64 { return int64(t) }

type stubTx struct {
	execSQL    []string
	failOn     int // 1-based Exec call to fail, 0 for never
	committed  bool
	rolledBack bool
}

func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, errors.New("unexpected query")
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return stubRow{err: errors.New("unexpected query")}
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	if t.failOn == len(t.execSQL) {
		return nil, errors.New("exec failed")
	}
	return stubTag(1), nil
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type stubDB struct {
	tx           *stubTx
	row          Row
	queryRowArgs []any
}

func (d *stubDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, errors.New("unexpected query")
}

func (d *stubDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	d.queryRowArgs = args
	if d.row != nil {
		return d.row
	}
	return stubRow{err: errors.New("unexpected query")}
}

func (d *stubDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return stubTag(1), nil
}

func (d *stubDB) Begin(ctx context.Context) (Tx, error) { return d.tx, nil }

func (d *stubDB) Close() {}

func clockInPair(now time.Time) (*domain.WorkSession, *domain.AttendanceEvent) {
	session := domain.NewWorkSession("rest-1", "user-1", now, 30)
	v := domain.Verification{Source: domain.SourceDevice, Method: domain.MethodBiometric}
	event := domain.NewAttendanceEvent("rest-1", "user-1", domain.EventTypeClockIn, session.ID, v, now)
	return session, event
}

func TestCreateWithEventRunsOneTransaction(t *testing.T) {
	t.Parallel()

	tx := &stubTx{}
	repo := NewSessionRepository(&stubDB{tx: tx})

	now := time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC)
	stale := domain.NewWorkSession("rest-1", "user-1", now.Add(-24*time.Hour), 30)
	stale.AutoClose(now)
	session, event := clockInPair(now)

	if err := repo.CreateWithEvent(context.Background(), session, event, stale); err != nil {
		t.Fatalf("create with event: %v", err)
	}

	if len(tx.execSQL) != 3 {
		t.Fatalf("expected 3 statements in the transaction, got %d", len(tx.execSQL))
	}
	if !strings.Contains(tx.execSQL[0], "UPDATE work_sessions") {
		t.Errorf("statement 1 should repair the stale session, got %q", tx.execSQL[0])
	}
	if !strings.Contains(tx.execSQL[1], "INSERT INTO work_sessions") {
		t.Errorf("statement 2 should insert the session, got %q", tx.execSQL[1])
	}
	if !strings.Contains(tx.execSQL[2], "INSERT INTO attendance_events") {
		t.Errorf("statement 3 should append the ledger entry, got %q", tx.execSQL[2])
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestCreateWithEventRollsBackOnLedgerFailure(t *testing.T) {
	t.Parallel()

	// Without a stale session the ledger append is the second statement.
	tx := &stubTx{failOn: 2}
	repo := NewSessionRepository(&stubDB{tx: tx})

	session, event := clockInPair(time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC))

	if err := repo.CreateWithEvent(context.Background(), session, event, nil); err == nil {
		t.Fatal("expected create with event to fail")
	}
	if tx.committed {
		t.Error("failed transaction was committed")
	}
	if !tx.rolledBack {
		t.Error("failed transaction was not rolled back")
	}
}

func TestCompleteWithEventRunsOneTransaction(t *testing.T) {
	t.Parallel()

	tx := &stubTx{}
	repo := NewSessionRepository(&stubDB{tx: tx})

	now := time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC)
	session := domain.NewWorkSession("rest-1", "user-1", now, 30)
	if err := session.Complete(now.Add(4 * time.Hour)); err != nil {
		t.Fatal(err)
	}
	v := domain.Verification{Source: domain.SourceDevice, Method: domain.MethodBiometric}
	event := domain.NewAttendanceEvent("rest-1", "user-1", domain.EventTypeClockOut, session.ID, v, now.Add(4*time.Hour))

	if err := repo.CompleteWithEvent(context.Background(), session, event); err != nil {
		t.Fatalf("complete with event: %v", err)
	}

	if len(tx.execSQL) != 2 {
		t.Fatalf("expected 2 statements in the transaction, got %d", len(tx.execSQL))
	}
	if !strings.Contains(tx.execSQL[0], "UPDATE work_sessions") {
		t.Errorf("statement 1 should update the session, got %q", tx.execSQL[0])
	}
	if !strings.Contains(tx.execSQL[1], "INSERT INTO attendance_events") {
		t.Errorf("statement 2 should append the ledger entry, got %q", tx.execSQL[1])
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}
}

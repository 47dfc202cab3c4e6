package qrtoken

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/domain"
)

type fakeQRRepo struct {
	mu    sync.Mutex
	codes map[string]*domain.AttendanceQRCode // keyed by ID
}

func newFakeQRRepo() *fakeQRRepo {
	return &fakeQRRepo{codes: make(map[string]*domain.AttendanceQRCode)}
}

func (r *fakeQRRepo) Create(ctx context.Context, qr *domain.AttendanceQRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *qr
	r.codes[qr.ID] = &cp
	return nil
}

func (r *fakeQRRepo) Update(ctx context.Context, qr *domain.AttendanceQRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[qr.ID]; !ok {
		return domain.ErrQRCodeNotFound
	}
	cp := *qr
	r.codes[qr.ID] = &cp
	return nil
}

func (r *fakeQRRepo) FindActiveByRestaurant(ctx context.Context, restaurantID string) (*domain.AttendanceQRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qr := range r.codes {
		if qr.RestaurantID == restaurantID && qr.IsActive {
			cp := *qr
			return &cp, nil
		}
	}
	return nil, domain.ErrQRCodeNotFound
}

func (r *fakeQRRepo) FindActiveByCode(ctx context.Context, code string) (*domain.AttendanceQRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qr := range r.codes {
		if qr.Code == code && qr.IsActive {
			cp := *qr
			return &cp, nil
		}
	}
	return nil, domain.ErrQRCodeNotFound
}

func (r *fakeQRRepo) activeCount(restaurantID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, qr := range r.codes {
		if qr.RestaurantID == restaurantID && qr.IsActive {
			n++
		}
	}
	return n
}

func newTestService(repo *fakeQRRepo) *Service {
	return NewService(repo, logger.NewWithWriter("test", io.Discard))
}

func seedQR(t *testing.T, repo *fakeQRRepo, restaurantID string, qrType domain.QRType) *domain.AttendanceQRCode {
	t.Helper()
	qr, err := domain.NewAttendanceQRCode(restaurantID, qrType)
	if err != nil {
		t.Fatalf("failed to create qr code: %v", err)
	}
	if err := repo.Create(context.Background(), qr); err != nil {
		t.Fatalf("failed to seed qr code: %v", err)
	}
	return qr
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	token := svc.GenerateToken(qr)

	got, err := svc.ValidateToken(context.Background(), token, "rest-1")
	if err != nil {
		t.Fatalf("round-trip validation failed: %v", err)
	}
	if got.ID != qr.ID {
		t.Errorf("expected qr %s, got %s", qr.ID, got.ID)
	}
}

func TestStaticTokenValidIndefinitely(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeStatic)

	token := svc.GenerateToken(qr)

	// A year later the static token still verifies.
	svc.now = func() time.Time { return time.Now().AddDate(1, 0, 0) }

	if _, err := svc.ValidateToken(context.Background(), token, "rest-1"); err != nil {
		t.Errorf("static token should not age out, got %v", err)
	}
}

func TestDynamicTokenExpiresAfterRefreshInterval(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	token := svc.GenerateToken(qr)

	svc.now = func() time.Time {
		return time.Now().Add(time.Duration(qr.RefreshIntervalMinutes)*time.Minute + time.Minute)
	}

	if _, err := svc.ValidateToken(context.Background(), token, "rest-1"); !errors.Is(err, domain.ErrExpiredQR) {
		t.Errorf("expected expired_qr, got %v", err)
	}
}

func TestExplicitExpiryDeactivatesCode(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeStatic)

	expired := time.Now().Add(-time.Hour)
	qr.ExpiresAt = &expired
	if err := repo.Update(context.Background(), qr); err != nil {
		t.Fatalf("failed to set expiry: %v", err)
	}

	token := svc.GenerateToken(qr)

	if _, err := svc.ValidateToken(context.Background(), token, "rest-1"); !errors.Is(err, domain.ErrExpiredQR) {
		t.Fatalf("expected expired_qr, got %v", err)
	}

	// The code is now inactive, so the next scan fails fast as invalid.
	if _, err := svc.ValidateToken(context.Background(), token, "rest-1"); !errors.Is(err, domain.ErrInvalidQR) {
		t.Errorf("expected invalid_qr after deactivation, got %v", err)
	}
}

func TestCrossRestaurantTokenRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	token := svc.GenerateToken(qr)

	if _, err := svc.ValidateToken(context.Background(), token, "rest-2"); !errors.Is(err, domain.ErrInvalidQR) {
		t.Errorf("expected invalid_qr for other restaurant, got %v", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	cases := []string{
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("missing-parts")),
		base64.StdEncoding.EncodeToString([]byte("code:notanumber:sig")),
	}
	for _, token := range cases {
		if _, err := svc.ValidateToken(context.Background(), token, "rest-1"); !errors.Is(err, domain.ErrInvalidQR) {
			t.Errorf("token %q: expected invalid_qr, got %v", token, err)
		}
	}
}

func TestTamperedSignatureRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	raw, err := base64.StdEncoding.DecodeString(svc.GenerateToken(qr))
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := svc.ValidateToken(context.Background(), tampered, "rest-1"); !errors.Is(err, domain.ErrInvalidQR) {
		t.Errorf("expected invalid_qr for tampered token, got %v", err)
	}
}

func TestRotationInvalidatesOutstandingTokens(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)
	qr := seedQR(t, repo, "rest-1", domain.QRTypeDynamic)

	oldToken := svc.GenerateToken(qr)

	rotated, err := svc.Rotate(context.Background(), "rest-1")
	if err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	if rotated.Code == qr.Code {
		t.Error("rotation did not change the public code")
	}
	if rotated.Secret == qr.Secret {
		t.Error("rotation did not change the secret")
	}

	if _, err := svc.ValidateToken(context.Background(), oldToken, "rest-1"); !errors.Is(err, domain.ErrInvalidQR) {
		t.Errorf("expected invalid_qr for pre-rotation token, got %v", err)
	}

	newToken := svc.GenerateToken(rotated)
	if _, err := svc.ValidateToken(context.Background(), newToken, "rest-1"); err != nil {
		t.Errorf("post-rotation token should verify, got %v", err)
	}
}

func TestCurrentTokenCreatesCodeLazily(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)

	token, qr, err := svc.CurrentToken(context.Background(), "rest-9")
	if err != nil {
		t.Fatalf("lazy creation failed: %v", err)
	}
	if qr.RestaurantID != "rest-9" {
		t.Errorf("expected restaurant rest-9, got %s", qr.RestaurantID)
	}

	if _, err := svc.ValidateToken(context.Background(), token, "rest-9"); err != nil {
		t.Errorf("fresh token should verify, got %v", err)
	}

	// A second call reuses the stored code.
	_, again, err := svc.CurrentToken(context.Background(), "rest-9")
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if again.ID != qr.ID {
		t.Errorf("expected reused code %s, got %s", qr.ID, again.ID)
	}
}

func TestConcurrentFirstTokenCreatesOneCode(t *testing.T) {
	t.Parallel()

	repo := newFakeQRRepo()
	svc := newTestService(repo)

	const callers = 8
	var wg sync.WaitGroup
	ids := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, qr, err := svc.CurrentToken(context.Background(), "rest-1")
			if err != nil {
				t.Errorf("current token: %v", err)
				return
			}
			ids <- qr.ID
		}()
	}
	wg.Wait()
	close(ids)

	unique := make(map[string]bool)
	for id := range ids {
		unique[id] = true
	}
	if len(unique) != 1 {
		t.Errorf("callers saw %d distinct codes, want 1", len(unique))
	}
	if n := repo.activeCount("rest-1"); n != 1 {
		t.Errorf("%d active codes stored, want 1", n)
	}
}

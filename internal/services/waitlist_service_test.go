package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

type fakeWaitlistStore struct {
	rows map[string]*models.WaitlistSubmission
}

func newFakeWaitlistStore() *fakeWaitlistStore {
	return &fakeWaitlistStore{rows: map[string]*models.WaitlistSubmission{}}
}

func (f *fakeWaitlistStore) Upsert(_ context.Context, s *models.WaitlistSubmission, otp string, otpExpiresAt time.Time) error {
	row, ok := f.rows[s.Email]
	if !ok {
		row = &models.WaitlistSubmission{Email: s.Email}
		f.rows[s.Email] = row
	}
	row.Name = s.Name
	row.OTP = &otp
	row.OTPExpiresAt = &otpExpiresAt
	s.VerifiedAt = row.VerifiedAt
	return nil
}

func (f *fakeWaitlistStore) GetByEmail(_ context.Context, email string) (*models.WaitlistSubmission, error) {
	row, ok := f.rows[email]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeWaitlistStore) RefreshOTP(_ context.Context, email, otp string, otpExpiresAt time.Time) (bool, error) {
	row, ok := f.rows[email]
	if !ok || row.VerifiedAt != nil {
		return false, nil
	}
	row.OTP = &otp
	row.OTPExpiresAt = &otpExpiresAt
	return true, nil
}

func (f *fakeWaitlistStore) MarkVerified(_ context.Context, email, otp string) (bool, error) {
	row, ok := f.rows[email]
	if !ok || row.VerifiedAt != nil || row.OTP == nil || *row.OTP != otp {
		return false, nil
	}
	if row.OTPExpiresAt != nil && time.Now().After(*row.OTPExpiresAt) {
		return false, nil
	}
	now := time.Now()
	row.VerifiedAt = &now
	row.OTP = nil
	row.OTPExpiresAt = nil
	return true, nil
}

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestWaitlistJoinAndVerify(t *testing.T) {
	ctx := context.Background()
	store := newFakeWaitlistStore()
	email := &fakeEmail{}
	s := NewWaitlistService(store, email, 10*time.Minute, zap.NewNop())

	res, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "Ada@Example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.OTPSent {
		t.Error("otp_sent = false with a working email sender")
	}
	if len(email.sent) != 1 || email.sent[0] != "ada@example.com" {
		t.Errorf("email sent to %v", email.sent)
	}

	row := store.rows["ada@example.com"]
	if row == nil || row.OTP == nil {
		t.Fatal("otp not stored")
	}
	if len(*row.OTP) != 6 {
		t.Errorf("otp %q is not 6 digits", *row.OTP)
	}

	if err := s.VerifyOTP(ctx, "ADA@example.com", *row.OTP); err != nil {
		t.Fatal(err)
	}
	if row.VerifiedAt == nil {
		t.Error("verified_at not set")
	}
	if row.OTP != nil {
		t.Error("otp not nulled after verification")
	}
}

func TestWaitlistVerifyRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code", func(t *testing.T) {
		store := newFakeWaitlistStore()
		s := NewWaitlistService(store, &fakeEmail{}, 10*time.Minute, zap.NewNop())
		if _, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "a@b.com"}); err != nil {
			t.Fatal(err)
		}
		if err := s.VerifyOTP(ctx, "a@b.com", "000000"); err == nil {
			t.Error("wrong code accepted")
		}
	})

	t.Run("code is single use", func(t *testing.T) {
		store := newFakeWaitlistStore()
		s := NewWaitlistService(store, &fakeEmail{}, 10*time.Minute, zap.NewNop())
		if _, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "a@b.com"}); err != nil {
			t.Fatal(err)
		}
		otp := *store.rows["a@b.com"].OTP
		if err := s.VerifyOTP(ctx, "a@b.com", otp); err != nil {
			t.Fatal(err)
		}
		if err := s.VerifyOTP(ctx, "a@b.com", otp); err == nil {
			t.Error("code verified twice")
		}
	})

	t.Run("malformed code", func(t *testing.T) {
		s := NewWaitlistService(newFakeWaitlistStore(), &fakeEmail{}, 10*time.Minute, zap.NewNop())
		if err := s.VerifyOTP(ctx, "a@b.com", "12345"); err == nil {
			t.Error("5-digit code accepted")
		}
	})
}

func TestWaitlistRequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("re-issues for a known email", func(t *testing.T) {
		store := newFakeWaitlistStore()
		email := &fakeEmail{}
		s := NewWaitlistService(store, email, 10*time.Minute, zap.NewNop())
		if _, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "a@b.com"}); err != nil {
			t.Fatal(err)
		}
		first := *store.rows["a@b.com"].OTP

		sent, err := s.RequestOTP(ctx, "a@b.com")
		if err != nil {
			t.Fatal(err)
		}
		if !sent {
			t.Error("otp_sent = false with a working email sender")
		}
		if store.rows["a@b.com"].OTP == nil {
			t.Fatal("otp missing after re-issue")
		}
		// a fresh code was stored either way; equality is possible but the
		// row must still hold a pending 6-digit code
		if got := *store.rows["a@b.com"].OTP; len(got) != 6 {
			t.Errorf("re-issued otp %q is not 6 digits (was %q)", got, first)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		s := NewWaitlistService(newFakeWaitlistStore(), &fakeEmail{}, 10*time.Minute, zap.NewNop())
		if _, err := s.RequestOTP(ctx, "nobody@b.com"); !errors.Is(err, ErrNotOnWaitlist) {
			t.Errorf("err = %v, want ErrNotOnWaitlist", err)
		}
	})

	t.Run("already verified", func(t *testing.T) {
		store := newFakeWaitlistStore()
		s := NewWaitlistService(store, &fakeEmail{}, 10*time.Minute, zap.NewNop())
		if _, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "a@b.com"}); err != nil {
			t.Fatal(err)
		}
		if err := s.VerifyOTP(ctx, "a@b.com", *store.rows["a@b.com"].OTP); err != nil {
			t.Fatal(err)
		}
		if _, err := s.RequestOTP(ctx, "a@b.com"); err == nil {
			t.Error("re-issue allowed for a verified email")
		}
	})
}

func TestWaitlistEmailFailureDegrades(t *testing.T) {
	ctx := context.Background()
	store := newFakeWaitlistStore()
	email := &fakeEmail{err: errors.New("provider down")}
	s := NewWaitlistService(store, email, 10*time.Minute, zap.NewNop())

	res, err := s.Join(ctx, JoinWaitlistRequest{Name: "Ada", Email: "a@b.com"})
	if err != nil {
		t.Fatal(err)
	}
	if res.OTPSent {
		t.Error("otp_sent = true although delivery failed")
	}
	// the submission and code must still exist so a later resend can work
	if store.rows["a@b.com"] == nil || store.rows["a@b.com"].OTP == nil {
		t.Error("submission or otp missing after email failure")
	}
}

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := generateOTP()
		if err != nil {
			t.Fatal(err)
		}
		if len(otp) != 6 {
			t.Fatalf("otp %q is not 6 characters", otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("otp %q contains non-digit", otp)
			}
		}
	}
}

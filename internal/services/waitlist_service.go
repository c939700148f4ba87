package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/stellar-p2p/backend/internal/models"
	"go.uber.org/zap"
)

// WaitlistStore is the slice of the waitlist repo the service needs.
type WaitlistStore interface {
	Upsert(ctx context.Context, s *models.WaitlistSubmission, otp string, otpExpiresAt time.Time) error
	GetByEmail(ctx context.Context, email string) (*models.WaitlistSubmission, error)
	RefreshOTP(ctx context.Context, email, otp string, otpExpiresAt time.Time) (bool, error)
	MarkVerified(ctx context.Context, email, otp string) (bool, error)
}

// ErrNotOnWaitlist distinguishes an unknown email from a delivery failure.
var ErrNotOnWaitlist = errors.New("email is not on the waitlist")

type WaitlistService struct {
	store  WaitlistStore
	email  EmailSender
	otpTTL time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewWaitlistService(store WaitlistStore, email EmailSender, otpTTL time.Duration, log *zap.Logger) *WaitlistService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &WaitlistService{
		store:  store,
		email:  email,
		otpTTL: otpTTL,
		now:    time.Now,
		log:    log,
	}
}

type JoinWaitlistRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company,omitempty"`
	Role    *string `json:"role,omitempty"`
	Country *string `json:"country,omitempty"`
	Source  *string `json:"source,omitempty"`
	UseCase *string `json:"use_case,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type JoinWaitlistResult struct {
	Submission *models.WaitlistSubmission `json:"submission"`
	OTPSent    bool                       `json:"otp_sent"`
}

// Join records the submission and emails a verification code. A failed email
// degrades to otp_sent=false instead of failing the whole submission.
func (s *WaitlistService) Join(ctx context.Context, req JoinWaitlistRequest) (*JoinWaitlistResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	sub := &models.WaitlistSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Company: req.Company,
		Role:    req.Role,
		Country: req.Country,
		Source:  req.Source,
		UseCase: req.UseCase,
		Notes:   req.Notes,
	}
	if err := s.store.Upsert(ctx, sub, otp, s.now().Add(s.otpTTL)); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	otpSent := false
	if s.email != nil {
		err := s.email.Send(ctx, email, "Your verification code",
			fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>",
				otp, int(s.otpTTL.Minutes())))
		if err != nil {
			s.log.Warn("failed to send waitlist OTP", zap.String("email", email), zap.Error(err))
		} else {
			otpSent = true
		}
	}

	return &JoinWaitlistResult{Submission: sub, OTPSent: otpSent}, nil
}

// RequestOTP re-issues a verification code for an email already on the list.
func (s *WaitlistService) RequestOTP(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return false, fmt.Errorf("invalid email address")
	}

	sub, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to look up submission: %w", err)
	}
	if sub == nil {
		return false, ErrNotOnWaitlist
	}
	if sub.VerifiedAt != nil {
		return false, fmt.Errorf("email is already verified")
	}

	otp, err := generateOTP()
	if err != nil {
		return false, fmt.Errorf("failed to generate code: %w", err)
	}
	ok, err := s.store.RefreshOTP(ctx, email, otp, s.now().Add(s.otpTTL))
	if err != nil {
		return false, fmt.Errorf("failed to refresh code: %w", err)
	}
	if !ok {
		return false, ErrNotOnWaitlist
	}

	otpSent := false
	if s.email != nil {
		err := s.email.Send(ctx, email, "Your verification code",
			fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>",
				otp, int(s.otpTTL.Minutes())))
		if err != nil {
			s.log.Warn("failed to send waitlist OTP", zap.String("email", email), zap.Error(err))
		} else {
			otpSent = true
		}
	}
	return otpSent, nil
}

// VerifyOTP consumes the emailed code. The store nulls the code in the same
// statement that checks it, so a code verifies at most once.
func (s *WaitlistService) VerifyOTP(ctx context.Context, email, otp string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	otp = strings.TrimSpace(otp)
	if len(otp) != otpDigits {
		return fmt.Errorf("invalid verification code")
	}

	ok, err := s.store.MarkVerified(ctx, email, otp)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		sub, lookupErr := s.store.GetByEmail(ctx, email)
		if lookupErr == nil && sub != nil {
			if sub.VerifiedAt != nil {
				return fmt.Errorf("email is already verified")
			}
			if sub.OTPExpiresAt != nil && s.now().After(*sub.OTPExpiresAt) {
				return fmt.Errorf("verification code expired")
			}
		}
		return fmt.Errorf("invalid verification code")
	}

	s.log.Info("waitlist email verified", zap.String("email", email))
	return nil
}

func (s *WaitlistService) Status(ctx context.Context, email string) (*models.WaitlistSubmission, error) {
	return s.store.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

const otpDigits = 6

// generateOTP returns a zero-padded 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

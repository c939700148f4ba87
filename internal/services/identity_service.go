package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/auth"
	"github.com/stellar-p2p/backend/internal/config"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/repositories"
	"go.uber.org/zap"
)

type IdentityService struct {
	userRepo  *repositories.UserRepo
	auditRepo *repositories.AuditRepo
	cfg       *config.Config
	log       *zap.Logger
}

func NewIdentityService(
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	cfg *config.Config,
	log *zap.Logger,
) *IdentityService {
	return &IdentityService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		cfg:       cfg,
		log:       log,
	}
}

type SignUpRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

func (s *IdentityService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, "", fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("email is already registered")
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.userRepo.Create(ctx, email, hash, req.DisplayName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &u.ID,
		ActorType:   "user",
		Action:      "user_signed_up",
		EntityType:  "user",
		EntityID:    &u.ID,
	})

	s.log.Info("user signed up", zap.String("user_id", u.ID.String()))
	return u, token, nil
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	// identical error for unknown email and wrong password
	if u == nil || auth.ComparePassword(u.PasswordHash, password) != nil {
		return nil, "", fmt.Errorf("invalid email or password")
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	_ = s.userRepo.UpdateLastActive(ctx, u.ID)
	return u, token, nil
}

func (s *IdentityService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

type UpdateProfileRequest struct {
	DisplayName    *string  `json:"display_name,omitempty"`
	NotifyByEmail  *bool    `json:"notify_by_email,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	u, err := s.userRepo.UpdateProfile(ctx, userID, req.DisplayName, req.NotifyByEmail, req.PaymentMethods)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// DevConfirmEmail flips email_confirmed without an email round trip. Only
// reachable when ALLOW_DEV_CONFIRM is on.
func (s *IdentityService) DevConfirmEmail(ctx context.Context, userID uuid.UUID) error {
	if !s.cfg.AllowDevConfirm {
		return fmt.Errorf("dev confirm is disabled")
	}
	if err := s.userRepo.ConfirmEmail(ctx, userID); err != nil {
		return err
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "email_dev_confirmed",
		EntityType:  "user",
		EntityID:    &userID,
	})
	return nil
}

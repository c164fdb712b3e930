package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portal/internal/auth"
	"portal/internal/config"
	apperrors "portal/internal/errors"
	"portal/internal/mail"
	"portal/internal/model"
	"portal/internal/repository"
)

const (
	// otpValidity is how long a passcode remains verifiable.
	otpValidity = 5 * time.Minute
	// otpCooldown is the minimum gap between passcode requests per email.
	otpCooldown = 60 * time.Second
)

// AuthService handles both login flows: OTP for clients, password for admins.
type AuthService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (token string, err error)
	AdminLogin(ctx context.Context, email, password string) (token string, err error)
}

type authService struct {
	cfg        *config.Config
	clientRepo repository.ClientRepository
	otpRepo    repository.OTPRepository
	loginRepo  repository.LoginEventRepository
	jwtService *auth.JWTService
	sender     mail.Sender
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	cfg *config.Config,
	clientRepo repository.ClientRepository,
	otpRepo repository.OTPRepository,
	loginRepo repository.LoginEventRepository,
	jwtService *auth.JWTService,
	sender mail.Sender,
) AuthService {
	return &authService{
		cfg:        cfg,
		clientRepo: clientRepo,
		otpRepo:    otpRepo,
		loginRepo:  loginRepo,
		jwtService: jwtService,
		sender:     sender,
	}
}

// RequestOTP issues a fresh passcode for an active client and mails it.
// The challenge row is durable before delivery is attempted, so a failed send
// is recoverable by a retry once the cooldown window passes.
func (s *authService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.ErrEmailRequired
	}

	// Admins never get the OTP flow.
	if s.cfg.IsAdminEmail(email) {
		return apperrors.ErrAdminUsesPassword
	}

	if _, err := s.clientRepo.FindActiveByEmail(ctx, email); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrEmailNotRegistered
		}
		return fmt.Errorf("lookup client: %w", err)
	}

	last, err := s.otpRepo.FindLatestByEmail(ctx, email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("lookup last challenge: %w", err)
	}
	if last != nil {
		// Whole elapsed seconds count against the window, so a request at
		// 10.4s still has 50s left.
		if elapsed := time.Since(last.CreatedAt); elapsed < otpCooldown {
			return &apperrors.RateLimitedError{
				RetryAfterSeconds: int(otpCooldown.Seconds()) - int(elapsed.Seconds()),
			}
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	challenge := &model.OtpChallenge{
		Email: email,
		Code:  code,
	}
	if err := s.otpRepo.Create(ctx, challenge); err != nil {
		return fmt.Errorf("persist challenge: %w", err)
	}

	if err := s.sender.SendOTP(email, code); err != nil {
		// The cause stays in the server log; callers only see that delivery
		// failed.
		log.Printf("otp delivery to %s: %v", email, err)
		return apperrors.ErrOTPDeliveryFailed
	}

	return nil
}

// VerifyOTP checks the submitted code against the newest unconsumed challenge
// and issues a client token. A verified challenge is marked consumed so the
// code cannot be replayed.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", apperrors.ErrMissingFields
	}

	challenge, err := s.otpRepo.FindLatestMatch(ctx, email, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", apperrors.ErrInvalidOTP
		}
		return "", fmt.Errorf("lookup challenge: %w", err)
	}

	if time.Since(challenge.CreatedAt) > otpValidity {
		return "", apperrors.ErrOTPExpired
	}

	if err := s.otpRepo.MarkConsumed(ctx, challenge.ID); err != nil {
		return "", fmt.Errorf("consume challenge: %w", err)
	}

	if err := s.loginRepo.Create(ctx, &model.LoginEvent{Email: email, Role: model.RoleClient}); err != nil {
		return "", fmt.Errorf("record login: %w", err)
	}

	token, err := s.jwtService.IssueToken(email, model.RoleClient)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// AdminLogin authenticates an allowlisted admin by password and issues an
// admin token.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	if !s.cfg.IsAdminEmail(email) {
		return "", apperrors.ErrNotAdmin
	}

	if !s.checkAdminPassword(password) {
		return "", apperrors.ErrInvalidPassword
	}

	if err := s.loginRepo.Create(ctx, &model.LoginEvent{Email: email, Role: model.RoleAdmin}); err != nil {
		return "", fmt.Errorf("record login: %w", err)
	}

	token, err := s.jwtService.IssueToken(email, model.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// checkAdminPassword supports both plaintext and bcrypt-hashed values of
// ADMIN_PASSWORD. Plaintext comparison is constant time.
func (s *authService) checkAdminPassword(password string) bool {
	stored := s.cfg.AdminPassword
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// generateOTPCode returns a uniformly random 6-digit code with leading zeros
// preserved.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"invoiceflow/internal/authgate"
	"invoiceflow/internal/caching"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity provider error codes.
const (
	AuthCodeInvalidEmail       = "auth/invalid-email"
	AuthCodeInvalidCredential  = "auth/invalid-credential"
	AuthCodeUserDisabled       = "auth/user-disabled"
	AuthCodeTooManyRequests    = "auth/too-many-requests"
	AuthCodeNetworkFailed      = "auth/network-request-failed"
	AuthCodeWeakPassword       = "auth/weak-password"
	AuthCodeExpiredActionCode  = "auth/expired-action-code"
	AuthCodeInvalidIDToken     = "auth/invalid-id-token"
	AuthCodeEmailAlreadyExists = "auth/email-already-in-use"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
	resetTokenTTL      = time.Hour
	minPasswordLength  = 8
)

// AuthErrorMessage maps an error code to the message shown on the login screen.
func AuthErrorMessage(code string) string {
	switch code {
	case AuthCodeInvalidEmail:
		return "Please enter a valid email address."
	case AuthCodeInvalidCredential:
		return "Invalid email or password."
	case AuthCodeUserDisabled:
		return "This account has been disabled."
	case AuthCodeTooManyRequests:
		return "Too many failed attempts. Please try again later."
	case AuthCodeNetworkFailed:
		return "Network error. Please check your connection and try again."
	case AuthCodeWeakPassword:
		return fmt.Sprintf("Password must be at least %d characters.", minPasswordLength)
	case AuthCodeExpiredActionCode:
		return "This reset link is invalid or has expired."
	case AuthCodeEmailAlreadyExists:
		return "An account with this email already exists."
	default:
		return "Login failed. Please try again."
	}
}

// AuthError is an identity provider failure carrying its code.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	return AuthErrorMessage(e.Code)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func authErr(code string, err error) error {
	return &AuthError{Code: code, Err: err}
}

// TokenClaims are the claims of an issued access token. SessionID points at
// the redis session that backs the token.
type TokenClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// MailQueue hands password reset mails to the background worker.
type MailQueue interface {
	EnqueuePasswordReset(ctx context.Context, email, resetURL string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	LoginOAuth(ctx context.Context, idToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	CreateUser(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo     repositories.UserRepository
	cacheSvc     caching.CacheService
	verifier     IDTokenVerifier
	mailQueue    MailQueue
	policy       *authgate.Policy
	jwtSecret    []byte
	sessionTTL   time.Duration
	resetURLBase string
	validate     *validator.Validate
	now          func() time.Time
}

// AuthConfig holds the settings of the identity provider.
type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	ResetURLBase string
}

func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, verifier IDTokenVerifier, mailQueue MailQueue, policy *authgate.Policy, cfg AuthConfig) AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo:     userRepo,
		cacheSvc:     cacheSvc,
		verifier:     verifier,
		mailQueue:    mailQueue,
		policy:       policy,
		jwtSecret:    []byte(cfg.JWTSecret),
		sessionTTL:   cfg.SessionTTL,
		resetURLBase: cfg.ResetURLBase,
		validate:     validator.New(),
		now:          time.Now,
	}
}

func (s *authService) normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", authErr(AuthCodeInvalidEmail, err)
	}
	return email, nil
}

// Login checks the password against the credential store. Failed attempts
// are limited per email.
func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	limitKey := "login:" + strings.ToLower(email)
	limited, err := s.cacheSvc.IsRateLimited(ctx, limitKey, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		return nil, authErr(AuthCodeNetworkFailed, err)
	}
	if limited {
		return nil, authErr(AuthCodeTooManyRequests, nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, authErr(AuthCodeInvalidCredential, err)
		}
		return nil, authErr(AuthCodeNetworkFailed, err)
	}
	if user.Disabled {
		return nil, authErr(AuthCodeUserDisabled, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, authErr(AuthCodeInvalidCredential, err)
	}

	if err := s.cacheSvc.ResetRateLimit(ctx, limitKey); err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Msg("could not reset login attempts")
	}
	return s.issueSession(ctx, user.Email, "password")
}

// LoginOAuth trusts the email of a verified provider ID token.
func (s *authService) LoginOAuth(ctx context.Context, idToken string) (*models.TokenResponse, error) {
	if s.verifier == nil {
		return nil, authErr(AuthCodeInvalidIDToken, errors.New("oauth sign-in is not configured"))
	}
	email, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, authErr(AuthCodeInvalidIDToken, err)
	}
	if email, err = s.normalizeEmail(email); err != nil {
		return nil, err
	}

	// accounts disabled in the credential store stay disabled for OAuth
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && user.Disabled:
		return nil, authErr(AuthCodeUserDisabled, nil)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, authErr(AuthCodeNetworkFailed, err)
	}
	return s.issueSession(ctx, email, "oauth")
}

func (s *authService) issueSession(ctx context.Context, email, provider string) (*models.TokenResponse, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Email:     email,
		Provider:  provider,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	claims := TokenClaims{
		Email:     email,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "invoiceflow",
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        session.ID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	if err := s.cacheSvc.SetSession(ctx, session, s.sessionTTL); err != nil {
		return nil, authErr(AuthCodeNetworkFailed, err)
	}
	if err := s.cacheSvc.PublishSession(ctx, caching.SessionEvent{SessionID: session.ID, Session: session}); err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Msg("session event publish failed")
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.sessionTTL.Seconds()),
		Email:       email,
		IsAdmin:     s.policy.IsAdmin(email),
		IssuedAt:    now,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.cacheSvc.DeleteSession(ctx, sessionID); err != nil {
		return authErr(AuthCodeNetworkFailed, err)
	}
	if err := s.cacheSvc.PublishSession(ctx, caching.SessionEvent{SessionID: sessionID}); err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Msg("session event publish failed")
	}
	return nil
}

// RequestPasswordReset queues a reset mail. Unknown emails succeed silently.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return err
	}
	log := logger.WithComponent("auth")

	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return authErr(AuthCodeNetworkFailed, err)
	}

	token := generateSecureToken()
	if err := s.cacheSvc.SetString(ctx, resetKey(token), email, resetTokenTTL); err != nil {
		return authErr(AuthCodeNetworkFailed, err)
	}
	link := s.resetURLBase + "?token=" + url.QueryEscape(token)
	if err := s.mailQueue.EnqueuePasswordReset(ctx, email, link); err != nil {
		return authErr(AuthCodeNetworkFailed, err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return authErr(AuthCodeWeakPassword, nil)
	}
	email, err := s.cacheSvc.GetString(ctx, resetKey(token))
	if err != nil {
		return authErr(AuthCodeNetworkFailed, err)
	}
	if email == "" {
		return authErr(AuthCodeExpiredActionCode, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, email, string(hash)); err != nil {
		return authErr(AuthCodeNetworkFailed, err)
	}
	if err := s.cacheSvc.Delete(ctx, resetKey(token)); err != nil {
		log := logger.WithComponent("auth")
		log.Warn().Err(err).Msg("could not delete used reset token")
	}
	return nil
}

// ValidateToken validates JWT access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CreateUser adds an account to the credential store.
func (s *authService) CreateUser(ctx context.Context, email, password string) error {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return authErr(AuthCodeWeakPassword, nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.userRepo.Create(ctx, &models.User{Email: email, PasswordHash: string(hash)})
	if errors.Is(err, repositories.ErrDuplicate) {
		return authErr(AuthCodeEmailAlreadyExists, err)
	}
	return err
}

func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "reset:" + hex.EncodeToString(sum[:])
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	tokens   ResetTokenRepository
	mailer   Mailer

	sessionTTL   time.Duration
	resetBaseURL string
}

func NewAuthService(users UserRepository, sessions SessionRepository, tokens ResetTokenRepository, mailer Mailer, sessionTTL time.Duration, resetBaseURL string) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		mailer:       mailer,
		sessionTTL:   sessionTTL,
		resetBaseURL: resetBaseURL,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, *models.Session, error) {
	if err := checkPasswordStrength(password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, NewBusinessError(CodeDuplicate, "username or email already taken")
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	session, err := s.createSession(ctx, &user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Service: user registered", zap.String("user_id", user.ID.String()))
	return user, session, nil
}

// Login verifies credentials against a username or email. The prior
// session (anonymous or stale) is dropped so the cookie and CSRF token
// rotate on every successful login.
func (s *AuthService) Login(ctx context.Context, login, password string, oldSessionID *uuid.UUID) (*models.User, *models.Session, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn comparable time so a missing account is not
			// distinguishable by latency.
			bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0aZpld8kWpkUNKzJrdSebGRlfdm"), []byte(password))
			return nil, nil, NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Service: failed login", zap.String("user_id", user.ID.String()))
		return nil, nil, NewUnauthorized("invalid credentials")
	}

	if oldSessionID != nil {
		if err := s.sessions.Delete(ctx, *oldSessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("rotating session: %w", err)
		}
	}

	session, err := s.createSession(ctx, &user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Service: user logged in", zap.String("user_id", user.ID.String()))
	return user, session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// GetSession resolves a session cookie. Expired sessions are removed
// eagerly and reported as missing.
func (s *AuthService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorized("session not found")
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Service: removing expired session", zap.Error(err))
		}
		return nil, NewUnauthorized("session expired")
	}
	return session, nil
}

// EnsureSession returns an existing valid session or mints an
// anonymous one. This is the CSRF bootstrap: the SPA calls
// /api/csrf-token before login and needs a session to bind the token
// to.
func (s *AuthService) EnsureSession(ctx context.Context, sessionID *uuid.UUID) (*models.Session, bool, error) {
	if sessionID != nil {
		session, err := s.GetSession(ctx, *sessionID)
		if err == nil {
			return session, false, nil
		}
		var busErr *BusinessError
		if !errors.As(err, &busErr) {
			return nil, false, err
		}
	}

	session, err := s.createSession(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, session *models.Session) (*models.User, error) {
	if !session.Authenticated() {
		return nil, NewUnauthorized("not logged in")
	}
	user, err := s.users.GetByID(ctx, *session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset is deliberately quiet about unknown addresses
// so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	secret, err := randomToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	token := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(secret),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s?token=%s", s.resetBaseURL, url.QueryEscape(secret))
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}

	logger.Info("Service: password reset issued", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, secret, newPassword string) error {
	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	token, err := s.tokens.GetByHash(ctx, hashToken(secret))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewValidationError("token", "unknown reset token")
		}
		return fmt.Errorf("loading reset token: %w", err)
	}

	now := time.Now()
	if token.Used {
		return NewBusinessError(CodeTokenUsed, "reset token already used")
	}
	if !token.ExpiresAt.After(now) {
		return NewBusinessError(CodeTokenExpired, "reset token expired")
	}

	if err := s.tokens.MarkUsed(ctx, token); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return NewBusinessError(CodeTokenUsed, "reset token already used")
		}
		return fmt.Errorf("consuming reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	// Every live session is invalidated; the attacker scenario a
	// reset protects against includes stolen cookies.
	if err := s.sessions.DeleteForUser(ctx, token.UserID); err != nil {
		return fmt.Errorf("invalidating sessions: %w", err)
	}

	logger.Info("Service: password reset completed", zap.String("user_id", token.UserID.String()))
	return nil
}

func (s *AuthService) createSession(ctx context.Context, userID *uuid.UUID) (*models.Session, error) {
	csrf, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generating csrf token: %w", err)
	}
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CSRFToken: csrf,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return NewValidationError("password", "must be at least 8 characters")
	}
	// bcrypt truncates nothing; it rejects inputs over 72 bytes outright.
	if len(password) > 72 {
		return NewValidationError("password", "must be at most 72 bytes")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return NewValidationError("password", "must contain a letter and a digit")
	}
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository/inmemory"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct {
	to       string
	resetURL string
	sent     int
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	m.to = to
	m.resetURL = resetURL
	m.sent++
	return nil
}

// token extracts the reset secret from the mailed URL.
func (m *captureMailer) token(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(m.resetURL)
	require.NoError(t, err)
	secret := u.Query().Get("token")
	require.NotEmpty(t, secret)
	return secret
}

type authFixture struct {
	svc      *service.AuthService
	users    *inmemory.UserStorage
	sessions *inmemory.SessionStorage
	tokens   *inmemory.ResetTokenStorage
	mailer   *captureMailer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    inmemory.NewUserStorage(),
		sessions: inmemory.NewSessionStorage(),
		tokens:   inmemory.NewResetTokenStorage(),
		mailer:   &captureMailer{},
	}
	f.svc = service.NewAuthService(f.users, f.sessions, f.tokens, f.mailer,
		time.Hour, "http://localhost:5173/reset-password")
	return f
}

func (f *authFixture) register(t *testing.T, username, email, password string) (*models.User, *models.Session) {
	t.Helper()
	user, session, err := f.svc.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return user, session
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, session, err := f.svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	require.NotNil(t, session)
	require.NotNil(t, session.UserID)
	assert.Equal(t, user.ID, *session.UserID)
	assert.NotEmpty(t, session.CSRFToken)
	assert.True(t, session.Authenticated())
}

func TestAuthService_Register_WeakPasswords(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "ab1"},
		{"no digit", "passwordpassword"},
		{"no letter", "1234567890"},
		{"over bcrypt limit", "a1" + strings.Repeat("x", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, _, err := f.svc.Register(ctx, "bob", "bob@example.com", tt.password)
			assertBusinessCode(t, err, service.CodeValidation)
		})
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	_, _, err := f.svc.Register(ctx, "alice", "other@example.com", "hunter2hunter2")
	assertBusinessCode(t, err, service.CodeDuplicate)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, _ := f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	// Username and email both work as the login.
	for _, login := range []string{"alice", "alice@example.com"} {
		got, session, err := f.svc.Login(ctx, login, "hunter2hunter2", nil)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, session.UserID)
		assert.Equal(t, user.ID, *session.UserID)
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	_, _, err := f.svc.Login(ctx, "alice", "wrongpass1", nil)
	assertBusinessCode(t, err, service.CodeUnauthorized)

	_, _, err = f.svc.Login(ctx, "nobody", "hunter2hunter2", nil)
	assertBusinessCode(t, err, service.CodeUnauthorized)
}

func TestAuthService_Login_RotatesSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	anon, created, err := f.svc.EnsureSession(ctx, nil)
	require.NoError(t, err)
	require.True(t, created)
	assert.False(t, anon.Authenticated())

	_, fresh, err := f.svc.Login(ctx, "alice", "hunter2hunter2", &anon.ID)
	require.NoError(t, err)
	assert.NotEqual(t, anon.ID, fresh.ID)
	assert.NotEqual(t, anon.CSRFToken, fresh.CSRFToken)

	// The pre-login session is gone.
	_, err = f.svc.GetSession(ctx, anon.ID)
	assertBusinessCode(t, err, service.CodeUnauthorized)
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	expired := &models.Session{
		ID:        uuid.New(),
		CSRFToken: "tok",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.sessions.Create(ctx, expired))

	_, err := f.svc.GetSession(ctx, expired.ID)
	assertBusinessCode(t, err, service.CodeUnauthorized)

	// Expired sessions are removed on first touch.
	_, err = f.sessions.GetByID(ctx, expired.ID)
	require.Error(t, err)
}

func TestAuthService_EnsureSession_ReusesValid(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	first, created, err := f.svc.EnsureSession(ctx, nil)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.svc.EnsureSession(ctx, &first.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CSRFToken, second.CSRFToken)
}

func TestAuthService_Logout_UnknownSessionIsFine(t *testing.T) {
	f := newAuthFixture()
	assert.NoError(t, f.svc.Logout(context.Background(), uuid.New()))
}

func TestAuthService_PasswordReset_Flow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, session := f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	assert.Equal(t, 1, f.mailer.sent)
	assert.Equal(t, "alice@example.com", f.mailer.to)
	secret := f.mailer.token(t)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, secret, "newpass99"))

	// Password changed.
	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass99")))

	// All live sessions are invalidated.
	_, err = f.svc.GetSession(ctx, session.ID)
	assertBusinessCode(t, err, service.CodeUnauthorized)

	// The token is single use.
	err = f.svc.ConfirmPasswordReset(ctx, secret, "anotherpass1")
	assertBusinessCode(t, err, service.CodeTokenUsed)
}

func TestAuthService_PasswordReset_RejectsOverlongPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	secret := f.mailer.token(t)

	err := f.svc.ConfirmPasswordReset(ctx, secret, "a1"+strings.Repeat("x", 80))
	assertBusinessCode(t, err, service.CodeValidation)
}

func TestAuthService_PasswordReset_UnknownEmailIsQuiet(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.Zero(t, f.mailer.sent)
}

func TestAuthService_PasswordReset_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, _ := f.register(t, "alice", "alice@example.com", "hunter2hunter2")

	sum := sha256.Sum256([]byte("stale-secret"))
	require.NoError(t, f.tokens.Create(ctx, &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(sum[:]),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err := f.svc.ConfirmPasswordReset(ctx, "stale-secret", "newpass99")
	assertBusinessCode(t, err, service.CodeTokenExpired)
}

func TestAuthService_PasswordReset_UnknownToken(t *testing.T) {
	f := newAuthFixture()
	err := f.svc.ConfirmPasswordReset(context.Background(), "no-such-token", "newpass99")
	assertBusinessCode(t, err, service.CodeValidation)
}

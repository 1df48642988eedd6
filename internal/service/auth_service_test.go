package service

import (
	"context"
	"testing"
	"time"

	"flourmill/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return repo.add(&model.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  string(hash),
		Role:      role,
		IsActive:  active,
	})
}

func TestLoginIssuesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewAuthService(repo, audit)
	seedUser(t, repo, "admin@flourmill.com", "admin123", "Admin", true)

	result, err := svc.Login(context.Background(), "admin@flourmill.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin@flourmill.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, 1, repo.refreshTokenCount())
	assert.Contains(t, audit.recorded(), model.ActionLoginSuccess)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewAuthService(repo, audit)
	seedUser(t, repo, "admin@flourmill.com", "admin123", "Admin", true)

	_, err := svc.Login(context.Background(), "admin@flourmill.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, audit.recorded(), model.ActionLoginFailed)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), &fakeAudit{})

	_, err := svc.Login(context.Background(), "nobody@flourmill.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	seedUser(t, repo, "former@flourmill.com", "secret", "Employee", false)

	_, err := svc.Login(context.Background(), "former@flourmill.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	user := seedUser(t, repo, "manager@flourmill.com", "secret", "Manager", true)

	result, err := svc.Login(context.Background(), "manager@flourmill.com", "secret")
	require.NoError(t, err)

	validated, err := svc.Validate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)
	assert.Equal(t, "Manager", validated.Role)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), &fakeAudit{})

	_, err := svc.Validate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsDeactivatedUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	user := seedUser(t, repo, "soon-gone@flourmill.com", "secret", "Employee", true)

	result, err := svc.Login(context.Background(), "soon-gone@flourmill.com", "secret")
	require.NoError(t, err)

	user.IsActive = false

	_, err = svc.Validate(context.Background(), result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotatesStoredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	seedUser(t, repo, "cashier@flourmill.com", "secret", "Cashier", true)

	login, err := svc.Login(context.Background(), "cashier@flourmill.com", "secret")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented refresh token is single-use.
	_, err = repo.GetRefreshToken(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	user := seedUser(t, repo, "late@flourmill.com", "secret", "Employee", true)

	stale := &model.RefreshToken{
		UserID:    user.ID,
		Token:     "stale-refresh-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), stale))

	_, err := svc.Refresh(context.Background(), "stale-refresh-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 0, repo.refreshTokenCount())
}

func TestRefreshAcceptsValidAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})
	seedUser(t, repo, "manager@flourmill.com", "secret", "Manager", true)

	login, err := svc.Login(context.Background(), "manager@flourmill.com", "secret")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewAuthService(repo, audit)
	seedUser(t, repo, "admin@flourmill.com", "admin123", "Admin", true)

	login, err := svc.Login(context.Background(), "admin@flourmill.com", "admin123")
	require.NoError(t, err)
	require.Equal(t, 1, repo.refreshTokenCount())

	svc.Logout(context.Background(), login.Token)
	assert.Equal(t, 0, repo.refreshTokenCount())
	assert.Contains(t, audit.recorded(), model.ActionLogout)
}

func TestLogoutIgnoresGarbageToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeAudit{})

	// Must not panic or record anything.
	svc.Logout(context.Background(), "garbage")
	assert.Equal(t, 0, repo.refreshTokenCount())
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"flourmill/internal/model"
	"flourmill/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidCredentials is returned for any login failure a caller may see;
// it deliberately does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned when a bearer credential cannot be validated.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthResult carries the outcome of a successful login or refresh
type AuthResult struct {
	User         *model.User
	Token        string
	RefreshToken string
}

// AuthService owns credential verification and the token lifecycle
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Validate(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string)
	Refresh(ctx context.Context, bearer string) (*AuthResult, error)
}

type authService struct {
	users repository.UserRepository
	audit AuditService
}

func NewAuthService(users repository.UserRepository, audit AuditService) AuthService {
	return &authService{users: users, audit: audit}
}

// jwtSecret mirrors the middleware's fallback strategy; both sides must
// agree on the signing key.
func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	return []byte(secret)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.audit.Record(ctx, nil, model.ActionLoginFailed, email, "", nil)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit.Record(ctx, &user.ID, model.ActionLoginFailed, email, "account disabled", nil)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.audit.Record(ctx, &user.ID, model.ActionLoginFailed, email, "", nil)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &user.ID, model.ActionLoginSuccess, user.ID.String(), user.Email, nil)
	return &AuthResult{User: user, Token: accessToken, RefreshToken: refreshToken}, nil
}

// Validate checks an access token and resolves it to a live account. A token
// for a deleted or deactivated user is invalid even before it expires.
func (s *authService) Validate(ctx context.Context, token string) (*model.User, error) {
	claims, err := parseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, sub)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Logout revokes every refresh token for the account behind the bearer
// credential. Best-effort: an unparseable token just means nothing to revoke.
func (s *authService) Logout(ctx context.Context, token string) {
	claims, err := parseAccessTokenLenient(token)
	if err != nil {
		return
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return
	}
	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		return
	}
	if err := s.users.DeleteRefreshTokensForUser(ctx, user.ID); err != nil {
		return
	}
	s.audit.Record(ctx, &user.ID, model.ActionLogout, user.ID.String(), user.Email, nil)
}

// Refresh exchanges a bearer credential for a fresh access token. The bearer
// may be a stored refresh token (rotated on use) or a still-valid access
// token; anything else invalidates the caller's session.
func (s *authService) Refresh(ctx context.Context, bearer string) (*AuthResult, error) {
	if rt, err := s.users.GetRefreshToken(ctx, bearer); err == nil {
		if time.Now().After(rt.ExpiresAt) {
			_ = s.users.DeleteRefreshToken(ctx, bearer)
			return nil, ErrInvalidToken
		}
		user, err := s.users.GetByID(ctx, rt.UserID.String())
		if err != nil || !user.IsActive {
			return nil, ErrInvalidToken
		}
		// Rotate: the presented refresh token is single-use.
		_ = s.users.DeleteRefreshToken(ctx, bearer)
		return s.reissue(ctx, user)
	}

	user, err := s.Validate(ctx, bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.reissue(ctx, user)
}

func (s *authService) reissue(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, &user.ID, model.ActionTokenRefresh, user.ID.String(), user.Email, nil)
	return &AuthResult{User: user, Token: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) issueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	})
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *authService) issueRefreshToken(ctx context.Context, user *model.User) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	rt := &model.RefreshToken{
		UserID:    user.ID,
		Token:     hex.EncodeToString(buf),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.users.CreateRefreshToken(ctx, rt); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rt.Token, nil
}

func parseAccessToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// parseAccessTokenLenient accepts expired tokens; used by logout, where the
// caller is abandoning the credential anyway.
func parseAccessTokenLenient(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || token == nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

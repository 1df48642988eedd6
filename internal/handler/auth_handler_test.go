package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flourmill/internal/model"
	"flourmill/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService drives the handler without a database or real JWTs.
type stubAuthService struct {
	loginResult   *service.AuthResult
	loginErr      error
	validateUser  *model.User
	validateErr   error
	refreshResult *service.AuthResult
	refreshErr    error
	logoutCalls   int
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Validate(ctx context.Context, token string) (*model.User, error) {
	return s.validateUser, s.validateErr
}

func (s *stubAuthService) Logout(ctx context.Context, token string) {
	s.logoutCalls++
}

func (s *stubAuthService) Refresh(ctx context.Context, bearer string) (*service.AuthResult, error) {
	return s.refreshResult, s.refreshErr
}

func newAuthRouter(stub *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAuthHandler(stub).RegisterRoutes(router.Group(""))
	return router
}

func TestLoginReturnsWireShape(t *testing.T) {
	user := &model.User{FirstName: "An", LastName: "Pham", Email: "an@flourmill.com", Role: "Manager", IsActive: true}
	stub := &stubAuthService{loginResult: &service.AuthResult{User: user, Token: "access-1", RefreshToken: "refresh-1"}}
	router := newAuthRouter(stub)

	body, _ := json.Marshal(map[string]string{"email": "an@flourmill.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "access-1", resp.Token)
	assert.Equal(t, "refresh-1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Manager", resp.User.Role)

	// Tokens also travel as HttpOnly cookies for browser clients.
	cookies := rec.Result().Cookies()
	names := make(map[string]bool)
	for _, c := range cookies {
		names[c.Name] = c.HttpOnly
	}
	assert.True(t, names["access_token"])
	assert.True(t, names["refresh_token"])
}

func TestLoginFailureIsGenericAnd401(t *testing.T) {
	stub := &stubAuthService{loginErr: service.ErrInvalidCredentials}
	router := newAuthRouter(stub)

	body, _ := json.Marshal(map[string]string{"email": "an@flourmill.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid email or password", resp.Message)
	assert.Nil(t, resp.User)
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(`{"email":"not-an-email"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestValidateAlways200(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubAuthService
		header string
		valid  bool
	}{
		{"valid token", &stubAuthService{validateUser: &model.User{Email: "a@b.c"}}, "Bearer good", true},
		{"rejected token", &stubAuthService{validateErr: service.ErrInvalidToken}, "Bearer bad", false},
		{"no token at all", &stubAuthService{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(tt.stub)
			req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var resp ValidateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.valid, resp.Valid)
		})
	}
}

func TestLogoutAlwaysSucceedsAndClearsCookies(t *testing.T) {
	stub := &stubAuthService{}
	router := newAuthRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.logoutCalls)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, "cookie %s should be expired", c.Name)
	}
}

func TestLogoutWithoutTokenStillSucceeds(t *testing.T) {
	stub := &stubAuthService{}
	router := newAuthRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, stub.logoutCalls)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestRefreshWithBearerToken(t *testing.T) {
	stub := &stubAuthService{refreshResult: &service.AuthResult{
		User:         &model.User{Email: "a@b.c"},
		Token:        "access-2",
		RefreshToken: "refresh-2",
	}}
	router := newAuthRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer access-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "access-2", resp.Token)
}

func TestRefreshFailureClearsCookies(t *testing.T) {
	stub := &stubAuthService{refreshErr: service.ErrInvalidToken}
	router := newAuthRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Session expired. Please log in again.", resp.Message)

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, "cookie %s should be expired", c.Name)
	}
}

func TestRefreshWithoutCredential(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixele/identity/internal/auth"
	"github.com/pixele/identity/internal/models"
	"github.com/pixele/identity/internal/services"
)

func newAuthHandler(login *MockLoginService, sessions *MockSessionService) *AuthHandler {
	return NewAuthHandler(login, sessions, auth.CookieConfig{}, nil, testLogger())
}

func postLogin(t *testing.T, h *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginHandler_Success(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return &services.LoginResult{
				Account: &models.Account{Username: "someuser", Email: "someuser@example.com"},
				Tokens:  &models.TokenSet{AccessToken: "access", IDToken: "id", RefreshToken: "refresh", ExpiresIn: 3600},
			}, nil
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "Password1!"})
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	names := make(map[string]string, len(cookies))
	for _, c := range cookies {
		names[c.Name] = c.Value
		assert.True(t, c.HttpOnly, "%s must be httpOnly", c.Name)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	}
	assert.Equal(t, "access", names[auth.SessionCookieName])
	assert.Equal(t, "id", names[auth.IDCookieName])
	assert.Equal(t, "refresh", names[auth.RefreshCookieName])
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	h := newAuthHandler(&MockLoginService{}, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, rec)["code"])
}

func TestLoginHandler_AccountLocked(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.AccountLockedError{UnlockAt: time.Now().Add(15 * time.Minute)}
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "wrongpass"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ACCOUNT_LOCKED", body["code"])
	required, ok := body["required"].(map[string]any)
	require.True(t, ok, "locked response must carry required.remainingTime")
	assert.Equal(t, float64(15), required["remainingTime"])
}

func TestLoginHandler_AccountLockedMinimumOneMinute(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.AccountLockedError{UnlockAt: time.Now().Add(5 * time.Second)}
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "wrongpass"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	required := decodeBody(t, rec)["required"].(map[string]any)
	assert.Equal(t, float64(1), required["remainingTime"])
}

func TestLoginHandler_ConfirmSignUp(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.UnconfirmedError{Username: "someuser", Email: "someuser@example.com"}
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "Password1!"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "CONFIRM_SIGN_UP", body["code"])
	params := body["params"].(map[string]any)
	assert.Equal(t, "someuser", params["username"])
	assert.Equal(t, "someuser@example.com", params["email"])
}

func TestLoginHandler_RateLimited(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrRateLimited
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "Password1!"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeBody(t, rec)["code"])
}

func TestLoginHandler_StorageFailure(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.StorageError{Op: "record failure"}
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "Password1!"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DATABASE_ERROR", decodeBody(t, rec)["code"])
}

func TestLoginHandler_ProviderOutage(t *testing.T) {
	login := &MockLoginService{
		LoginFunc: func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrProviderUnavailable
		},
	}
	h := newAuthHandler(login, &MockSessionService{})

	rec := postLogin(t, h, LoginRequest{Identifier: "someuser", Password: "Password1!"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "SERVER_ERROR", decodeBody(t, rec)["code"])
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h := newAuthHandler(&MockLoginService{}, &MockSessionService{})

	rec := postLogin(t, h, map[string]string{"identifier": "someuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_MalformedBody(t *testing.T) {
	h := newAuthHandler(&MockLoginService{}, &MockSessionService{})

	req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutHandler_ClearsCookies(t *testing.T) {
	sessions := &MockSessionService{}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "access-token"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"access-token"}, sessions.SignOutCalls)

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, "%s must be expired", c.Name)
	}
}

func TestLogoutHandler_NoSessionStillSucceeds(t *testing.T) {
	sessions := &MockSessionService{}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sessions.SignOutCalls)
}

func TestLogoutHandler_RevocationFailureStillClears(t *testing.T) {
	sessions := &MockSessionService{
		SignOutFunc: func(ctx context.Context, accessToken string) error {
			return models.ErrProviderUnavailable
		},
	}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "access-token"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestCheckAuthHandler_Authenticated(t *testing.T) {
	sessions := &MockSessionService{
		CheckAuthFunc: func(ctx context.Context, accessToken string) (*models.Account, error) {
			return &models.Account{Username: "someuser", Email: "someuser@example.com"}, nil
		},
	}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodGet, "/users/check-auth", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "access-token"})
	rec := httptest.NewRecorder()
	h.CheckAuth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isAuthenticated"])
	userInfo := body["userInfo"].(map[string]any)
	assert.Equal(t, "someuser", userInfo["username"])
}

func TestCheckAuthHandler_NoSession(t *testing.T) {
	h := newAuthHandler(&MockLoginService{}, &MockSessionService{})

	req := httptest.NewRequest(http.MethodGet, "/users/check-auth", nil)
	rec := httptest.NewRecorder()
	h.CheckAuth(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_SESSION", decodeBody(t, rec)["code"])
}

func TestCheckAuthHandler_Expired(t *testing.T) {
	sessions := &MockSessionService{
		CheckAuthFunc: func(ctx context.Context, accessToken string) (*models.Account, error) {
			return nil, models.ErrSessionExpired
		},
	}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodGet, "/users/check-auth", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	h.CheckAuth(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_EXPIRED", decodeBody(t, rec)["code"])
}

func TestCheckAuthHandler_InvalidSession(t *testing.T) {
	sessions := &MockSessionService{
		CheckAuthFunc: func(ctx context.Context, accessToken string) (*models.Account, error) {
			return nil, models.ErrInvalidCredentials
		},
	}
	h := newAuthHandler(&MockLoginService{}, sessions)

	req := httptest.NewRequest(http.MethodGet, "/users/check-auth", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "bad-token"})
	rec := httptest.NewRecorder()
	h.CheckAuth(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_SESSION", decodeBody(t, rec)["code"])
}

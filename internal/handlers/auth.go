package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixele/identity/internal/auth"
	"github.com/pixele/identity/internal/models"
	"github.com/pixele/identity/internal/services"
	pkghttp "github.com/pixele/identity/pkg/http"
)

// LoginServiceInterface defines the interface for login business logic
type LoginServiceInterface interface {
	Login(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error)
}

// SessionServiceInterface defines the interface for session checks and sign out
type SessionServiceInterface interface {
	CheckAuth(ctx context.Context, accessToken string) (*models.Account, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthHandler handles login, logout and session checks
type AuthHandler struct {
	login    LoginServiceInterface
	sessions SessionServiceInterface
	cookies  auth.CookieConfig
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(login LoginServiceInterface, sessions SessionServiceInterface, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		login:    login,
		sessions: sessions,
		cookies:  cookies,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// UserInfo is the account payload returned by login and check-auth
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CheckAuthResponse is the envelope for GET /users/check-auth
type CheckAuthResponse struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserInfo        *UserInfo `json:"userInfo,omitempty"`
	Message         string    `json:"message,omitempty"`
	Code            string    `json:"code,omitempty"`
}

// Login handles POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.login.Login(r.Context(), req.Identifier, req.Password, ipAddress)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	auth.SetSessionCookies(w, result.Tokens, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Response{
		Message: "Login successful.",
		Details: UserInfo{Username: result.Account.Username, Email: result.Account.Email},
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	var locked *models.AccountLockedError
	var unconfirmed *models.UnconfirmedError
	var storage *models.StorageError

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteInvalidCredentials(w)
	case errors.As(err, &locked):
		pkghttp.WriteAccountLocked(w, locked.RemainingMinutes(time.Now()))
	case errors.As(err, &unconfirmed):
		pkghttp.WriteConfirmSignUp(w, unconfirmed.Username, unconfirmed.Email)
	case errors.Is(err, models.ErrRateLimited):
		pkghttp.WriteRateLimited(w)
	case errors.As(err, &storage):
		h.logger.Error("login storage failure", slog.Any("error", err))
		pkghttp.WriteDatabaseError(w)
	default:
		h.logger.Error("login failed", slog.Any("error", err))
		pkghttp.WriteServerError(w)
	}
}

// Logout handles POST /users/logout. The provider revocation is best
// effort; the cookies are cleared on every path.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GetSessionToken(r)
	if err == nil && token != "" {
		if err := h.sessions.SignOut(r.Context(), token); err != nil {
			h.logger.Warn("sign out revocation failed", slog.Any("error", err))
		}
	}

	auth.ClearSessionCookies(w, h.cookies)
	pkghttp.WriteMessage(w, http.StatusOK, "Logged out successfully.", "LOGGED_OUT")
}

// CheckAuth handles GET /users/check-auth
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GetSessionToken(r)
	if err != nil || token == "" {
		pkghttp.WriteJSON(w, http.StatusUnauthorized, CheckAuthResponse{
			Message: "No active session.",
			Code:    "NO_SESSION",
		})
		return
	}

	account, err := h.sessions.CheckAuth(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionExpired):
			pkghttp.WriteJSON(w, http.StatusUnauthorized, CheckAuthResponse{
				Message: "Session has expired.",
				Code:    "SESSION_EXPIRED",
			})
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteJSON(w, http.StatusUnauthorized, CheckAuthResponse{
				Message: "Invalid session.",
				Code:    "INVALID_SESSION",
			})
		default:
			h.logger.Error("session check failed", slog.Any("error", err))
			pkghttp.WriteServerError(w)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, CheckAuthResponse{
		IsAuthenticated: true,
		UserInfo:        &UserInfo{Username: account.Username, Email: account.Email},
	})
}

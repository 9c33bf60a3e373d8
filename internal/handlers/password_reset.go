package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pixele/identity/internal/models"
	pkghttp "github.com/pixele/identity/pkg/http"
)

// PasswordResetServiceInterface defines the interface for the reset flow
type PasswordResetServiceInterface interface {
	SendResetEmail(ctx context.Context, identifier string) error
	ConfirmReset(ctx context.Context, username, code, newPassword string) error
}

// PasswordResetHandler handles the two-step password reset flow
type PasswordResetHandler struct {
	service PasswordResetServiceInterface
	logger  *slog.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(service PasswordResetServiceInterface, logger *slog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{service: service, logger: logger}
}

// SendResetEmailRequest represents the request body for starting a reset
type SendResetEmailRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// ConfirmNewPasswordRequest represents the request body for finishing a reset
type ConfirmNewPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// SendResetEmail handles POST /users/reset-password/send-email
func (h *PasswordResetHandler) SendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req SendResetEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	req.Identifier = strings.ToLower(strings.TrimSpace(req.Identifier))

	if err := h.service.SendResetEmail(r.Context(), req.Identifier); err != nil {
		h.writeResetError(w, err)
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK,
		"Password reset code sent. Check your email.", "RESET_EMAIL_SENT")
}

// ConfirmNewPassword handles POST /users/reset-password/confirm-new-password
func (h *PasswordResetHandler) ConfirmNewPassword(w http.ResponseWriter, r *http.Request) {
	var req ConfirmNewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if err := h.service.ConfirmReset(r.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		h.writeResetError(w, err)
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Password updated successfully.", "PASSWORD_RESET")
}

func (h *PasswordResetHandler) writeResetError(w http.ResponseWriter, err error) {
	var unconfirmed *models.UnconfirmedError
	switch {
	case errors.As(err, &unconfirmed):
		pkghttp.WriteConfirmSignUp(w, unconfirmed.Username, unconfirmed.Email)
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteInvalidCredentials(w)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteMessage(w, http.StatusNotFound, "User not found.", "USER_NOT_FOUND")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteBadRequest(w, "Invalid reset code.", "INVALID_CODE")
	case errors.Is(err, models.ErrExpiredCode):
		pkghttp.WriteMessage(w, http.StatusGone,
			"Reset code has expired. Request a new one.", "EXPIRED_CODE")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Password does not meet requirements.", "INVALID_PASSWORD")
	case errors.Is(err, models.ErrRateLimited):
		pkghttp.WriteRateLimited(w)
	default:
		h.logger.Error("password reset failed", slog.Any("error", err))
		pkghttp.WriteServerError(w)
	}
}

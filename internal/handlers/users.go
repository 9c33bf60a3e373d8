package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pixele/identity/internal/models"
	"github.com/pixele/identity/internal/services"
	pkghttp "github.com/pixele/identity/pkg/http"
)

// RegistrationServiceInterface defines the interface for account creation
type RegistrationServiceInterface interface {
	Register(ctx context.Context, username, email, password string) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
}

// VerificationServiceInterface defines the interface for account confirmation
type VerificationServiceInterface interface {
	Verify(ctx context.Context, username, code string) error
	Resend(ctx context.Context, username string) error
}

// UserHandler handles registration and confirmation requests
type UserHandler struct {
	registration RegistrationServiceInterface
	verification VerificationServiceInterface
	logger       *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(registration RegistrationServiceInterface, verification VerificationServiceInterface, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		registration: registration,
		verification: verification,
		logger:       logger,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// VerifyRequest represents the request body for account confirmation
type VerifyRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required,len=6"`
}

// ResendCodeRequest represents the request body for re-sending a code
type ResendCodeRequest struct {
	Username string `json:"username" validate:"required"`
}

// AvailabilityResponse is the payload for the username availability check
type AvailabilityResponse struct {
	Taken bool `json:"taken"`
}

// Register handles POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	err := h.registration.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var dup *services.DuplicateError
		var storage *models.StorageError
		switch {
		case errors.As(err, &dup):
			pkghttp.WriteMessage(w, http.StatusConflict, dup.Error(), duplicateCode(dup))
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteRateLimited(w)
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid registration details.", "INVALID_REQUEST")
		case errors.As(err, &storage):
			h.logger.Error("registration storage failure", slog.Any("error", err))
			pkghttp.WriteDatabaseError(w)
		default:
			h.logger.Error("registration failed", slog.Any("error", err))
			pkghttp.WriteServerError(w)
		}
		return
	}

	pkghttp.WriteMessage(w, http.StatusCreated,
		"Account created. Check your email for a confirmation code.", "USER_REGISTERED")
}

func duplicateCode(dup *services.DuplicateError) string {
	switch {
	case dup.Email && dup.Username:
		return "DUPLICATE_CREDENTIALS"
	case dup.Email:
		return "EMAIL_EXISTS"
	default:
		return "USERNAME_EXISTS"
	}
}

// Verify handles POST /users/verify
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if err := h.verification.Verify(r.Context(), req.Username, req.Code); err != nil {
		h.writeVerificationError(w, err)
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Email verified successfully.", "USER_VERIFIED")
}

// ResendCode handles POST /users/resend-verification-code
func (h *UserHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body.", "INVALID_REQUEST")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error(), "INVALID_REQUEST")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if err := h.verification.Resend(r.Context(), req.Username); err != nil {
		h.writeVerificationError(w, err)
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Confirmation code sent.", "CODE_SENT")
}

func (h *UserHandler) writeVerificationError(w http.ResponseWriter, err error) {
	var storage *models.StorageError
	switch {
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteBadRequest(w, "Invalid confirmation code.", "INVALID_CODE")
	case errors.Is(err, models.ErrExpiredCode):
		pkghttp.WriteMessage(w, http.StatusGone,
			"Confirmation code has expired. Request a new one.", "EXPIRED_CODE")
	case errors.Is(err, models.ErrAlreadyVerified):
		pkghttp.WriteMessage(w, http.StatusConflict, "Account is already verified.", "ALREADY_VERIFIED")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteMessage(w, http.StatusNotFound, "User not found.", "USER_NOT_FOUND")
	case errors.Is(err, models.ErrRateLimited):
		pkghttp.WriteRateLimited(w)
	case errors.As(err, &storage):
		h.logger.Error("verification storage failure", slog.Any("error", err))
		pkghttp.WriteDatabaseError(w)
	default:
		h.logger.Error("verification failed", slog.Any("error", err))
		pkghttp.WriteServerError(w)
	}
}

// CheckUsernameAvailability handles GET /users/check-username-availability
func (h *UserHandler) CheckUsernameAvailability(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("username")))
	if username == "" {
		pkghttp.WriteBadRequest(w, "username query parameter is required.", "INVALID_REQUEST")
		return
	}

	available, err := h.registration.UsernameAvailable(r.Context(), username)
	if err != nil {
		if errors.Is(err, models.ErrRateLimited) {
			pkghttp.WriteRateLimited(w)
			return
		}
		h.logger.Error("availability check failed", slog.Any("error", err))
		pkghttp.WriteServerError(w)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AvailabilityResponse{Taken: !available})
}

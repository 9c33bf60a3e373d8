package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixele/identity/internal/models"
)

func TestSendResetEmailHandler_Success(t *testing.T) {
	var identifier string
	svc := &MockPasswordResetService{
		SendResetEmailFunc: func(ctx context.Context, id string) error {
			identifier = id
			return nil
		},
	}
	h := NewPasswordResetHandler(svc, testLogger())

	rec := postJSON(t, h.SendResetEmail, "/users/reset-password/send-email",
		SendResetEmailRequest{Identifier: "SomeUser"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "someuser", identifier)
}

func TestSendResetEmailHandler_UnconfirmedAccount(t *testing.T) {
	svc := &MockPasswordResetService{
		SendResetEmailFunc: func(ctx context.Context, id string) error {
			return &models.UnconfirmedError{Username: "someuser", Email: "someuser@example.com"}
		},
	}
	h := NewPasswordResetHandler(svc, testLogger())

	rec := postJSON(t, h.SendResetEmail, "/users/reset-password/send-email",
		SendResetEmailRequest{Identifier: "someuser"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "CONFIRM_SIGN_UP", body["code"])
	params := body["params"].(map[string]any)
	assert.Equal(t, "someuser", params["username"])
}

func TestSendResetEmailHandler_UnknownUser(t *testing.T) {
	svc := &MockPasswordResetService{
		SendResetEmailFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	h := NewPasswordResetHandler(svc, testLogger())

	rec := postJSON(t, h.SendResetEmail, "/users/reset-password/send-email",
		SendResetEmailRequest{Identifier: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestConfirmNewPasswordHandler_Success(t *testing.T) {
	svc := &MockPasswordResetService{}
	h := NewPasswordResetHandler(svc, testLogger())

	rec := postJSON(t, h.ConfirmNewPassword, "/users/reset-password/confirm-new-password",
		ConfirmNewPasswordRequest{Username: "someuser", Code: "123456", NewPassword: "NewPassword1!"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PASSWORD_RESET", decodeBody(t, rec)["code"])
}

func TestConfirmNewPasswordHandler_Codes(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		status     int
		code       string
	}{
		{"bad code", models.ErrInvalidCode, http.StatusBadRequest, "INVALID_CODE"},
		{"expired code", models.ErrExpiredCode, http.StatusGone, "EXPIRED_CODE"},
		{"unknown user hidden", models.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"weak password", models.ErrBadRequest, http.StatusBadRequest, "INVALID_PASSWORD"},
		{"throttled", models.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPasswordResetService{
				ConfirmResetFunc: func(ctx context.Context, username, code, newPassword string) error {
					return tt.serviceErr
				},
			}
			h := NewPasswordResetHandler(svc, testLogger())

			rec := postJSON(t, h.ConfirmNewPassword, "/users/reset-password/confirm-new-password",
				ConfirmNewPasswordRequest{Username: "someuser", Code: "123456", NewPassword: "NewPassword1!"})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeBody(t, rec)["code"])
		})
	}
}

func TestConfirmNewPasswordHandler_WeakPasswordRejectedLocally(t *testing.T) {
	svc := &MockPasswordResetService{
		ConfirmResetFunc: func(ctx context.Context, username, code, newPassword string) error {
			t.Fatal("invalid requests must not reach the service")
			return nil
		},
	}
	h := NewPasswordResetHandler(svc, testLogger())

	rec := postJSON(t, h.ConfirmNewPassword, "/users/reset-password/confirm-new-password",
		ConfirmNewPasswordRequest{Username: "someuser", Code: "123456", NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pixele/identity/internal/models"
	pkglogger "github.com/pixele/identity/pkg/logger"
)

// PasswordResetProvider is the provider surface the reset flow needs.
type PasswordResetProvider interface {
	LookupByUsername(ctx context.Context, username string) (*models.Account, error)
	LookupByEmail(ctx context.Context, email string) (*models.Account, error)
	ResendConfirmationCode(ctx context.Context, username string) error
	ForgotPassword(ctx context.Context, username string) error
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
}

// PasswordResetService drives the provider's forgot-password flow.
type PasswordResetService struct {
	provider PasswordResetProvider
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

func NewPasswordResetService(provider PasswordResetProvider, logger *slog.Logger, audit *pkglogger.AuditLogger) *PasswordResetService {
	return &PasswordResetService{
		provider: provider,
		logger:   logger,
		audit:    audit,
	}
}

// SendResetEmail starts the reset flow for the account behind the
// identifier, tried as a username first and as an email second. An
// unconfirmed account is bounced back to the confirmation flow instead.
func (s *PasswordResetService) SendResetEmail(ctx context.Context, identifier string) error {
	account, err := s.provider.LookupByUsername(ctx, identifier)
	if errors.Is(err, models.ErrNotFound) {
		account, err = s.provider.LookupByEmail(ctx, identifier)
	}
	if err != nil {
		return err
	}

	if account.Status != models.AccountStatusConfirmed {
		if err := s.provider.ResendConfirmationCode(ctx, account.Username); err != nil {
			return err
		}
		return &models.UnconfirmedError{Username: account.Username, Email: account.Email}
	}

	if err := s.provider.ForgotPassword(ctx, account.Username); err != nil {
		return err
	}

	s.audit.LogAccountAction("password_reset_requested", account.Username, "", nil)
	return nil
}

// ConfirmReset completes the reset flow with the emailed code. Unknown
// usernames come back as invalid credentials so the endpoint cannot be used
// to probe for accounts.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, username, code, newPassword string) error {
	account, err := s.provider.LookupByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidCredentials
		}
		return err
	}

	if account.Status != models.AccountStatusConfirmed {
		if err := s.provider.ResendConfirmationCode(ctx, account.Username); err != nil {
			return err
		}
		return &models.UnconfirmedError{Username: account.Username, Email: account.Email}
	}

	if err := s.provider.ConfirmForgotPassword(ctx, username, code, newPassword); err != nil {
		return err
	}

	s.audit.LogAccountAction("password_reset_completed", username, "", nil)
	return nil
}

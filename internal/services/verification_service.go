package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pixele/identity/internal/models"
	pkglogger "github.com/pixele/identity/pkg/logger"
)

// VerificationProvider is the provider surface account confirmation needs.
type VerificationProvider interface {
	LookupByUsername(ctx context.Context, username string) (*models.Account, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	ResendConfirmationCode(ctx context.Context, username string) error
}

// VerificationService confirms accounts and re-sends confirmation codes.
type VerificationService struct {
	provider VerificationProvider
	users    UserStore
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

func NewVerificationService(provider VerificationProvider, users UserStore, logger *slog.Logger, audit *pkglogger.AuditLogger) *VerificationService {
	return &VerificationService{
		provider: provider,
		users:    users,
		logger:   logger,
		audit:    audit,
	}
}

// Verify confirms the account with the provider, then flips the local
// confirmed flag. The provider is the source of truth; the local update
// runs in its own transaction afterwards.
func (s *VerificationService) Verify(ctx context.Context, username, code string) error {
	if err := s.provider.ConfirmSignUp(ctx, username, code); err != nil {
		// The pool answers NotAuthorized for an already-confirmed account.
		if errors.Is(err, models.ErrInvalidCredentials) {
			return models.ErrAlreadyVerified
		}
		return err
	}

	if err := s.users.Confirm(ctx, username); err != nil {
		return err
	}

	s.audit.LogAccountAction("account_verified", username, "", nil)
	return nil
}

// Resend re-sends the confirmation code for an unconfirmed account.
func (s *VerificationService) Resend(ctx context.Context, username string) error {
	account, err := s.provider.LookupByUsername(ctx, username)
	if err != nil {
		return err
	}

	if account.Status == models.AccountStatusConfirmed {
		return models.ErrAlreadyVerified
	}

	if err := s.provider.ResendConfirmationCode(ctx, username); err != nil {
		s.logger.Error("failed to resend confirmation code",
			slog.String("username", username),
			slog.Any("error", err))
		return err
	}
	return nil
}

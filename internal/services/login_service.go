package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pixele/identity/internal/models"
	pkglogger "github.com/pixele/identity/pkg/logger"
)

// LoginProvider is the identity-provider surface the login flow needs.
type LoginProvider interface {
	LookupByUsername(ctx context.Context, username string) (*models.Account, error)
	LookupByEmail(ctx context.Context, email string) (*models.Account, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.TokenSet, error)
	ResendConfirmationCode(ctx context.Context, username string) error
	ResetSessions(ctx context.Context, username string) error
}

// LockoutLedger tracks per-account failed attempts in the relational store.
type LockoutLedger interface {
	GetLockState(ctx context.Context, accountID string) (models.LockState, error)
	RecordSuccess(ctx context.Context, accountID string) error
	RecordFailure(ctx context.Context, accountID string) (int, error)
}

// LoginService coordinates the identity provider and the lockout ledger for
// a single login attempt. One request is one run; the only shared state is
// the pooled storage connections behind the ledger.
type LoginService struct {
	provider LoginProvider
	ledger   LockoutLedger
	policy   models.LockoutPolicy
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
	now      func() time.Time
}

func NewLoginService(provider LoginProvider, ledger LockoutLedger, policy models.LockoutPolicy, logger *slog.Logger, audit *pkglogger.AuditLogger) *LoginService {
	return &LoginService{
		provider: provider,
		ledger:   ledger,
		policy:   policy,
		logger:   logger,
		audit:    audit,
		now:      time.Now,
	}
}

// LoginResult carries the authenticated account and its session material.
type LoginResult struct {
	Account *models.Account
	Tokens  *models.TokenSet
}

// Login runs one attempt: resolve the identifier, check the lockout ledger,
// verify the password with the provider, record the outcome. Every ledger
// write commits or rolls back before this function returns, so no response
// is ever produced over an open transaction.
//
// Unknown identifiers and wrong passwords both come back as
// ErrInvalidCredentials so the responses cannot be told apart.
func (s *LoginService) Login(ctx context.Context, identifier, password, ipAddress string) (*LoginResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	account, err := s.resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "unknown_identifier",
			})
			return nil, models.ErrInvalidCredentials
		}
		if errors.Is(err, models.ErrRateLimited) {
			return nil, models.ErrRateLimited
		}
		s.logger.Error("identifier resolution failed", slog.Any("error", err))
		return nil, models.ErrProviderUnavailable
	}

	state, err := s.ledger.GetLockState(ctx, account.Username)
	if err != nil {
		return nil, err
	}
	if state.Locked {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			AccountID:     account.Username,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
		})
		return nil, &models.AccountLockedError{UnlockAt: *state.UnlockAt}
	}

	// Idempotent session reset before the attempt; failure never blocks it.
	if err := s.provider.ResetSessions(ctx, account.Username); err != nil {
		s.logger.Warn("session reset failed (non-critical)",
			slog.String("account_id", account.Username),
			slog.Any("error", err))
	}

	tokens, err := s.provider.VerifyPassword(ctx, account.Username, password)
	if err != nil {
		return nil, s.handleAuthFailure(ctx, account, ipAddress, err)
	}

	if err := s.ledger.RecordSuccess(ctx, account.Username); err != nil {
		return nil, err
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: account.Username,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &LoginResult{Account: account, Tokens: tokens}, nil
}

// resolve maps the user-supplied identifier to its account. An identifier
// containing '@' is looked up as an email with no username fallback;
// anything else is looked up as a username.
func (s *LoginService) resolve(ctx context.Context, identifier string) (*models.Account, error) {
	if strings.Contains(identifier, "@") {
		return s.provider.LookupByEmail(ctx, identifier)
	}
	return s.provider.LookupByUsername(ctx, identifier)
}

func (s *LoginService) handleAuthFailure(ctx context.Context, account *models.Account, ipAddress string, authErr error) error {
	var unconfirmed *models.UnconfirmedError
	switch {
	case errors.As(authErr, &unconfirmed):
		// An unconfirmed account's failed check is not a password failure;
		// the ledger stays untouched. The resend is best effort.
		if err := s.provider.ResendConfirmationCode(ctx, account.Username); err != nil {
			s.logger.Warn("confirmation code resend failed (non-critical)",
				slog.String("account_id", account.Username),
				slog.Any("error", err))
		}
		return &models.UnconfirmedError{Username: account.Username, Email: account.Email}

	case errors.Is(authErr, models.ErrRateLimited):
		// Provider-side throttling is not a credential failure.
		return models.ErrRateLimited

	default:
		count, err := s.ledger.RecordFailure(ctx, account.Username)
		if err != nil {
			return err
		}

		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.Username,
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
		})

		if count >= s.policy.Threshold {
			return &models.AccountLockedError{UnlockAt: s.now().Add(s.policy.Duration)}
		}
		return models.ErrInvalidCredentials
	}
}

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixele/identity/internal/auth"
	"github.com/pixele/identity/internal/models"
)

// SessionProvider is the provider surface session checks need.
type SessionProvider interface {
	AccountForToken(ctx context.Context, accessToken string) (*models.Account, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionService answers "who is this token" and revokes sessions.
type SessionService struct {
	provider SessionProvider
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessionService(provider SessionProvider, logger *slog.Logger) *SessionService {
	return &SessionService{
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
}

// CheckAuth validates a session token: a cheap local expiry check first,
// then the provider as the authority. An undecodable token counts as an
// invalid session, not a server error.
func (s *SessionService) CheckAuth(ctx context.Context, accessToken string) (*models.Account, error) {
	expired, err := auth.TokenExpired(accessToken, s.now())
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if expired {
		return nil, models.ErrSessionExpired
	}

	return s.provider.AccountForToken(ctx, accessToken)
}

// SignOut revokes the session with the provider. Callers treat failure as
// non-critical: cookies are cleared either way.
func (s *SessionService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.logger.Warn("provider sign out failed (non-critical)", slog.Any("error", err))
		return err
	}
	return nil
}

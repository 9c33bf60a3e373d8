package services

import (
	"context"
	"log/slog"

	"github.com/pixele/identity/internal/models"
	pkglogger "github.com/pixele/identity/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// RegistrationProvider is the provider surface registration needs.
type RegistrationProvider interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	SignUp(ctx context.Context, username, email, password string) error
}

// UserStore is the local users table surface.
type UserStore interface {
	CreateWithGameStats(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error)
	Confirm(ctx context.Context, username string) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// DuplicateError reports which credentials collided during registration.
type DuplicateError struct {
	Email    bool
	Username bool
}

func (e *DuplicateError) Error() string {
	switch {
	case e.Email && e.Username:
		return "email and username already in use"
	case e.Email:
		return "email already in use"
	default:
		return "username already in use"
	}
}

// RegistrationService creates accounts: duplicate checks against the
// provider, local rows, then provider signup — the last two inside one
// transaction so a provider failure rolls the local rows back.
type RegistrationService struct {
	provider RegistrationProvider
	users    UserStore
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

func NewRegistrationService(provider RegistrationProvider, users UserStore, logger *slog.Logger, audit *pkglogger.AuditLogger) *RegistrationService {
	return &RegistrationService{
		provider: provider,
		users:    users,
		logger:   logger,
		audit:    audit,
	}
}

// Register creates a new unconfirmed account. The duplicate lookups are
// read-only and mutually independent, so they run in parallel.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) error {
	var emailExists, usernameExists bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emailExists, err = s.provider.EmailTaken(gctx, email)
		return err
	})
	g.Go(func() error {
		var err error
		usernameExists, err = s.provider.UsernameTaken(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("duplicate check failed", slog.Any("error", err))
		return err
	}

	if emailExists || usernameExists {
		return &DuplicateError{Email: emailExists, Username: usernameExists}
	}

	_, err := s.users.CreateWithGameStats(ctx, username, func(ctx context.Context) error {
		return s.provider.SignUp(ctx, username, email, password)
	})
	if err != nil {
		s.logger.Error("registration failed",
			slog.String("username", username),
			slog.Any("error", err))
		return err
	}

	s.audit.LogAccountAction("account_registered", username, "", map[string]string{
		"email": pkglogger.SanitizedEmail(email),
	})
	return nil
}

// UsernameAvailable reports whether a username is free in the user pool.
func (s *RegistrationService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.provider.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

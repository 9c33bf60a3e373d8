package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/pixele/identity/internal/models"
	"github.com/pixele/identity/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockLoginService implements LoginServiceInterface for testing
type MockLoginService struct {
	LoginFunc func(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error)
}

func (m *MockLoginService) Login(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

// MockSessionService implements SessionServiceInterface for testing
type MockSessionService struct {
	CheckAuthFunc func(ctx context.Context, accessToken string) (*models.Account, error)
	SignOutFunc   func(ctx context.Context, accessToken string) error

	SignOutCalls []string
}

func (m *MockSessionService) CheckAuth(ctx context.Context, accessToken string) (*models.Account, error) {
	if m.CheckAuthFunc != nil {
		return m.CheckAuthFunc(ctx, accessToken)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockSessionService) SignOut(ctx context.Context, accessToken string) error {
	m.SignOutCalls = append(m.SignOutCalls, accessToken)
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}

// MockRegistrationService implements RegistrationServiceInterface for testing
type MockRegistrationService struct {
	RegisterFunc          func(ctx context.Context, username, email, password string) error
	UsernameAvailableFunc func(ctx context.Context, username string) (bool, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, username, email, password string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password)
	}
	return nil
}

func (m *MockRegistrationService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if m.UsernameAvailableFunc != nil {
		return m.UsernameAvailableFunc(ctx, username)
	}
	return true, nil
}

// MockVerificationService implements VerificationServiceInterface for testing
type MockVerificationService struct {
	VerifyFunc func(ctx context.Context, username, code string) error
	ResendFunc func(ctx context.Context, username string) error
}

func (m *MockVerificationService) Verify(ctx context.Context, username, code string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, username, code)
	}
	return nil
}

func (m *MockVerificationService) Resend(ctx context.Context, username string) error {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, username)
	}
	return nil
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	SendResetEmailFunc func(ctx context.Context, identifier string) error
	ConfirmResetFunc   func(ctx context.Context, username, code, newPassword string) error
}

func (m *MockPasswordResetService) SendResetEmail(ctx context.Context, identifier string) error {
	if m.SendResetEmailFunc != nil {
		return m.SendResetEmailFunc(ctx, identifier)
	}
	return nil
}

func (m *MockPasswordResetService) ConfirmReset(ctx context.Context, username, code, newPassword string) error {
	if m.ConfirmResetFunc != nil {
		return m.ConfirmResetFunc(ctx, username, code, newPassword)
	}
	return nil
}

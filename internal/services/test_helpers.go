package services

import (
	"context"

	"github.com/pixele/identity/internal/models"
)

// MockProvider implements the provider interfaces for testing
type MockProvider struct {
	LookupByUsernameFunc       func(ctx context.Context, username string) (*models.Account, error)
	LookupByEmailFunc          func(ctx context.Context, email string) (*models.Account, error)
	VerifyPasswordFunc         func(ctx context.Context, username, password string) (*models.TokenSet, error)
	ResendConfirmationCodeFunc func(ctx context.Context, username string) error
	ResetSessionsFunc          func(ctx context.Context, username string) error
	UsernameTakenFunc          func(ctx context.Context, username string) (bool, error)
	EmailTakenFunc             func(ctx context.Context, email string) (bool, error)
	SignUpFunc                 func(ctx context.Context, username, email, password string) error
	ConfirmSignUpFunc          func(ctx context.Context, username, code string) error
	ForgotPasswordFunc         func(ctx context.Context, username string) error
	ConfirmForgotPasswordFunc  func(ctx context.Context, username, code, newPassword string) error
	AccountForTokenFunc        func(ctx context.Context, accessToken string) (*models.Account, error)
	SignOutFunc                func(ctx context.Context, accessToken string) error
}

func (m *MockProvider) LookupByUsername(ctx context.Context, username string) (*models.Account, error) {
	if m.LookupByUsernameFunc != nil {
		return m.LookupByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockProvider) LookupByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.LookupByEmailFunc != nil {
		return m.LookupByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockProvider) VerifyPassword(ctx context.Context, username, password string) (*models.TokenSet, error) {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(ctx, username, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockProvider) ResendConfirmationCode(ctx context.Context, username string) error {
	if m.ResendConfirmationCodeFunc != nil {
		return m.ResendConfirmationCodeFunc(ctx, username)
	}
	return nil
}

func (m *MockProvider) ResetSessions(ctx context.Context, username string) error {
	if m.ResetSessionsFunc != nil {
		return m.ResetSessionsFunc(ctx, username)
	}
	return nil
}

func (m *MockProvider) UsernameTaken(ctx context.Context, username string) (bool, error) {
	if m.UsernameTakenFunc != nil {
		return m.UsernameTakenFunc(ctx, username)
	}
	return false, nil
}

func (m *MockProvider) EmailTaken(ctx context.Context, email string) (bool, error) {
	if m.EmailTakenFunc != nil {
		return m.EmailTakenFunc(ctx, email)
	}
	return false, nil
}

func (m *MockProvider) SignUp(ctx context.Context, username, email, password string) error {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, username, email, password)
	}
	return nil
}

func (m *MockProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	if m.ConfirmSignUpFunc != nil {
		return m.ConfirmSignUpFunc(ctx, username, code)
	}
	return nil
}

func (m *MockProvider) ForgotPassword(ctx context.Context, username string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, username)
	}
	return nil
}

func (m *MockProvider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	if m.ConfirmForgotPasswordFunc != nil {
		return m.ConfirmForgotPasswordFunc(ctx, username, code, newPassword)
	}
	return nil
}

func (m *MockProvider) AccountForToken(ctx context.Context, accessToken string) (*models.Account, error) {
	if m.AccountForTokenFunc != nil {
		return m.AccountForTokenFunc(ctx, accessToken)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}

// MockLedger implements LockoutLedger for testing
type MockLedger struct {
	GetLockStateFunc  func(ctx context.Context, accountID string) (models.LockState, error)
	RecordSuccessFunc func(ctx context.Context, accountID string) error
	RecordFailureFunc func(ctx context.Context, accountID string) (int, error)

	SuccessCalls []string
	FailureCalls []string
}

func (m *MockLedger) GetLockState(ctx context.Context, accountID string) (models.LockState, error) {
	if m.GetLockStateFunc != nil {
		return m.GetLockStateFunc(ctx, accountID)
	}
	return models.LockState{}, nil
}

func (m *MockLedger) RecordSuccess(ctx context.Context, accountID string) error {
	m.SuccessCalls = append(m.SuccessCalls, accountID)
	if m.RecordSuccessFunc != nil {
		return m.RecordSuccessFunc(ctx, accountID)
	}
	return nil
}

func (m *MockLedger) RecordFailure(ctx context.Context, accountID string) (int, error) {
	m.FailureCalls = append(m.FailureCalls, accountID)
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, accountID)
	}
	return 1, nil
}

// MockUserStore implements UserStore for testing
type MockUserStore struct {
	CreateWithGameStatsFunc func(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error)
	ConfirmFunc             func(ctx context.Context, username string) error
	GetByUsernameFunc       func(ctx context.Context, username string) (*models.User, error)
}

func (m *MockUserStore) CreateWithGameStats(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error) {
	if m.CreateWithGameStatsFunc != nil {
		return m.CreateWithGameStatsFunc(ctx, username, enroll)
	}
	if err := enroll(ctx); err != nil {
		return nil, err
	}
	return &models.User{ID: "00000000-0000-0000-0000-000000000001", Username: username}, nil
}

func (m *MockUserStore) Confirm(ctx context.Context, username string) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, username)
	}
	return nil
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixele/identity/internal/models"
	pkglogger "github.com/pixele/identity/pkg/logger"
)

func newTestRegistrationService(provider *MockProvider, users *MockUserStore) *RegistrationService {
	logger := testLogger()
	return NewRegistrationService(provider, users, logger, pkglogger.NewAuditLogger(logger))
}

func TestRegister_Success(t *testing.T) {
	var signedUp bool
	provider := &MockProvider{
		SignUpFunc: func(ctx context.Context, username, email, password string) error {
			signedUp = true
			return nil
		},
	}
	svc := newTestRegistrationService(provider, &MockUserStore{})

	err := svc.Register(context.Background(), "newuser", "newuser@example.com", "Password1!")
	require.NoError(t, err)
	assert.True(t, signedUp)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	provider := &MockProvider{
		EmailTakenFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestRegistrationService(provider, &MockUserStore{})

	err := svc.Register(context.Background(), "newuser", "taken@example.com", "Password1!")
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.True(t, dup.Email)
	assert.False(t, dup.Username)
}

func TestRegister_DuplicateBoth(t *testing.T) {
	provider := &MockProvider{
		EmailTakenFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
		UsernameTakenFunc: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestRegistrationService(provider, &MockUserStore{})

	err := svc.Register(context.Background(), "taken", "taken@example.com", "Password1!")
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.True(t, dup.Email)
	assert.True(t, dup.Username)
	assert.Equal(t, "email and username already in use", dup.Error())
}

func TestRegister_DuplicateCheckError(t *testing.T) {
	provider := &MockProvider{
		UsernameTakenFunc: func(ctx context.Context, username string) (bool, error) {
			return false, models.ErrProviderUnavailable
		},
	}
	userStore := &MockUserStore{
		CreateWithGameStatsFunc: func(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error) {
			t.Fatal("no rows should be created when the duplicate check fails")
			return nil, nil
		},
	}
	svc := newTestRegistrationService(provider, userStore)

	err := svc.Register(context.Background(), "newuser", "newuser@example.com", "Password1!")
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}

func TestRegister_SignUpFailureSurfaces(t *testing.T) {
	provider := &MockProvider{
		SignUpFunc: func(ctx context.Context, username, email, password string) error {
			return models.ErrProviderUnavailable
		},
	}
	svc := newTestRegistrationService(provider, &MockUserStore{})

	err := svc.Register(context.Background(), "newuser", "newuser@example.com", "Password1!")
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}

func TestRegister_StoreErrorSurfaces(t *testing.T) {
	userStore := &MockUserStore{
		CreateWithGameStatsFunc: func(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error) {
			return nil, &models.StorageError{Op: "create user", Err: errors.New("tx aborted")}
		},
	}
	svc := newTestRegistrationService(&MockProvider{}, userStore)

	err := svc.Register(context.Background(), "newuser", "newuser@example.com", "Password1!")
	var se *models.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestUsernameAvailable(t *testing.T) {
	tests := []struct {
		name      string
		taken     bool
		checkErr  error
		available bool
		wantErr   bool
	}{
		{name: "free username", taken: false, available: true},
		{name: "taken username", taken: true, available: false},
		{name: "provider error", checkErr: models.ErrProviderUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{
				UsernameTakenFunc: func(ctx context.Context, username string) (bool, error) {
					return tt.taken, tt.checkErr
				},
			}
			svc := newTestRegistrationService(provider, &MockUserStore{})

			available, err := svc.UsernameAvailable(context.Background(), "someuser")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.available, available)
		})
	}
}

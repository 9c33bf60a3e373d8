package identity

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/pixele/identity/internal/models"
)

// classifyError maps Cognito SDK errors onto the service's error taxonomy.
// Anything unrecognized surfaces as ProviderUnavailable so callers never
// leak raw provider errors to clients.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var (
		userNotFound      *types.UserNotFoundException
		notAuthorized     *types.NotAuthorizedException
		notConfirmed      *types.UserNotConfirmedException
		tooManyRequests   *types.TooManyRequestsException
		limitExceeded     *types.LimitExceededException
		codeMismatch      *types.CodeMismatchException
		expiredCode       *types.ExpiredCodeException
		invalidParameter  *types.InvalidParameterException
		invalidPassword   *types.InvalidPasswordException
		usernameExists    *types.UsernameExistsException
	)

	switch {
	case errors.As(err, &userNotFound):
		return models.ErrNotFound
	case errors.As(err, &notAuthorized):
		return models.ErrInvalidCredentials
	case errors.As(err, &notConfirmed):
		// Callers fill in the account identity via models.UnconfirmedError.
		return &models.UnconfirmedError{}
	case errors.As(err, &tooManyRequests), errors.As(err, &limitExceeded):
		return models.ErrRateLimited
	case errors.As(err, &codeMismatch):
		return models.ErrInvalidCode
	case errors.As(err, &expiredCode):
		return models.ErrExpiredCode
	case errors.As(err, &invalidParameter), errors.As(err, &invalidPassword):
		return models.ErrBadRequest
	case errors.As(err, &usernameExists):
		return models.ErrConflict
	}

	// Throttling surfaces under several codes depending on the operation;
	// catch the rest by API error code.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
		return models.ErrRateLimited
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// Package identity wraps the Cognito user pool this service authenticates
// against. The pool owns accounts, credentials and confirmation state; this
// client is a read-through plus the handful of write operations the account
// lifecycle needs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/pixele/identity/internal/config"
	"github.com/pixele/identity/internal/models"
)

// CognitoAPI is the slice of the Cognito client this package uses.
type CognitoAPI interface {
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
	ListUsers(ctx context.Context, params *cognitoidentityprovider.ListUsersInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ListUsersOutput, error)
	AdminInitiateAuth(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error)
	AdminUserGlobalSignOut(ctx context.Context, params *cognitoidentityprovider.AdminUserGlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminUserGlobalSignOutOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cognitoidentityprovider.ResendConfirmationCodeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ResendConfirmationCodeOutput, error)
	ForgotPassword(ctx context.Context, params *cognitoidentityprovider.ForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cognitoidentityprovider.ConfirmForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmForgotPasswordOutput, error)
}

// Client is constructed once at startup and injected wherever provider
// access is needed.
type Client struct {
	api        CognitoAPI
	userPoolID string
	clientID   string
	logger     *slog.Logger
}

func NewClient(ctx context.Context, cfg config.CognitoConfig, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:        cognitoidentityprovider.NewFromConfig(awsCfg),
		userPoolID: cfg.UserPoolID,
		clientID:   cfg.ClientID,
		logger:     logger,
	}, nil
}

// NewClientWithAPI wires a pre-built API, used by tests.
func NewClientWithAPI(api CognitoAPI, userPoolID, clientID string, logger *slog.Logger) *Client {
	return &Client{
		api:        api,
		userPoolID: userPoolID,
		clientID:   clientID,
		logger:     logger,
	}
}

// LookupByUsername resolves a username to its account via AdminGetUser.
func (c *Client) LookupByUsername(ctx context.Context, username string) (*models.Account, error) {
	out, err := c.api.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	account := &models.Account{
		Username: aws.ToString(out.Username),
		Status:   accountStatus(out.UserStatus),
	}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "email" {
			account.Email = aws.ToString(attr.Value)
		}
	}
	return account, nil
}

// LookupByEmail resolves an email attribute to its account via a filtered
// ListUsers call. No match is NotFound; there is no fallback.
func (c *Client) LookupByEmail(ctx context.Context, email string) (*models.Account, error) {
	filter := fmt.Sprintf("email = %q", strings.ReplaceAll(email, `"`, `\"`))

	out, err := c.api.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(c.userPoolID),
		Filter:     aws.String(filter),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if len(out.Users) == 0 {
		return nil, models.ErrNotFound
	}

	user := out.Users[0]
	account := &models.Account{
		Username: aws.ToString(user.Username),
		Status:   accountStatus(user.UserStatus),
	}
	for _, attr := range user.Attributes {
		if aws.ToString(attr.Name) == "email" {
			account.Email = aws.ToString(attr.Value)
		}
	}
	return account, nil
}

// UsernameTaken reports whether a username already exists in the pool.
func (c *Client) UsernameTaken(ctx context.Context, username string) (bool, error) {
	filter := fmt.Sprintf("username = %q", strings.ReplaceAll(username, `"`, `\"`))

	out, err := c.api.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(c.userPoolID),
		Filter:     aws.String(filter),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return false, classifyError(err)
	}
	return len(out.Users) > 0, nil
}

// EmailTaken reports whether an email already belongs to an account.
func (c *Client) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := c.LookupByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// VerifyPassword performs the provider's password check. One attempt per
// request; retries are the governor's concern and it does none.
func (c *Client) VerifyPassword(ctx context.Context, username, password string) (*models.TokenSet, error) {
	out, err := c.api.AdminInitiateAuth(ctx, &cognitoidentityprovider.AdminInitiateAuthInput{
		UserPoolId: aws.String(c.userPoolID),
		ClientId:   aws.String(c.clientID),
		AuthFlow:   types.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	result := out.AuthenticationResult
	if result == nil || result.AccessToken == nil {
		// Challenge flows (MFA etc.) are not part of this pool's config.
		return nil, fmt.Errorf("%w: no token set in auth result", models.ErrProviderUnavailable)
	}

	return &models.TokenSet{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

// ResetSessions signs the account out of all devices. Used as a best-effort
// session reset before login; callers log and swallow the error.
func (c *Client) ResetSessions(ctx context.Context, username string) error {
	_, err := c.api.AdminUserGlobalSignOut(ctx, &cognitoidentityprovider.AdminUserGlobalSignOutInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// SignOut revokes all tokens belonging to the given access token's session.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// AccountForToken validates an access token against the pool and returns
// the account it belongs to.
func (c *Client) AccountForToken(ctx context.Context, accessToken string) (*models.Account, error) {
	out, err := c.api.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	account := &models.Account{
		Username: aws.ToString(out.Username),
		Status:   models.AccountStatusConfirmed,
	}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "email" {
			account.Email = aws.ToString(attr.Value)
		}
	}
	return account, nil
}

// SignUp creates an unconfirmed account in the pool.
func (c *Client) SignUp(ctx context.Context, username, email, password string) error {
	_, err := c.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(username),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// ConfirmSignUp confirms an account with the emailed verification code.
func (c *Client) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// ResendConfirmationCode re-sends the signup confirmation code.
func (c *Client) ResendConfirmationCode(ctx context.Context, username string) error {
	_, err := c.api.ResendConfirmationCode(ctx, &cognitoidentityprovider.ResendConfirmationCodeInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// ForgotPassword starts the password-reset flow; the provider emails a code.
func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	_, err := c.api.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// ConfirmForgotPassword completes the password-reset flow.
func (c *Client) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := c.api.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func accountStatus(status types.UserStatusType) models.AccountStatus {
	if status == types.UserStatusTypeConfirmed {
		return models.AccountStatusConfirmed
	}
	return models.AccountStatusUnconfirmed
}

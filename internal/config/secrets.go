package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the slice of the Secrets Manager client this package uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type authSecret struct {
	UserPoolID string `json:"USER_POOL_ID"`
	ClientID   string `json:"USER_POOL_CLIENT_ID"`
}

type dbSecret struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ApplySecrets overlays values from Secrets Manager onto the env-loaded
// config. A secret is only consulted when its ID is configured, so local
// development never touches AWS.
func (c *Config) ApplySecrets(ctx context.Context, client SecretsAPI) error {
	if c.Secrets.AuthSecretID != "" {
		var secret authSecret
		if err := fetchSecret(ctx, client, c.Secrets.AuthSecretID, &secret); err != nil {
			return fmt.Errorf("failed to load auth secret: %w", err)
		}
		c.Cognito.UserPoolID = secret.UserPoolID
		c.Cognito.ClientID = secret.ClientID
	}

	if c.Secrets.DBSecretID != "" {
		var secret dbSecret
		if err := fetchSecret(ctx, client, c.Secrets.DBSecretID, &secret); err != nil {
			return fmt.Errorf("failed to load database secret: %w", err)
		}
		c.Database.Host = secret.Host
		c.Database.Port = secret.Port
		c.Database.User = secret.Username
		c.Database.Password = secret.Password
	}

	return nil
}

func fetchSecret(ctx context.Context, client SecretsAPI, secretID string, out any) error {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return err
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", secretID)
	}
	if err := json.Unmarshal([]byte(*result.SecretString), out); err != nil {
		return fmt.Errorf("failed to parse secret %s: %w", secretID, err)
	}
	return nil
}

package awsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrEmptySecret is returned when a secret has no value.
var ErrEmptySecret = errors.New("awsx: secret has no value")

// SecretLoader reads secrets from AWS Secrets Manager.
type SecretLoader struct {
	client *secretsmanager.Client
}

// NewSecretLoader creates a SecretLoader.
func NewSecretLoader(cfg Config) *SecretLoader {
	return &SecretLoader{client: secretsmanager.NewFromConfig(cfg.awsConfig())}
}

// Load returns the current value of secretID. Binary secrets are
// returned as their raw bytes.
func (l *SecretLoader) Load(ctx context.Context, secretID string) ([]byte, error) {
	if secretID == "" {
		return nil, errors.New("awsx: secret id is required")
	}
	out, err := l.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("awsx: get secret %q: %w", secretID, err)
	}
	switch {
	case out.SecretString != nil && *out.SecretString != "":
		return []byte(*out.SecretString), nil
	case len(out.SecretBinary) > 0:
		return out.SecretBinary, nil
	}
	return nil, ErrEmptySecret
}

package awsx

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config holds the settings shared by the AWS clients.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the service endpoint (tests, LocalStack).
	Endpoint string
}

func (c Config) awsConfig() aws.Config {
	cfg := aws.Config{Region: c.Region}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")
	}
	if c.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(c.Endpoint)
	}
	return cfg
}

// Package awsx holds the AWS integrations: an S3-backed audio store that
// hands out presigned download URLs, and a Secrets Manager loader for the
// CSRF signing secret.
//
// Both use static credentials from configuration. When no keys are given
// requests are sent unsigned, which only works against endpoints that
// allow anonymous access.
package awsx

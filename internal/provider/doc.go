// Package provider holds the HTTP plumbing shared by the upstream clients
// in its subpackages (openai, elevenlabs) and the AWS helpers in awsx.
//
// Clients are built on go-retryablehttp over a cleanhttp pooled transport.
// Transient failures (connection errors, 429, 5xx) are retried with linear
// jittered backoff; any other non-2xx response is returned as an *APIError.
package provider

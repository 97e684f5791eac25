// Package main provides the entry point for cardchat-server.
//
// cardchat-server is the backend for the portfolio chat widget. It issues
// signed CSRF tokens, rate limits callers and answers questions about the
// profile owner through a completion API, optionally with spoken replies.
//
// Usage:
//
//	cardchat-server [--config cardchat.yaml] [--env-file .env] [--addr :3001]
//	cardchat-server --version
package main

// Package handler provides the HTTP request handlers for cardchat.
//
// Handlers are plain http.HandlerFunc methods on Handler; routing, method
// checks, rate limiting and CSRF enforcement live in the parent httpserver
// package so that each route can carry its own middleware chain.
//
// Every JSON error body has the shape {"error": "...", "code": "..."}.
// The code is omitted on the two responses that never carried one
// (405 and token issuance failure).
package handler

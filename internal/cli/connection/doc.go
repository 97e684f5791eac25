// Package connection is the HTTP client cardchat-cli uses to talk to a
// cardchat server.
//
// Error bodies of the form {"error": "...", "code": "..."} are decoded
// into *APIError so commands can report the server's code.
package connection

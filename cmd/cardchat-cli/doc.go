// Package main provides the entry point for cardchat-cli.
//
// The CLI talks to a cardchat server and works with CSRF tokens offline:
//
//	cardchat-cli token issue
//	cardchat-cli token inspect 1700000000000:9f2c...:ab31...
//	cardchat-cli token verify --secret "$CSRF_SECRET" <token>
//	cardchat-cli chat ask "What does she build?" --language fr
//	cardchat-cli -o json system health
package main
